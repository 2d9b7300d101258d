package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slooze/foodorder/internal/rbac"
)

func TestCurrencyFor(t *testing.T) {
	assert.Equal(t, "INR", CurrencyFor(rbac.RegionIndia))
	assert.Equal(t, "USD", CurrencyFor(rbac.RegionAmerica))
	assert.Equal(t, "USD", CurrencyFor(rbac.Region("MARS")))
}

func TestFormatAmount(t *testing.T) {
	usd := FormatAmount(rbac.RegionAmerica, decimal.RequireFromString("18.5"))
	assert.Contains(t, usd, "$")
	assert.Contains(t, usd, "18")

	inr := FormatAmount(rbac.RegionIndia, decimal.NewFromInt(450))
	assert.Contains(t, inr, "450")
	assert.NotEqual(t, FormatAmount(rbac.RegionAmerica, decimal.NewFromInt(450)), inr)
}

type capturePublisher struct {
	key  string
	body any
}

func (c *capturePublisher) Publish(ctx context.Context, routingKey string, body any) error {
	c.key = routingKey
	c.body = body
	return nil
}

func TestEventPublisherRoutesByKind(t *testing.T) {
	pub := &capturePublisher{}
	n := NewEventPublisher(pub)
	e := Event{Kind: EventPaid, OrderID: "o-1", Status: StatusPaid}
	require.NoError(t, n.Notify(context.Background(), e))
	assert.Equal(t, "order.paid", pub.key)
	assert.Equal(t, e, pub.body)
}
