package audit

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

type stubTimelineRepo struct {
	windowRows     []TimelineRow
	allRows        []TimelineRow
	lastWindowCall WindowQuery
	lastAllCall    WindowQuery
}

func (s *stubTimelineRepo) Window(ctx context.Context, q WindowQuery) ([]TimelineRow, error) {
	s.lastWindowCall = q
	return s.windowRows, nil
}

func (s *stubTimelineRepo) All(ctx context.Context, q WindowQuery) ([]TimelineRow, error) {
	s.lastAllCall = q
	return s.allRows, nil
}

var (
	admin   = rbac.Principal{ID: "u-nick", Role: rbac.RoleAdmin}
	manager = rbac.Principal{ID: "u-marvel", Role: rbac.RoleManager, Region: rbac.RegionPtr(rbac.RegionIndia)}
)

func row(ts, actor, action, orderID string) TimelineRow {
	at, _ := time.Parse(time.RFC3339, ts)
	return TimelineRow{At: at, Actor: actor, Action: action, Entity: "order", EntityID: orderID}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{windowRows: []TimelineRow{
		row("2024-03-10T10:00:00Z", "u-nick", "order.paid", "o-1"),
		row("2024-03-09T09:00:00Z", "u-marvel", "order.created", "o-1"),
		row("2024-03-08T08:00:00Z", "u-kirk", "order.cancelled", "o-2"),
	}}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), admin, TimelineFilters{
		From:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 2, result.Paging.NextPage)
	assert.Zero(t, result.Paging.PrevPage)
	assert.Equal(t, int32(3), repo.lastWindowCall.Limit)
	assert.Equal(t, int32(0), repo.lastWindowCall.Offset)
	assert.True(t, repo.lastWindowCall.FromAt.Valid)
}

func TestServiceTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)
	result, err := svc.Timeline(context.Background(), admin, TimelineFilters{Page: 3, PageSize: 500, Actor: "  u-nick "})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, result.Paging.PageSize)
	assert.Equal(t, int32(2*MaxPageSize), repo.lastWindowCall.Offset)
	assert.Equal(t, pgtype.Text{String: "u-nick", Valid: true}, repo.lastWindowCall.Actor)
	assert.Equal(t, pgtype.Text{}, repo.lastWindowCall.Entity)
	assert.False(t, repo.lastWindowCall.FromAt.Valid)
	assert.NotNil(t, result.Rows)
}

func TestServiceTimelineDefaultPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	result, err := NewService(repo).Timeline(context.Background(), admin, TimelineFilters{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, result.Paging.PageSize)
	assert.Equal(t, 1, result.Paging.Page)
	assert.Equal(t, int32(DefaultPageSize+1), repo.lastWindowCall.Limit)
}

func TestServiceRequiresAdmin(t *testing.T) {
	svc := NewService(&stubTimelineRepo{})
	_, err := svc.Timeline(context.Background(), manager, TimelineFilters{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Export(context.Background(), manager, TimelineFilters{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestServiceExportReturnsAllRows(t *testing.T) {
	repo := &stubTimelineRepo{allRows: []TimelineRow{
		row("2024-03-10T10:00:00Z", "u-nick", "order.paid", "o-1"),
		row("2024-03-09T09:00:00Z", "u-nick", "order.created", "o-1"),
	}}
	rows, err := NewService(repo).Export(context.Background(), admin, TimelineFilters{EntityID: "o-1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, pgtype.Text{}, repo.lastAllCall.Actor)
	assert.Equal(t, pgtype.Text{String: "o-1", Valid: true}, repo.lastAllCall.EntityID)
}

func TestWriteCSV(t *testing.T) {
	r := row("2024-03-10T10:00:00Z", "u-nick", "order.paid", "o-1")
	r.Meta = map[string]any{"status": "PAID"}
	out, err := WriteCSV([]TimelineRow{r})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"2024-03-10T10:00:00Z", "u-nick", "order.paid", "order", "o-1", `{"status":"PAID"}`}, records[1])
}
