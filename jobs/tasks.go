package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/slooze/foodorder/internal/audit"
	"github.com/slooze/foodorder/internal/orders"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrderAudit records an order lifecycle event in audit_logs.
	TaskOrderAudit = "audit:order_event"
)

// OrderAuditPayload is the job body for TaskOrderAudit.
type OrderAuditPayload struct {
	Event orders.Event `json:"event"`
}

// NewOrderAuditTask constructs an Asynq task for e.
func NewOrderAuditTask(e orders.Event) (*asynq.Task, error) {
	body, err := json.Marshal(OrderAuditPayload{Event: e})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderAudit, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// JobObserver counts processed jobs.
type JobObserver interface {
	ObserveJob(taskType string, err error)
}

// OrderAuditHandler writes order events into the audit log.
type OrderAuditHandler struct {
	recorder audit.Recorder
	observer JobObserver
	logger   *slog.Logger
}

// NewOrderAuditHandler constructs the handler. observer may be nil.
func NewOrderAuditHandler(recorder audit.Recorder, observer JobObserver, logger *slog.Logger) *OrderAuditHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderAuditHandler{recorder: recorder, observer: observer, logger: logger}
}

// TaskHandler registers the handler with a Worker.
func (h *OrderAuditHandler) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskOrderAudit, Handler: h.Handle}
}

// Handle processes TaskOrderAudit tasks.
func (h *OrderAuditHandler) Handle(ctx context.Context, t *asynq.Task) (err error) {
	defer func() {
		if h.observer != nil {
			h.observer.ObserveJob(t.Type(), err)
		}
	}()

	var payload OrderAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("jobs: decode %s: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	e := payload.Event
	entry := audit.Entry{
		ActorID:  e.ActorID,
		Action:   "order." + string(e.Kind),
		Entity:   "order",
		EntityID: e.OrderID,
		Meta: map[string]any{
			"status":        string(e.Status),
			"previous":      string(e.PreviousStatus),
			"restaurant_id": e.RestaurantID,
			"region":        string(e.Region),
			"total_amount":  e.TotalAmount.StringFixed(2),
		},
		At: e.OccurredAt,
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("jobs: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.recorder.Record(ctx, entry); err != nil {
		return fmt.Errorf("jobs: record audit: %w", err)
	}
	h.logger.Debug("order audit recorded",
		slog.String("order_id", e.OrderID),
		slog.String("action", entry.Action),
		slog.String("occurred_at", e.OccurredAt.Format(time.RFC3339)),
	)
	return nil
}
