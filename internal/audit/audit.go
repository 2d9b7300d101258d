// Package audit persists who changed what into audit_logs.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/slooze/foodorder/internal/platform/db"
)

// Entry is a record stored in audit_logs.
type Entry struct {
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// Validate checks the mandatory fields.
func (e Entry) Validate() error {
	if e.Action == "" || e.Entity == "" || e.EntityID == "" {
		return errors.New("audit: entry requires action, entity and entity_id")
	}
	return nil
}

// Recorder writes entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Logger writes entries into audit_logs.
type Logger struct {
	db db.DBTX
}

// NewLogger returns a Logger bound to conn.
func NewLogger(conn db.DBTX) *Logger {
	return &Logger{db: conn}
}

const insertEntry = `
INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))`

// Record persists the entry.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	if l == nil {
		return errors.New("audit: logger not initialised")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	meta, err := json.Marshal(e.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !e.At.IsZero() {
		t := e.At.UTC()
		at = &t
	}
	_, err = l.db.Exec(ctx, insertEntry, e.ActorID, e.Action, e.Entity, e.EntityID, meta, at)
	return err
}

var _ Recorder = (*Logger)(nil)
