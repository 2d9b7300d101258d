package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/slooze/foodorder/internal/platform/db"
)

const timelineWhere = `
WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
  AND ($2::timestamptz IS NULL OR occurred_at < $2)
  AND ($3::text IS NULL OR actor_id = $3)
  AND ($4::text IS NULL OR entity = $4)
  AND ($5::text IS NULL OR entity_id = $5)
  AND ($6::text IS NULL OR action = $6)
ORDER BY occurred_at DESC, id DESC`

const timelineSelect = `SELECT occurred_at, actor_id, action, entity, entity_id, meta FROM audit_logs`

// PGRepository reads the timeline from PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository binds a repository to conn.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// Window returns at most q.Limit rows starting at q.Offset.
func (r *PGRepository) Window(ctx context.Context, q WindowQuery) ([]TimelineRow, error) {
	rows, err := r.db.Query(ctx, timelineSelect+timelineWhere+` OFFSET $7 LIMIT $8`,
		q.FromAt, q.ToAt, q.Actor, q.Entity, q.EntityID, q.Action, q.Offset, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query window: %w", err)
	}
	return scanTimeline(rows)
}

// All returns every matching row.
func (r *PGRepository) All(ctx context.Context, q WindowQuery) ([]TimelineRow, error) {
	rows, err := r.db.Query(ctx, timelineSelect+timelineWhere,
		q.FromAt, q.ToAt, q.Actor, q.Entity, q.EntityID, q.Action)
	if err != nil {
		return nil, fmt.Errorf("audit: query all: %w", err)
	}
	return scanTimeline(rows)
}

func scanTimeline(rows pgx.Rows) ([]TimelineRow, error) {
	defer rows.Close()
	var out []TimelineRow
	for rows.Next() {
		var (
			row  TimelineRow
			meta []byte
		)
		if err := rows.Scan(&row.At, &row.Actor, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &row.Meta); err != nil {
				return nil, fmt.Errorf("audit: decode meta: %w", err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
