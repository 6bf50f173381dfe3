package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/abetworks/crm-backend/internal/queue"
)

// AuditRepo persists audit trail entries delivered by the queue consumer.
// Rows are append-only; there is no update or delete path.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert stores one audit event.
func (r *AuditRepo) Insert(ctx context.Context, ev queue.AuditEvent) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_log (id,actor_id,action,entity,entity_id,occurred_at) VALUES (?,?,?,?,?,?)",
		uuid.NewString(), ev.ActorID, ev.Action, ev.Entity, ev.EntityID, ev.OccurredAt)
	return err
}

// Recent returns the newest entries, capped at limit.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]queue.AuditEvent, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT actor_id,action,entity,entity_id,occurred_at FROM audit_log ORDER BY occurred_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []queue.AuditEvent
	for rows.Next() {
		var ev queue.AuditEvent
		if err := rows.Scan(&ev.ActorID, &ev.Action, &ev.Entity, &ev.EntityID, &ev.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
