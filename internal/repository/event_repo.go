package repository

import (
	"context"
	"database/sql"
	"time"
)

// EventRepository appends to the session event log. Events are never mutated
// or deleted.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository returns repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append records a lifecycle event.
func (r *EventRepository) Append(ctx context.Context, sessionID int64, kind string, ts time.Time) error {
	const query = `
		INSERT INTO mining_events (session_id, kind, ts)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, kind, ts)
	return err
}
