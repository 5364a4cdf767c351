package models

import "time"

// Event kinds recorded in the append-only session event log.
const (
	EventKindStart     = "start"
	EventKindHeartbeat = "heartbeat"
	EventKindStop      = "stop"
)

// Event is one entry of a session's lifecycle trail. The most recent event per
// session is the basis for elapsed-time accrual.
type Event struct {
	ID        int64     `db:"id" json:"id"`
	SessionID int64     `db:"session_id" json:"session_id"`
	Kind      string    `db:"kind" json:"kind"`
	TS        time.Time `db:"ts" json:"ts"`
}
