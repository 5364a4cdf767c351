package models

import "time"

// Session status values. A session enters active via start and leaves it only
// via stop; ended is terminal.
const (
	SessionStatusActive = "active"
	SessionStatusEnded  = "ended"
)

// Session represents one continuous mining attempt.
type Session struct {
	ID                int64      `db:"id" json:"id"`
	UserID            int64      `db:"user_id" json:"user_id"`
	Status            string     `db:"status" json:"status"`
	StartedAt         time.Time  `db:"started_at" json:"started_at"`
	EndedAt           *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	DeviceFingerprint string     `db:"device_fingerprint" json:"device_fingerprint"`
	IP                string     `db:"ip" json:"ip"`
	TotalSeconds      int64      `db:"total_seconds" json:"total_seconds"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}
