package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/accrual"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/models"
)

// ErrSessionNotFound indicates the session is absent, owned by someone else or
// not active. The caller cannot tell these apart on purpose.
var ErrSessionNotFound = errors.New("session not found")

// ErrCapacityReached indicates the user already holds the maximum number of
// active sessions.
var ErrCapacityReached = errors.New("session capacity reached")

// SessionRepository handles persistence of mining sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository returns repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new active session unless the user already holds maxActive
// of them, in which case it reports ErrCapacityReached. The profile row lock
// serializes concurrent starts for one user, so the cap check and the insert
// act as a single step even under racing requests.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session, maxActive int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockProfile = `
		SELECT id
		FROM profiles
		WHERE id = $1
		FOR UPDATE
	`
	var profileID int64
	if err = tx.QueryRowContext(ctx, lockProfile, session.UserID).Scan(&profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrProfileNotFound
		}
		return err
	}

	const countActive = `
		SELECT COUNT(*)
		FROM mining_sessions
		WHERE user_id = $1 AND status = $2
	`
	var active int
	if err = tx.QueryRowContext(ctx, countActive, session.UserID, models.SessionStatusActive).Scan(&active); err != nil {
		return err
	}
	if active >= maxActive {
		err = ErrCapacityReached
		return err
	}

	const insert = `
		INSERT INTO mining_sessions (user_id, status, started_at, device_fingerprint, ip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	if err = tx.QueryRowContext(ctx, insert,
		session.UserID,
		session.Status,
		session.StartedAt,
		session.DeviceFingerprint,
		session.IP,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// End marks an active session as ended. Ended is terminal; repeating the call
// reports ErrSessionNotFound.
func (r *SessionRepository) End(ctx context.Context, sessionID, userID int64, endedAt time.Time) error {
	const query = `
		UPDATE mining_sessions
		SET status = $4,
		    ended_at = $3,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, sessionID, userID, endedAt, models.SessionStatusEnded, models.SessionStatusActive)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ApplyAccrual performs one heartbeat accrual as a single transaction: it locks
// the session row, derives elapsed time from the stored event trail, credits
// session seconds and profile balance together and appends the heartbeat event.
// Concurrent duplicate heartbeats serialize on the row lock, so a retry accrues
// only the gap since the event it raced with.
func (r *SessionRepository) ApplyAccrual(ctx context.Context, sessionID, userID int64, now time.Time, calc accrual.Calculator) (addedSeconds int64, addedTokens float64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		ownerID   int64
		status    string
		startedAt time.Time
	)
	const lockQuery = `
		SELECT user_id, status, started_at
		FROM mining_sessions
		WHERE id = $1
		FOR UPDATE
	`
	if err = tx.QueryRowContext(ctx, lockQuery, sessionID).Scan(&ownerID, &status, &startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrSessionNotFound
		}
		return 0, 0, err
	}
	if ownerID != userID || status != models.SessionStatusActive {
		err = ErrSessionNotFound
		return 0, 0, err
	}

	lastTS := startedAt
	const lastEventQuery = `
		SELECT ts
		FROM mining_events
		WHERE session_id = $1
		ORDER BY ts DESC
		LIMIT 1
	`
	var eventTS time.Time
	switch scanErr := tx.QueryRowContext(ctx, lastEventQuery, sessionID).Scan(&eventTS); {
	case scanErr == nil:
		lastTS = eventTS
	case errors.Is(scanErr, sql.ErrNoRows):
		// no events yet, accrue from session start
	default:
		err = scanErr
		return 0, 0, err
	}

	addedSeconds, addedTokens = calc.Accrue(now.Sub(lastTS))

	const updateSession = `
		UPDATE mining_sessions
		SET total_seconds = total_seconds + $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err = tx.ExecContext(ctx, updateSession, sessionID, addedSeconds); err != nil {
		return 0, 0, err
	}

	const updateBalance = `
		UPDATE profiles
		SET balance = balance + $2
		WHERE id = $1
	`
	if _, err = tx.ExecContext(ctx, updateBalance, userID, addedTokens); err != nil {
		return 0, 0, err
	}

	const insertEvent = `
		INSERT INTO mining_events (session_id, kind, ts)
		VALUES ($1, $2, $3)
	`
	if _, err = tx.ExecContext(ctx, insertEvent, sessionID, models.EventKindHeartbeat, now); err != nil {
		return 0, 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("accrual commit: %w", err)
	}
	return addedSeconds, addedTokens, nil
}

// ListByUser returns last N sessions for user, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, user_id, status, started_at, ended_at, device_fingerprint, ip, total_seconds, created_at, updated_at
		FROM mining_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListActive returns currently active sessions across all users.
func (r *SessionRepository) ListActive(ctx context.Context, limit int) ([]models.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, user_id, status, started_at, ended_at, device_fingerprint, ip, total_seconds, created_at, updated_at
		FROM mining_sessions
		WHERE status = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, models.SessionStatusActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]models.Session, error) {
	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Status,
			&s.StartedAt,
			&s.EndedAt,
			&s.DeviceFingerprint,
			&s.IP,
			&s.TotalSeconds,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}
