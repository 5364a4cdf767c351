package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/accrual"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/models"
	redisstore "github.com/Steeve208/ReeskCapital-web-sub006/internal/redis"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/repository"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/ws"
)

// ErrInvalidSession is returned when a session is absent, owned by a different
// user or no longer active.
var ErrInvalidSession = errors.New("mining: invalid session")

// CapacityError reports that the per-user concurrent session cap was reached.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("mining: maximum concurrent sessions reached (cap %d)", e.Max)
}

// SessionRepository defines the session storage contract used by the service.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session, maxActive int) error
	End(ctx context.Context, sessionID, userID int64, endedAt time.Time) error
	ApplyAccrual(ctx context.Context, sessionID, userID int64, now time.Time, calc accrual.Calculator) (int64, float64, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Session, error)
	ListActive(ctx context.Context, limit int) ([]models.Session, error)
}

// EventRepository appends to the append-only session event log.
type EventRepository interface {
	Append(ctx context.Context, sessionID int64, kind string, ts time.Time) error
}

// FeedPublisher pushes lifecycle events to the live operator feed.
type FeedPublisher interface {
	Publish(event ws.SessionEvent)
}

// MiningService orchestrates the session lifecycle: start, heartbeat accrual
// and stop.
type MiningService struct {
	profiles      ProfileRepository
	sessions      SessionRepository
	events        EventRepository
	activeStore   *redisstore.Store
	feed          FeedPublisher
	calc          accrual.Calculator
	maxConcurrent int
	logger        *zap.Logger

	now func() time.Time
}

// NewMiningService builds the service. activeStore and feed may be nil.
func NewMiningService(
	profiles ProfileRepository,
	sessions SessionRepository,
	events EventRepository,
	activeStore *redisstore.Store,
	feed FeedPublisher,
	calc accrual.Calculator,
	maxConcurrent int,
	logger *zap.Logger,
) *MiningService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &MiningService{
		profiles:      profiles,
		sessions:      sessions,
		events:        events,
		activeStore:   activeStore,
		feed:          feed,
		calc:          calc,
		maxConcurrent: maxConcurrent,
		logger:        logger,
		now:           time.Now,
	}
}

// StartInput carries everything needed to open a session.
type StartInput struct {
	Email             string
	DisplayName       string
	DeviceFingerprint string
	IP                string
}

// Start resolves or creates the profile by email, enforces the concurrency cap
// and opens a new active session with a start event.
func (s *MiningService) Start(ctx context.Context, input StartInput) (*models.Session, error) {
	profile, err := s.profiles.GetByEmail(ctx, input.Email)
	if errors.Is(err, repository.ErrProfileNotFound) {
		profile = &models.Profile{
			Email:       input.Email,
			DisplayName: input.DisplayName,
			Role:        "user",
		}
		err = s.profiles.Create(ctx, profile)
	}
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:            profile.ID,
		Status:            models.SessionStatusActive,
		StartedAt:         s.now().UTC(),
		DeviceFingerprint: input.DeviceFingerprint,
		IP:                input.IP,
	}
	// The cap check runs inside the storage transaction, so two racing starts
	// for one user cannot both slip under the limit.
	if err := s.sessions.Create(ctx, session, s.maxConcurrent); err != nil {
		if errors.Is(err, repository.ErrCapacityReached) {
			return nil, &CapacityError{Max: s.maxConcurrent}
		}
		return nil, err
	}

	// Elapsed time falls back to started_at when the trail is empty, so a lost
	// start event never breaks accrual.
	if err := s.events.Append(ctx, session.ID, models.EventKindStart, session.StartedAt); err != nil {
		s.logger.Warn("failed to append start event", zap.Int64("session_id", session.ID), zap.Error(err))
	}

	if s.activeStore != nil {
		cacheErr := s.activeStore.Save(ctx, redisstore.ActiveSession{
			SessionID:         session.ID,
			UserID:            profile.ID,
			Email:             profile.Email,
			DeviceFingerprint: input.DeviceFingerprint,
			StartedAt:         session.StartedAt,
		})
		if cacheErr != nil && cacheErr != redis.Nil {
			s.logger.Warn("failed to cache active session", zap.Error(cacheErr))
		}
	}

	s.publish(ws.SessionEvent{
		Kind:      "started",
		SessionID: session.ID,
		UserID:    profile.ID,
		TS:        session.StartedAt,
	})

	s.logger.Info("mining session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("user_id", profile.ID),
	)
	return session, nil
}

// Heartbeat accrues tokens for the elapsed time since the session's last
// recorded event. The entire read-compute-write runs as one storage
// transaction; no observer ever sees session seconds updated without the
// matching balance change.
func (s *MiningService) Heartbeat(ctx context.Context, userID, sessionID int64) (addedSeconds int64, addedTokens float64, err error) {
	now := s.now().UTC()
	addedSeconds, addedTokens, err = s.sessions.ApplyAccrual(ctx, sessionID, userID, now, s.calc)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return 0, 0, ErrInvalidSession
		}
		return 0, 0, err
	}

	if s.activeStore != nil {
		if cacheErr := s.activeStore.Touch(ctx, sessionID); cacheErr != nil && cacheErr != redis.Nil {
			s.logger.Warn("failed to refresh active session cache", zap.Error(cacheErr))
		}
	}

	s.publish(ws.SessionEvent{
		Kind:         "heartbeat",
		SessionID:    sessionID,
		UserID:       userID,
		AddedSeconds: addedSeconds,
		AddedTokens:  addedTokens,
		TS:           now,
	})
	return addedSeconds, addedTokens, nil
}

// Stop ends an active session. Ended is terminal; heartbeats after stop fail
// with ErrInvalidSession.
func (s *MiningService) Stop(ctx context.Context, userID, sessionID int64) error {
	now := s.now().UTC()
	if err := s.sessions.End(ctx, sessionID, userID, now); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrInvalidSession
		}
		return err
	}

	if err := s.events.Append(ctx, sessionID, models.EventKindStop, now); err != nil {
		s.logger.Warn("failed to append stop event", zap.Int64("session_id", sessionID), zap.Error(err))
	}

	if s.activeStore != nil {
		if err := s.activeStore.Delete(ctx, sessionID); err != nil && err != redis.Nil {
			s.logger.Warn("failed to delete active session cache", zap.Error(err))
		}
	}

	s.publish(ws.SessionEvent{
		Kind:      "stopped",
		SessionID: sessionID,
		UserID:    userID,
		TS:        now,
	})

	s.logger.Info("mining session stopped",
		zap.Int64("session_id", sessionID),
		zap.Int64("user_id", userID),
	)
	return nil
}

// SessionsForUser returns the caller's session history.
func (s *MiningService) SessionsForUser(ctx context.Context, userID int64, limit int) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID, limit)
}

// ActiveSessions returns currently running sessions across all users.
func (s *MiningService) ActiveSessions(ctx context.Context, limit int) ([]models.Session, error) {
	return s.sessions.ListActive(ctx, limit)
}

// ProfileByID returns the profile with its current balance.
func (s *MiningService) ProfileByID(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

func (s *MiningService) publish(event ws.SessionEvent) {
	if s.feed != nil {
		s.feed.Publish(event)
	}
}
