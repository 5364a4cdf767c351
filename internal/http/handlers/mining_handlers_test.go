package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/http/middleware"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/models"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/service"
)

type fakeMiningService struct {
	startFn     func(ctx context.Context, input service.StartInput) (*models.Session, error)
	heartbeatFn func(ctx context.Context, userID, sessionID int64) (int64, float64, error)
	stopFn      func(ctx context.Context, userID, sessionID int64) error
}

func (f *fakeMiningService) Start(ctx context.Context, input service.StartInput) (*models.Session, error) {
	return f.startFn(ctx, input)
}

func (f *fakeMiningService) Heartbeat(ctx context.Context, userID, sessionID int64) (int64, float64, error) {
	return f.heartbeatFn(ctx, userID, sessionID)
}

func (f *fakeMiningService) Stop(ctx context.Context, userID, sessionID int64) error {
	return f.stopFn(ctx, userID, sessionID)
}

func (f *fakeMiningService) SessionsForUser(ctx context.Context, userID int64, limit int) ([]models.Session, error) {
	return nil, nil
}

func (f *fakeMiningService) ActiveSessions(ctx context.Context, limit int) ([]models.Session, error) {
	return nil, nil
}

func (f *fakeMiningService) ProfileByID(ctx context.Context, userID int64) (*models.Profile, error) {
	return &models.Profile{ID: userID}, nil
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	claims := &service.Claims{UserID: 42, Email: "miner@example.com", Role: "user"}
	return req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
}

func TestHandleStartMining(t *testing.T) {
	startedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeMiningService{
		startFn: func(ctx context.Context, input service.StartInput) (*models.Session, error) {
			if input.Email != "miner@example.com" || input.DisplayName != "Miner" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &models.Session{ID: 7, UserID: 42, Status: models.SessionStatusActive, StartedAt: startedAt}, nil
		},
	}
	h := NewMiningHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleStartMining(rec, authedRequest(http.MethodPost, "/start_mining", `{"user_email":"miner@example.com","user_name":"Miner"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		SessionID int64     `json:"session_id"`
		StartedAt time.Time `json:"started_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID != 7 {
		t.Fatalf("session_id = %d, want 7", resp.SessionID)
	}
	if !resp.StartedAt.Equal(startedAt) {
		t.Fatalf("started_at = %v, want %v", resp.StartedAt, startedAt)
	}
}

func TestHandleStartMiningMissingFields(t *testing.T) {
	h := NewMiningHandler(&fakeMiningService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleStartMining(rec, authedRequest(http.MethodPost, "/start_mining", `{"user_email":"miner@example.com"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStartMiningCapacityExceeded(t *testing.T) {
	svc := &fakeMiningService{
		startFn: func(ctx context.Context, input service.StartInput) (*models.Session, error) {
			return nil, &service.CapacityError{Max: 1}
		},
	}
	h := NewMiningHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleStartMining(rec, authedRequest(http.MethodPost, "/start_mining", `{"user_email":"miner@example.com","user_name":"Miner"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Error       string `json:"error"`
		MaxSessions int    `json:"max_sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.MaxSessions != 1 {
		t.Fatalf("max_sessions = %d, want 1", resp.MaxSessions)
	}
}

func TestHandleHeartbeat(t *testing.T) {
	svc := &fakeMiningService{
		heartbeatFn: func(ctx context.Context, userID, sessionID int64) (int64, float64, error) {
			if userID != 42 || sessionID != 7 {
				t.Fatalf("heartbeat(%d, %d), want (42, 7)", userID, sessionID)
			}
			return 30, 0.06, nil
		},
	}
	h := NewMiningHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleHeartbeat(rec, authedRequest(http.MethodPost, "/heartbeat", `{"session_id":7}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		AddedSeconds int64   `json:"added_seconds"`
		AddedTokens  float64 `json:"added_tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AddedSeconds != 30 || resp.AddedTokens != 0.06 {
		t.Fatalf("resp = %+v, want 30/0.06", resp)
	}
}

func TestHandleHeartbeatInvalidSession(t *testing.T) {
	svc := &fakeMiningService{
		heartbeatFn: func(ctx context.Context, userID, sessionID int64) (int64, float64, error) {
			return 0, 0, service.ErrInvalidSession
		},
	}
	h := NewMiningHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleHeartbeat(rec, authedRequest(http.MethodPost, "/heartbeat", `{"session_id":999}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid session") {
		t.Fatalf("body = %s, want invalid session error", rec.Body.String())
	}
}

func TestHandleHeartbeatWithoutClaims(t *testing.T) {
	h := NewMiningHandler(&fakeMiningService{}, zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/heartbeat", strings.NewReader(`{"session_id":7}`))
	h.HandleHeartbeat(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandleStopMining(t *testing.T) {
	stopped := false
	svc := &fakeMiningService{
		stopFn: func(ctx context.Context, userID, sessionID int64) error {
			stopped = true
			return nil
		},
	}
	h := NewMiningHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleStopMining(rec, authedRequest(http.MethodPost, "/stop_mining", `{"session_id":7}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !stopped {
		t.Fatal("expected service stop to be called")
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %s, want ok status", rec.Body.String())
	}
}

func TestHandleStopMiningInvalidSession(t *testing.T) {
	svc := &fakeMiningService{
		stopFn: func(ctx context.Context, userID, sessionID int64) error {
			return service.ErrInvalidSession
		},
	}
	h := NewMiningHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleStopMining(rec, authedRequest(http.MethodPost, "/stop_mining", `{"session_id":7}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
