package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/http/middleware"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/models"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/service"
)

// MiningService is the lifecycle contract the handlers call.
type MiningService interface {
	Start(ctx context.Context, input service.StartInput) (*models.Session, error)
	Heartbeat(ctx context.Context, userID, sessionID int64) (int64, float64, error)
	Stop(ctx context.Context, userID, sessionID int64) error
	SessionsForUser(ctx context.Context, userID int64, limit int) ([]models.Session, error)
	ActiveSessions(ctx context.Context, limit int) ([]models.Session, error)
	ProfileByID(ctx context.Context, userID int64) (*models.Profile, error)
}

// MiningHandler holds the session lifecycle endpoints.
type MiningHandler struct {
	svc    MiningService
	logger *zap.Logger
}

// NewMiningHandler builds the handler set.
func NewMiningHandler(svc MiningService, logger *zap.Logger) *MiningHandler {
	return &MiningHandler{svc: svc, logger: logger}
}

type startMiningRequest struct {
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}

type startMiningResponse struct {
	SessionID int64     `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// HandleStartMining handles POST /start_mining.
func (h *MiningHandler) HandleStartMining(w http.ResponseWriter, r *http.Request) {
	var req startMiningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserEmail == "" || req.UserName == "" {
		writeError(w, http.StatusBadRequest, "user_email and user_name are required")
		return
	}

	fingerprint := r.UserAgent()
	if fingerprint == "" {
		fingerprint = "unknown"
	}

	session, err := h.svc.Start(r.Context(), service.StartInput{
		Email:             req.UserEmail,
		DisplayName:       req.UserName,
		DeviceFingerprint: fingerprint,
		IP:                clientIP(r),
	})
	if err != nil {
		var capErr *service.CapacityError
		if errors.As(err, &capErr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":        "maximum concurrent sessions reached",
				"max_sessions": capErr.Max,
			})
			return
		}
		h.logger.Error("start mining failed", zap.String("email", req.UserEmail), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start mining session")
		return
	}

	writeJSON(w, http.StatusOK, startMiningResponse{
		SessionID: session.ID,
		StartedAt: session.StartedAt,
	})
}

type sessionRequest struct {
	SessionID int64 `json:"session_id"`
}

type heartbeatResponse struct {
	AddedSeconds int64   `json:"added_seconds"`
	AddedTokens  float64 `json:"added_tokens"`
}

// HandleHeartbeat handles POST /heartbeat.
func (h *MiningHandler) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == 0 {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	addedSeconds, addedTokens, err := h.svc.Heartbeat(r.Context(), claims.UserID, req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			writeError(w, http.StatusBadRequest, "invalid session")
			return
		}
		h.logger.Error("heartbeat failed", zap.Int64("session_id", req.SessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process heartbeat")
		return
	}

	writeJSON(w, http.StatusOK, heartbeatResponse{
		AddedSeconds: addedSeconds,
		AddedTokens:  addedTokens,
	})
}

// HandleStopMining handles POST /stop_mining.
func (h *MiningHandler) HandleStopMining(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == 0 {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := h.svc.Stop(r.Context(), claims.UserID, req.SessionID); err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			writeError(w, http.StatusBadRequest, "invalid session")
			return
		}
		h.logger.Error("stop mining failed", zap.Int64("session_id", req.SessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to stop mining session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
