package handlers

import (
	"net/http"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/http/middleware"
)

// NewSessionsMeHandler returns GET /sessions/me handler.
func NewSessionsMeHandler(svc MiningService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}

		sessions, err := svc.SessionsForUser(r.Context(), claims.UserID, 50)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch sessions")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessions": sessions,
		})
	}
}

// NewActiveSessionsHandler returns GET /sessions/active handler.
func NewActiveSessionsHandler(svc MiningService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := svc.ActiveSessions(r.Context(), 50)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch active sessions")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessions": sessions,
		})
	}
}

// NewProfileMeHandler returns GET /profile/me handler with the current balance.
func NewProfileMeHandler(svc MiningService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}

		profile, err := svc.ProfileByID(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch profile")
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}
