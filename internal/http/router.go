package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Signup         http.HandlerFunc
	Login          http.HandlerFunc
	StartMining    http.HandlerFunc
	Heartbeat      http.HandlerFunc
	StopMining     http.HandlerFunc
	SessionsMe     http.HandlerFunc
	ActiveSessions http.HandlerFunc
	ProfileMe      http.HandlerFunc
	LiveFeed       http.HandlerFunc
	Health         http.HandlerFunc
}

// NewRouter registers endpoints. Everything except signup/login and health
// goes through the auth middleware; the live feed carries session and user
// ids, so it needs a bearer token like the introspection routes.
func NewRouter(routes Routes, auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	protected := func(expected string, handler http.HandlerFunc) http.Handler {
		return auth(method(expected, handler))
	}

	if routes.Signup != nil {
		mux.Handle("/auth/signup", method(http.MethodPost, routes.Signup))
	}
	if routes.Login != nil {
		mux.Handle("/auth/login", method(http.MethodPost, routes.Login))
	}
	if routes.StartMining != nil {
		mux.Handle("/start_mining", protected(http.MethodPost, routes.StartMining))
	}
	if routes.Heartbeat != nil {
		mux.Handle("/heartbeat", protected(http.MethodPost, routes.Heartbeat))
	}
	if routes.StopMining != nil {
		mux.Handle("/stop_mining", protected(http.MethodPost, routes.StopMining))
	}
	if routes.SessionsMe != nil {
		mux.Handle("/sessions/me", protected(http.MethodGet, routes.SessionsMe))
	}
	if routes.ActiveSessions != nil {
		mux.Handle("/sessions/active", protected(http.MethodGet, routes.ActiveSessions))
	}
	if routes.ProfileMe != nil {
		mux.Handle("/profile/me", protected(http.MethodGet, routes.ProfileMe))
	}
	if routes.LiveFeed != nil {
		mux.Handle("/ws/live", protected(http.MethodGet, routes.LiveFeed))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
