package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tictacgame-go/internal/api/apierr"
	"github.com/mcoot/tictacgame-go/internal/api/handler"
	"github.com/mcoot/tictacgame-go/internal/middleware"
	"github.com/mcoot/tictacgame-go/internal/services/registry"
	"github.com/mcoot/tictacgame-go/internal/services/session"
	"github.com/mcoot/tictacgame-go/internal/transport/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Gateway           *ws.Gateway
	Registry          *registry.Service
	SessionController *session.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	participantHandler := handler.NewParticipantHandler(cfg.Registry)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, apiPanicHandler)

	// The websocket endpoint stays outside the middleware chain: the
	// upgrade needs the raw ResponseWriter to hijack the connection.
	r.HandleFunc("/ws", cfg.Gateway.ServeWS).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/players", participantHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", participantHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
