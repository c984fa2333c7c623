package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tictacgame-go/internal/api/response"
	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/services/session"
)

// SessionHandler handles session-related endpoints
type SessionHandler struct {
	sessions *session.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Controller) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionListFromModel(sessions))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		WriteError(w, NewInvalidRequestError("session id is required"))
		return
	}

	sess, err := h.sessions.Get(r.Context(), model.SessionID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}
