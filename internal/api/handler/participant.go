package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tictacgame-go/internal/api/response"
	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/services/registry"
)

// ParticipantHandler handles participant-related endpoints
type ParticipantHandler struct {
	registry *registry.Service
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(registry *registry.Service) *ParticipantHandler {
	return &ParticipantHandler{
		registry: registry,
	}
}

// List handles GET /api/v1/players
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.registry.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantListFromModel(participants))
}

// Get handles GET /api/v1/players/{id}
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		WriteError(w, NewInvalidRequestError("player id is required"))
		return
	}

	participant, err := h.registry.Get(r.Context(), model.ParticipantID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ParticipantFromModel(participant))
}
