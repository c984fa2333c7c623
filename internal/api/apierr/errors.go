package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeAlreadyRegistered   = "ALREADY_REGISTERED"
	CodeSessionExists       = "SESSION_EXISTS"
	CodeNotInSession        = "NOT_IN_SESSION"
	CodeWrongTurn           = "WRONG_TURN"
	CodeCellOccupied        = "CELL_OCCUPIED"
	CodeOutOfRange          = "OUT_OF_RANGE"
	CodeInvalidState        = "INVALID_STATE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrParticipantNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeParticipantNotFound, "Participant not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrAlreadyRegistered):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyRegistered, "Participant already registered"}}
	case errors.Is(err, model.ErrSessionExists):
		return &httpError{http.StatusConflict, APIError{CodeSessionExists, "Session already exists for this pairing"}}
	case errors.Is(err, model.ErrNotInSession):
		return &httpError{http.StatusForbidden, APIError{CodeNotInSession, "Participant is not part of this session"}}
	case errors.Is(err, model.ErrWrongTurn):
		return &httpError{http.StatusForbidden, APIError{CodeWrongTurn, "Not this participant's turn"}}
	case errors.Is(err, model.ErrCellOccupied):
		return &httpError{http.StatusConflict, APIError{CodeCellOccupied, "Cell is already occupied"}}
	case errors.Is(err, model.ErrOutOfRange):
		return &httpError{http.StatusBadRequest, APIError{CodeOutOfRange, "Cell coordinates out of range"}}
	case errors.Is(err, model.ErrInvalidState):
		return &httpError{http.StatusConflict, APIError{CodeInvalidState, "Operation not allowed in current state"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
