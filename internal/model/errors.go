package model

import "errors"

// Common errors used across the application
var (
	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyRegistered   = errors.New("participant already registered")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists for this pair")
	ErrNotInSession    = errors.New("participant is not in this session")

	// Turn errors
	ErrWrongTurn    = errors.New("not this participant's turn")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrOutOfRange   = errors.New("cell position out of range")

	// Lifecycle errors
	ErrInvalidState = errors.New("operation not valid in current state")
)
