package model

import "time"

// ParticipantID is the transport-assigned connection handle for a player.
// It is unique while the connection is alive and not stable across reconnects.
type ParticipantID string

// ParticipantState represents where a participant is in its lifecycle
type ParticipantState string

const (
	// ParticipantStateNew means connected and not in any session
	ParticipantStateNew ParticipantState = "new"
	// ParticipantStatePending means an invitation is outstanding (sent or received)
	ParticipantStatePending ParticipantState = "pending"
	// ParticipantStatePlaying means the participant is in an active session
	ParticipantStatePlaying ParticipantState = "playing"
	// ParticipantStateLeft is terminal, emitted once at disconnect
	ParticipantStateLeft ParticipantState = "left"
)

// validParticipantTransitions enumerates the legal lifecycle moves.
// Staying in the same state is always allowed.
var validParticipantTransitions = map[ParticipantState][]ParticipantState{
	ParticipantStateNew:     {ParticipantStatePending, ParticipantStateLeft},
	ParticipantStatePending: {ParticipantStatePlaying, ParticipantStateNew, ParticipantStateLeft},
	ParticipantStatePlaying: {ParticipantStateNew, ParticipantStateLeft},
	ParticipantStateLeft:    {},
}

// CanTransitionTo reports whether moving to next is a legal lifecycle transition
func (s ParticipantState) CanTransitionTo(next ParticipantState) bool {
	if s == next {
		return true
	}
	for _, allowed := range validParticipantTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Participant represents one connected player
type Participant struct {
	ID          ParticipantID    `json:"id"`
	DisplayName string           `json:"display_name"`
	State       ParticipantState `json:"state"`
	Wins        int              `json:"wins"`
	Losses      int              `json:"losses"`
	Stalemates  int              `json:"stalemates"`
	ConnectedAt time.Time        `json:"connected_at"`
}
