package model

import (
	"strings"
	"time"
)

// sessionIDSeparator joins the two participant identities into a session ID.
// The initiator always comes first.
const sessionIDSeparator = "#"

// SessionID identifies a session. It is derived from the two participants'
// identities and doubles as the transport group name both parties join.
type SessionID string

// NewSessionID derives the session identity from the pair, initiator first
func NewSessionID(initiator, invitee ParticipantID) SessionID {
	return SessionID(string(initiator) + sessionIDSeparator + string(invitee))
}

// Participants splits the session ID back into its two halves
func (id SessionID) Participants() (initiator, invitee ParticipantID) {
	parts := strings.SplitN(string(id), sessionIDSeparator, 2)
	if len(parts) != 2 {
		return ParticipantID(parts[0]), ""
	}
	return ParticipantID(parts[0]), ParticipantID(parts[1])
}

// Involves reports whether the participant is on either side of the session
func (id SessionID) Involves(p ParticipantID) bool {
	initiator, invitee := id.Participants()
	return p == initiator || p == invitee
}

// GroupName returns the transport group name for this session
func (id SessionID) GroupName() string {
	return string(id)
}

// SessionState represents where a session is in its lifecycle
type SessionState string

const (
	// SessionStatePending means the invitation has been issued but not accepted
	SessionStatePending SessionState = "pending"
	// SessionStateActive means both parties have joined and play is underway
	SessionStateActive SessionState = "active"
	// SessionStateEnded is terminal; the session is removed on entry
	SessionStateEnded SessionState = "ended"
)

// Mark identifies a side within a session
type Mark string

const (
	// MarkX is the initiator and first mover
	MarkX Mark = "X"
	// MarkO is the invitee
	MarkO Mark = "O"
)

// Other returns the opposing mark
func (m Mark) Other() Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

// MarkTally is the running per-mark score within a session
type MarkTally struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Stalemates int `json:"stalemates"`
}

// Session is one two-party game: board, turn pointer, per-mark tally and
// lifecycle state. PlayerX and PlayerO are snapshots of the participant
// records, refreshed whenever the session is persisted.
type Session struct {
	ID          SessionID          `json:"id"`
	PlayerX     Participant        `json:"player_x"`
	PlayerO     Participant        `json:"player_o"`
	Board       Grid               `json:"board"`
	CurrentTurn ParticipantID      `json:"current_turn"`
	Tally       map[Mark]MarkTally `json:"tally"`
	// Live gates scoring: it flips to false exactly once, at the first
	// terminal detection, and tally increments happen only on that flip.
	Live      bool         `json:"live"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// MarkOf returns the mark held by the given participant
func (s *Session) MarkOf(id ParticipantID) (Mark, bool) {
	switch id {
	case s.PlayerX.ID:
		return MarkX, true
	case s.PlayerO.ID:
		return MarkO, true
	}
	return "", false
}

// PlayerFor returns the participant snapshot holding the given mark
func (s *Session) PlayerFor(m Mark) Participant {
	if m == MarkX {
		return s.PlayerX
	}
	return s.PlayerO
}

// Opponent returns the other party's snapshot
func (s *Session) Opponent(id ParticipantID) (Participant, bool) {
	switch id {
	case s.PlayerX.ID:
		return s.PlayerO, true
	case s.PlayerO.ID:
		return s.PlayerX, true
	}
	return Participant{}, false
}
