package response

import (
	"time"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// Participant represents a participant in API responses
type Participant struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	State       string    `json:"state"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Stalemates  int       `json:"stalemates"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ParticipantFromModel converts a model.Participant to a response Participant
func ParticipantFromModel(p *model.Participant) Participant {
	return Participant{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		State:       string(p.State),
		Wins:        p.Wins,
		Losses:      p.Losses,
		Stalemates:  p.Stalemates,
		ConnectedAt: p.ConnectedAt,
	}
}

// ParticipantList is the response for listing participants
type ParticipantList struct {
	Participants []Participant `json:"participants"`
}

// ParticipantListFromModel converts a slice of model participants
func ParticipantListFromModel(ps []*model.Participant) ParticipantList {
	out := ParticipantList{Participants: make([]Participant, 0, len(ps))}
	for _, p := range ps {
		out.Participants = append(out.Participants, ParticipantFromModel(p))
	}
	return out
}

// Session represents a session in API responses
type Session struct {
	ID          string                         `json:"id"`
	PlayerX     Participant                    `json:"player_x"`
	PlayerO     Participant                    `json:"player_o"`
	Board       model.Grid                     `json:"board"`
	CurrentTurn string                         `json:"current_turn"`
	Tally       map[model.Mark]model.MarkTally `json:"tally"`
	Live        bool                           `json:"live"`
	State       string                         `json:"state"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:          string(s.ID),
		PlayerX:     ParticipantFromModel(&s.PlayerX),
		PlayerO:     ParticipantFromModel(&s.PlayerO),
		Board:       s.Board,
		CurrentTurn: string(s.CurrentTurn),
		Tally:       s.Tally,
		Live:        s.Live,
		State:       string(s.State),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// SessionListFromModel converts a slice of model sessions
func SessionListFromModel(ss []*model.Session) SessionList {
	out := SessionList{Sessions: make([]Session, 0, len(ss))}
	for _, s := range ss {
		out.Sessions = append(out.Sessions, SessionFromModel(s))
	}
	return out
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
