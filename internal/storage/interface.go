package storage

import (
	"context"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// Storage defines the interface for shared coordinator state
type Storage interface {
	// Participant operations
	SaveParticipant(ctx context.Context, participant *model.Participant) error
	GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error)
	DeleteParticipant(ctx context.Context, id model.ParticipantID) error
	ListParticipants(ctx context.Context) ([]*model.Participant, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	ListSessions(ctx context.Context) ([]*model.Session, error)
}
