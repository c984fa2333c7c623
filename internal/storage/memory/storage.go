package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface. Records
// are copied on both write and read so callers never alias stored state
// across goroutines.
type Storage struct {
	mu sync.RWMutex

	participants map[model.ParticipantID]*model.Participant
	sessions     map[model.SessionID]*model.Session
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		participants: make(map[model.ParticipantID]*model.Participant),
		sessions:     make(map[model.SessionID]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func cloneParticipant(p *model.Participant) *model.Participant {
	clone := *p
	return &clone
}

func cloneSession(s *model.Session) *model.Session {
	clone := *s
	clone.Tally = maps.Clone(s.Tally)
	return &clone
}

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, participant *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[participant.ID] = cloneParticipant(participant)
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[id]
	if !ok {
		return nil, model.ErrParticipantNotFound
	}
	return cloneParticipant(participant), nil
}

func (s *Storage) DeleteParticipant(ctx context.Context, id model.ParticipantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, id)
	return nil
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participants := make([]*model.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, cloneParticipant(p))
	}
	return participants, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, cloneSession(sess))
	}
	return sessions, nil
}
