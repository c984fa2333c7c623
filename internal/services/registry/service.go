package registry

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mcoot/tictacgame-go/internal/dependencies/clock"
	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// Service tracks every connected participant and their lifecycle state
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new participant registry
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Register creates a participant for a fresh connection. The display name
// defaults to the identity until the owner renames it.
func (s *Service) Register(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	if _, err := s.storage.GetParticipant(ctx, id); err == nil {
		return nil, model.ErrAlreadyRegistered
	}

	participant := &model.Participant{
		ID:          id,
		DisplayName: string(id),
		State:       model.ParticipantStateNew,
		ConnectedAt: s.clock.Now(),
	}

	if err := s.storage.SaveParticipant(ctx, participant); err != nil {
		return nil, err
	}

	s.logger.Info("participant registered", slog.String("participant_id", string(id)))
	return participant, nil
}

// Get retrieves a participant by identity
func (s *Service) Get(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	return s.storage.GetParticipant(ctx, id)
}

// List returns all registered participants ordered by connection time
func (s *Service) List(ctx context.Context) ([]*model.Participant, error) {
	participants, err := s.storage.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(participants, func(i, j int) bool {
		if participants[i].ConnectedAt.Equal(participants[j].ConnectedAt) {
			return participants[i].ID < participants[j].ID
		}
		return participants[i].ConnectedAt.Before(participants[j].ConnectedAt)
	})
	return participants, nil
}

// Rename changes a participant's display name
func (s *Service) Rename(ctx context.Context, id model.ParticipantID, name string) (*model.Participant, error) {
	participant, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}

	participant.DisplayName = name
	if err := s.storage.SaveParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// SetState transitions a participant's lifecycle state. Illegal transitions
// fail with ErrInvalidState.
func (s *Service) SetState(ctx context.Context, id model.ParticipantID, state model.ParticipantState) (*model.Participant, error) {
	participant, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}

	if !participant.State.CanTransitionTo(state) {
		return nil, model.ErrInvalidState
	}

	participant.State = state
	if err := s.storage.SaveParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// RecordResult increments the winner's and loser's cumulative tallies
func (s *Service) RecordResult(ctx context.Context, winnerID, loserID model.ParticipantID) error {
	winner, err := s.storage.GetParticipant(ctx, winnerID)
	if err != nil {
		return err
	}
	loser, err := s.storage.GetParticipant(ctx, loserID)
	if err != nil {
		return err
	}

	winner.Wins++
	loser.Losses++

	if err := s.storage.SaveParticipant(ctx, winner); err != nil {
		return err
	}
	return s.storage.SaveParticipant(ctx, loser)
}

// RecordStalemate increments both participants' stalemate tallies
func (s *Service) RecordStalemate(ctx context.Context, a, b model.ParticipantID) error {
	for _, id := range []model.ParticipantID{a, b} {
		participant, err := s.storage.GetParticipant(ctx, id)
		if err != nil {
			return err
		}
		participant.Stalemates++
		if err := s.storage.SaveParticipant(ctx, participant); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes a participant and returns its final record with the
// terminal left state applied
func (s *Service) Remove(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	participant, err := s.storage.GetParticipant(ctx, id)
	if err != nil {
		return nil, err
	}

	participant.State = model.ParticipantStateLeft
	if err := s.storage.DeleteParticipant(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("participant removed", slog.String("participant_id", string(id)))
	return participant, nil
}
