package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictacgame-go/internal/dependencies/mocks"
	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage/memory"
	"github.com/mcoot/tictacgame-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	participant, err := s.service.Register(s.ctx, "alice")
	s.Require().NoError(err)

	s.Equal(model.ParticipantID("alice"), participant.ID)
	s.Equal("alice", participant.DisplayName)
	s.Equal(model.ParticipantStateNew, participant.State)
	s.Equal(s.clock.Now(), participant.ConnectedAt)
}

func (s *ServiceSuite) TestRegisterDuplicate() {
	_, err := s.service.Register(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAlreadyRegistered)
}

// Get tests

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

// List tests

func (s *ServiceSuite) TestListOrderedByConnectionTime() {
	_, _ = s.service.Register(s.ctx, "charlie")
	s.clock.Advance(time.Minute)
	_, _ = s.service.Register(s.ctx, "alice")
	s.clock.Advance(time.Minute)
	_, _ = s.service.Register(s.ctx, "bob")

	participants, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(participants, 3)
	s.Equal(model.ParticipantID("charlie"), participants[0].ID)
	s.Equal(model.ParticipantID("alice"), participants[1].ID)
	s.Equal(model.ParticipantID("bob"), participants[2].ID)
}

func (s *ServiceSuite) TestListBreaksTiesByID() {
	_, _ = s.service.Register(s.ctx, "bob")
	_, _ = s.service.Register(s.ctx, "alice")

	participants, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(participants, 2)
	s.Equal(model.ParticipantID("alice"), participants[0].ID)
	s.Equal(model.ParticipantID("bob"), participants[1].ID)
}

// Rename tests

func (s *ServiceSuite) TestRename() {
	_, _ = s.service.Register(s.ctx, "alice")

	participant, err := s.service.Rename(s.ctx, "alice", "Alice the Great")
	s.Require().NoError(err)
	s.Equal("Alice the Great", participant.DisplayName)

	retrieved, err := s.service.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice the Great", retrieved.DisplayName)
}

func (s *ServiceSuite) TestRenameNotFound() {
	_, err := s.service.Rename(s.ctx, "nonexistent", "ghost")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

// Listed records must be safe to marshal on another goroutine while the
// owner keeps mutating; run with the race detector to catch aliasing.
func (s *ServiceSuite) TestRenameDoesNotRaceWithListReaders() {
	_, err := s.service.Register(s.ctx, "alice")
	s.Require().NoError(err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			participants, err := s.service.List(s.ctx)
			if err != nil {
				return
			}
			_, _ = json.Marshal(participants)
		}
	}()

	for i := 0; i < 200; i++ {
		_, err := s.service.Rename(s.ctx, "alice", fmt.Sprintf("alice-%d", i))
		s.Require().NoError(err)
	}
	close(done)
	wg.Wait()

	retrieved, err := s.service.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice-199", retrieved.DisplayName)
}

// SetState tests

func (s *ServiceSuite) TestSetStateValidTransition() {
	_, _ = s.service.Register(s.ctx, "alice")

	participant, err := s.service.SetState(s.ctx, "alice", model.ParticipantStatePending)
	s.Require().NoError(err)
	s.Equal(model.ParticipantStatePending, participant.State)

	participant, err = s.service.SetState(s.ctx, "alice", model.ParticipantStatePlaying)
	s.Require().NoError(err)
	s.Equal(model.ParticipantStatePlaying, participant.State)
}

func (s *ServiceSuite) TestSetStateInvalidTransition() {
	_, _ = s.service.Register(s.ctx, "alice")

	// new cannot jump straight to playing
	_, err := s.service.SetState(s.ctx, "alice", model.ParticipantStatePlaying)
	s.ErrorIs(err, model.ErrInvalidState)
}

func (s *ServiceSuite) TestSetStateSameStateAllowed() {
	_, _ = s.service.Register(s.ctx, "alice")
	_, _ = s.service.SetState(s.ctx, "alice", model.ParticipantStatePending)

	_, err := s.service.SetState(s.ctx, "alice", model.ParticipantStatePending)
	s.NoError(err)
}

// RecordResult tests

func (s *ServiceSuite) TestRecordResult() {
	_, _ = s.service.Register(s.ctx, "alice")
	_, _ = s.service.Register(s.ctx, "bob")

	err := s.service.RecordResult(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	winner, _ := s.service.Get(s.ctx, "alice")
	s.Equal(1, winner.Wins)
	s.Equal(0, winner.Losses)

	loser, _ := s.service.Get(s.ctx, "bob")
	s.Equal(0, loser.Wins)
	s.Equal(1, loser.Losses)
}

func (s *ServiceSuite) TestRecordStalemate() {
	_, _ = s.service.Register(s.ctx, "alice")
	_, _ = s.service.Register(s.ctx, "bob")

	err := s.service.RecordStalemate(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	a, _ := s.service.Get(s.ctx, "alice")
	s.Equal(1, a.Stalemates)

	b, _ := s.service.Get(s.ctx, "bob")
	s.Equal(1, b.Stalemates)
}

// Remove tests

func (s *ServiceSuite) TestRemoveReturnsFinalRecord() {
	_, _ = s.service.Register(s.ctx, "alice")

	participant, err := s.service.Remove(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.ParticipantStateLeft, participant.State)

	_, err = s.service.Get(s.ctx, "alice")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *ServiceSuite) TestRemoveNotFound() {
	_, err := s.service.Remove(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}
