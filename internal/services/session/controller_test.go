package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictacgame-go/internal/dependencies/mocks"
	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/services/board"
	"github.com/mcoot/tictacgame-go/internal/services/registry"
	"github.com/mcoot/tictacgame-go/internal/storage/memory"
	"github.com/mcoot/tictacgame-go/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	registry   *registry.Service
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.registry = registry.New(s.storage, s.clock, logger)
	s.controller = NewController(s.storage, s.registry, board.New(), s.clock, logger)
	s.ctx = context.Background()
}

func (s *ControllerSuite) register(ids ...model.ParticipantID) {
	for _, id := range ids {
		_, err := s.registry.Register(s.ctx, id)
		s.Require().NoError(err)
	}
}

// createActive builds an active alice vs bob session ready for play
func (s *ControllerSuite) createActive() *model.Session {
	s.register("alice", "bob")
	sess, err := s.controller.Create(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	sess, err = s.controller.Activate(s.ctx, sess.ID, "bob")
	s.Require().NoError(err)
	return sess
}

// Create tests

func (s *ControllerSuite) TestCreatePendingSession() {
	s.register("alice", "bob")

	sess, err := s.controller.Create(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	s.Equal(model.NewSessionID("alice", "bob"), sess.ID)
	s.Equal(model.SessionStatePending, sess.State)
	s.Equal(model.ParticipantID("alice"), sess.PlayerX.ID)
	s.Equal(model.ParticipantID("bob"), sess.PlayerO.ID)
	s.True(sess.Live)

	// Both parties are marked pending
	s.Equal(model.ParticipantStatePending, sess.PlayerX.State)
	s.Equal(model.ParticipantStatePending, sess.PlayerO.State)
}

func (s *ControllerSuite) TestCreateDuplicateInvitation() {
	s.register("alice", "bob")
	_, err := s.controller.Create(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	_, err = s.controller.Create(s.ctx, "alice", "bob")
	s.ErrorIs(err, model.ErrSessionExists)
}

func (s *ControllerSuite) TestCreateUnknownParticipant() {
	s.register("alice")

	_, err := s.controller.Create(s.ctx, "alice", "ghost")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *ControllerSuite) TestCreateAgainstBusyRequesteeLeavesRequesterUntouched() {
	s.createActive()
	s.register("carol")

	// Bob is mid-game and cannot accept an invitation
	_, err := s.controller.Create(s.ctx, "carol", "bob")
	s.ErrorIs(err, model.ErrInvalidState)

	carol, err := s.registry.Get(s.ctx, "carol")
	s.Require().NoError(err)
	s.Equal(model.ParticipantStateNew, carol.State)

	_, err = s.controller.Get(s.ctx, model.NewSessionID("carol", "bob"))
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Activate tests

func (s *ControllerSuite) TestActivate() {
	s.register("alice", "bob")
	sess, _ := s.controller.Create(s.ctx, "alice", "bob")

	sess, err := s.controller.Activate(s.ctx, sess.ID, "bob")
	s.Require().NoError(err)

	s.Equal(model.SessionStateActive, sess.State)
	// The initiator holds X and moves first
	s.Equal(sess.PlayerX.ID, sess.CurrentTurn)
	s.Equal(model.ParticipantStatePlaying, sess.PlayerX.State)
	s.Equal(model.ParticipantStatePlaying, sess.PlayerO.State)
}

func (s *ControllerSuite) TestActivateByOutsider() {
	s.register("alice", "bob", "eve")
	sess, _ := s.controller.Create(s.ctx, "alice", "bob")

	_, err := s.controller.Activate(s.ctx, sess.ID, "eve")
	s.ErrorIs(err, model.ErrNotInSession)
}

func (s *ControllerSuite) TestActivateTwice() {
	sess := s.createActive()

	_, err := s.controller.Activate(s.ctx, sess.ID, "bob")
	s.ErrorIs(err, model.ErrInvalidState)
}

func (s *ControllerSuite) TestActivateUnknownSession() {
	_, err := s.controller.Activate(s.ctx, "nope#nah", "nope")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// ApplyTurn tests

func (s *ControllerSuite) TestApplyTurnAlternates() {
	sess := s.createActive()

	sess, err := s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 0, 0)
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("alice"), sess.Board[0][0])
	s.Equal(model.ParticipantID("bob"), sess.CurrentTurn)

	sess, err = s.controller.ApplyTurn(s.ctx, sess.ID, "bob", 1, 1)
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("bob"), sess.Board[1][1])
	s.Equal(model.ParticipantID("alice"), sess.CurrentTurn)
}

func (s *ControllerSuite) TestApplyTurnOutOfTurn() {
	sess := s.createActive()

	_, err := s.controller.ApplyTurn(s.ctx, sess.ID, "bob", 0, 0)
	s.ErrorIs(err, model.ErrWrongTurn)
}

func (s *ControllerSuite) TestApplyTurnTwiceInARow() {
	sess := s.createActive()
	_, _ = s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 0, 0)

	_, err := s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 0, 1)
	s.ErrorIs(err, model.ErrWrongTurn)
}

func (s *ControllerSuite) TestApplyTurnOccupiedCell() {
	sess := s.createActive()
	_, _ = s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 0, 0)

	_, err := s.controller.ApplyTurn(s.ctx, sess.ID, "bob", 0, 0)
	s.ErrorIs(err, model.ErrCellOccupied)

	// The failed move does not consume bob's turn
	updated, err := s.controller.Get(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(model.ParticipantID("bob"), updated.CurrentTurn)
}

func (s *ControllerSuite) TestApplyTurnOutOfRange() {
	sess := s.createActive()

	_, err := s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 3, 0)
	s.ErrorIs(err, model.ErrOutOfRange)

	_, err = s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 0, -1)
	s.ErrorIs(err, model.ErrOutOfRange)
}

func (s *ControllerSuite) TestApplyTurnByOutsider() {
	sess := s.createActive()
	s.register("eve")

	_, err := s.controller.ApplyTurn(s.ctx, sess.ID, "eve", 0, 0)
	s.ErrorIs(err, model.ErrNotInSession)
}

func (s *ControllerSuite) TestApplyTurnOnPendingSession() {
	s.register("alice", "bob")
	sess, _ := s.controller.Create(s.ctx, "alice", "bob")

	_, err := s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 0, 0)
	s.ErrorIs(err, model.ErrInvalidState)
}

// CheckOutcome tests

// playToWin drives alice to a top-row win:
//
//	a a a
//	b b .
func (s *ControllerSuite) playToWin(sess *model.Session) {
	moves := []struct {
		actor    model.ParticipantID
		row, col int
	}{
		{"alice", 0, 0},
		{"bob", 1, 0},
		{"alice", 0, 1},
		{"bob", 1, 1},
		{"alice", 0, 2},
	}
	for _, m := range moves {
		_, err := s.controller.ApplyTurn(s.ctx, sess.ID, m.actor, m.row, m.col)
		s.Require().NoError(err)
	}
}

func (s *ControllerSuite) TestCheckOutcomeLive() {
	sess := s.createActive()
	_, _ = s.controller.ApplyTurn(s.ctx, sess.ID, "alice", 0, 0)

	updated, outcome, err := s.controller.CheckOutcome(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(model.OutcomeLive, outcome.Kind)
	s.True(updated.Live)
}

func (s *ControllerSuite) TestCheckOutcomeWin() {
	sess := s.createActive()
	s.playToWin(sess)

	updated, outcome, err := s.controller.CheckOutcome(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(model.OutcomeWon, outcome.Kind)
	s.Equal(model.ParticipantID("alice"), outcome.Winner)
	s.False(updated.Live)

	// Session tally
	s.Equal(1, updated.Tally[model.MarkX].Wins)
	s.Equal(1, updated.Tally[model.MarkO].Losses)

	// Cumulative participant stats, reflected in the refreshed snapshots
	s.Equal(1, updated.PlayerX.Wins)
	s.Equal(1, updated.PlayerO.Losses)
}

func (s *ControllerSuite) TestCheckOutcomeIsIdempotent() {
	sess := s.createActive()
	s.playToWin(sess)

	_, _, err := s.controller.CheckOutcome(s.ctx, sess.ID)
	s.Require().NoError(err)

	// A second evaluation reports the same verdict without re-scoring
	updated, outcome, err := s.controller.CheckOutcome(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(model.OutcomeWon, outcome.Kind)
	s.Equal(1, updated.Tally[model.MarkX].Wins)

	alice, _ := s.registry.Get(s.ctx, "alice")
	s.Equal(1, alice.Wins)
}

func (s *ControllerSuite) TestCheckOutcomeStalemate() {
	sess := s.createActive()

	// a b a
	// a b b
	// b a a
	moves := []struct {
		actor    model.ParticipantID
		row, col int
	}{
		{"alice", 0, 0},
		{"bob", 0, 1},
		{"alice", 0, 2},
		{"bob", 1, 1},
		{"alice", 1, 0},
		{"bob", 1, 2},
		{"alice", 2, 1},
		{"bob", 2, 0},
		{"alice", 2, 2},
	}
	for _, m := range moves {
		_, err := s.controller.ApplyTurn(s.ctx, sess.ID, m.actor, m.row, m.col)
		s.Require().NoError(err)
	}

	updated, outcome, err := s.controller.CheckOutcome(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(model.OutcomeStalemate, outcome.Kind)
	s.Equal(1, updated.Tally[model.MarkX].Stalemates)
	s.Equal(1, updated.Tally[model.MarkO].Stalemates)

	alice, _ := s.registry.Get(s.ctx, "alice")
	s.Equal(1, alice.Stalemates)
	bob, _ := s.registry.Get(s.ctx, "bob")
	s.Equal(1, bob.Stalemates)
}

// End tests

func (s *ControllerSuite) TestEndReturnsParticipantsToNew() {
	sess := s.createActive()

	updated, err := s.controller.End(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Len(updated, 2)
	for _, p := range updated {
		s.Equal(model.ParticipantStateNew, p.State)
	}

	_, err = s.controller.Get(s.ctx, sess.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestEndSkipsDepartedParticipants() {
	sess := s.createActive()
	_, err := s.registry.Remove(s.ctx, "bob")
	s.Require().NoError(err)

	updated, err := s.controller.End(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().Len(updated, 1)
	s.Equal(model.ParticipantID("alice"), updated[0].ID)
}

// RemoveByParticipant tests

func (s *ControllerSuite) TestRemoveByParticipant() {
	s.register("alice", "bob", "carol")
	first, _ := s.controller.Create(s.ctx, "alice", "bob")
	_, err := s.controller.Create(s.ctx, "carol", "alice")
	s.Require().NoError(err)

	removed, err := s.controller.RemoveByParticipant(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(removed, 2)

	_, err = s.controller.Get(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestRemoveByParticipantLeavesOthers() {
	s.register("alice", "bob", "carol", "dave")
	_, _ = s.controller.Create(s.ctx, "alice", "bob")
	other, _ := s.controller.Create(s.ctx, "carol", "dave")

	removed, err := s.controller.RemoveByParticipant(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(removed, 1)

	_, err = s.controller.Get(s.ctx, other.ID)
	s.NoError(err)
}

// FindByParticipant tests

func (s *ControllerSuite) TestFindByParticipantPrefersActive() {
	s.register("alice", "bob", "carol")
	_, err := s.controller.Create(s.ctx, "carol", "alice")
	s.Require().NoError(err)

	active, _ := s.controller.Create(s.ctx, "alice", "bob")
	_, err = s.controller.Activate(s.ctx, active.ID, "bob")
	s.Require().NoError(err)

	found, err := s.controller.FindByParticipant(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(active.ID, found.ID)
}

func (s *ControllerSuite) TestFindByParticipantNotFound() {
	s.register("alice")

	_, err := s.controller.FindByParticipant(s.ctx, "alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
}
