package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/tictacgame-go/internal/dependencies/clock"
	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/services/board"
	"github.com/mcoot/tictacgame-go/internal/services/registry"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// Controller manages the session directory and the per-session state machine
type Controller struct {
	storage  storage.Storage
	registry *registry.Service
	board    *board.Service
	clock    clock.Clock
	logger   *slog.Logger
}

// NewController creates a new session controller
func NewController(
	storage storage.Storage,
	registry *registry.Service,
	board *board.Service,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		registry: registry,
		board:    board,
		clock:    clock,
		logger:   logger.With(slog.String("component", "session")),
	}
}

// Create builds a pending session for an invitation from requester to
// requestee. Both participants transition to pending; the requester holds X
// and moves first once the session activates.
func (c *Controller) Create(ctx context.Context, requesterID, requesteeID model.ParticipantID) (*model.Session, error) {
	id := model.NewSessionID(requesterID, requesteeID)
	if _, err := c.storage.GetSession(ctx, id); err == nil {
		return nil, model.ErrSessionExists
	}

	// Validate both transitions before mutating either record, so a failed
	// invitation leaves no partial state behind
	for _, pid := range []model.ParticipantID{requesterID, requesteeID} {
		participant, err := c.registry.Get(ctx, pid)
		if err != nil {
			return nil, err
		}
		if !participant.State.CanTransitionTo(model.ParticipantStatePending) {
			return nil, model.ErrInvalidState
		}
	}

	requester, err := c.registry.SetState(ctx, requesterID, model.ParticipantStatePending)
	if err != nil {
		return nil, err
	}
	requestee, err := c.registry.SetState(ctx, requesteeID, model.ParticipantStatePending)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:          id,
		PlayerX:     *requester,
		PlayerO:     *requestee,
		CurrentTurn: requester.ID,
		Tally: map[model.Mark]model.MarkTally{
			model.MarkX: {},
			model.MarkO: {},
		},
		Live:      true,
		State:     model.SessionStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("requester_id", string(requesterID)),
		slog.String("requestee_id", string(requesteeID)),
	)
	return session, nil
}

// Get retrieves a session by identity
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// List returns all stored sessions
func (c *Controller) List(ctx context.Context) ([]*model.Session, error) {
	return c.storage.ListSessions(ctx)
}

// Activate transitions a pending session to active once the invitee accepts.
// Both participants become playing and X is the first mover.
func (c *Controller) Activate(ctx context.Context, id model.SessionID, joinerID model.ParticipantID) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.ID.Involves(joinerID) {
		return nil, model.ErrNotInSession
	}
	if session.State != model.SessionStatePending {
		return nil, model.ErrInvalidState
	}

	playerX, err := c.registry.SetState(ctx, session.PlayerX.ID, model.ParticipantStatePlaying)
	if err != nil {
		return nil, err
	}
	playerO, err := c.registry.SetState(ctx, session.PlayerO.ID, model.ParticipantStatePlaying)
	if err != nil {
		return nil, err
	}

	session.PlayerX = *playerX
	session.PlayerO = *playerO
	session.State = model.SessionStateActive
	session.CurrentTurn = session.PlayerX.ID
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session activated", slog.String("session_id", string(id)))
	return session, nil
}

// ApplyTurn claims a cell for the acting participant and flips the turn
// pointer. The board is left unchanged on any failure.
func (c *Controller) ApplyTurn(ctx context.Context, id model.SessionID, actorID model.ParticipantID, row, col int) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.State != model.SessionStateActive {
		return nil, model.ErrInvalidState
	}
	if !session.ID.Involves(actorID) {
		return nil, model.ErrNotInSession
	}
	if session.CurrentTurn != actorID {
		return nil, model.ErrWrongTurn
	}
	if !session.Board.InBounds(row, col) {
		return nil, model.ErrOutOfRange
	}
	if session.Board[row][col] != "" {
		return nil, model.ErrCellOccupied
	}

	session.Board[row][col] = actorID
	opponent, _ := session.Opponent(actorID)
	session.CurrentTurn = opponent.ID
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CheckOutcome evaluates the session's board. On the first terminal
// detection it flips the live flag, increments the session tally and both
// participants' cumulative stats exactly once; repeated calls return the
// same verdict without re-incrementing.
func (c *Controller) CheckOutcome(ctx context.Context, id model.SessionID) (*model.Session, model.Outcome, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, model.Outcome{}, err
	}

	outcome := c.board.Evaluate(session.Board)
	if !outcome.IsTerminal() || !session.Live {
		return session, outcome, nil
	}

	session.Live = false

	switch outcome.Kind {
	case model.OutcomeWon:
		winnerMark, ok := session.MarkOf(outcome.Winner)
		if !ok {
			return nil, model.Outcome{}, model.ErrNotInSession
		}
		loser := session.PlayerFor(winnerMark.Other())

		winnerTally := session.Tally[winnerMark]
		winnerTally.Wins++
		session.Tally[winnerMark] = winnerTally

		loserTally := session.Tally[winnerMark.Other()]
		loserTally.Losses++
		session.Tally[winnerMark.Other()] = loserTally

		if err := c.registry.RecordResult(ctx, outcome.Winner, loser.ID); err != nil {
			return nil, model.Outcome{}, err
		}

	case model.OutcomeStalemate:
		for _, mark := range []model.Mark{model.MarkX, model.MarkO} {
			tally := session.Tally[mark]
			tally.Stalemates++
			session.Tally[mark] = tally
		}
		if err := c.registry.RecordStalemate(ctx, session.PlayerX.ID, session.PlayerO.ID); err != nil {
			return nil, model.Outcome{}, err
		}
	}

	if err := c.refresh(ctx, session); err != nil {
		return nil, model.Outcome{}, err
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, model.Outcome{}, err
	}

	c.logger.Info("session reached terminal state",
		slog.String("session_id", string(id)),
		slog.String("outcome", string(outcome.Kind)),
	)
	return session, outcome, nil
}

// End tears a session down: both participants return to new and the session
// is dropped from the directory. Participants that have already disconnected
// are skipped. Returns the updated participant records for broadcast.
func (c *Controller) End(ctx context.Context, id model.SessionID) ([]*model.Participant, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated []*model.Participant
	for _, pid := range []model.ParticipantID{session.PlayerX.ID, session.PlayerO.ID} {
		participant, err := c.registry.SetState(ctx, pid, model.ParticipantStateNew)
		if err != nil {
			if errors.Is(err, model.ErrParticipantNotFound) {
				continue
			}
			return nil, err
		}
		updated = append(updated, participant)
	}

	if err := c.storage.DeleteSession(ctx, id); err != nil {
		return nil, err
	}

	c.logger.Info("session ended", slog.String("session_id", string(id)))
	return updated, nil
}

// Remove drops a session from the directory without touching participants
func (c *Controller) Remove(ctx context.Context, id model.SessionID) error {
	return c.storage.DeleteSession(ctx, id)
}

// RemoveByParticipant removes every session whose derived identity contains
// the participant on either side. Returns the removed sessions so the caller
// can notify counterparts.
func (c *Controller) RemoveByParticipant(ctx context.Context, id model.ParticipantID) ([]*model.Session, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	var removed []*model.Session
	for _, session := range sessions {
		if !session.ID.Involves(id) {
			continue
		}
		if err := c.storage.DeleteSession(ctx, session.ID); err != nil {
			return nil, err
		}
		removed = append(removed, session)
	}
	return removed, nil
}

// FindByParticipant returns a session involving the participant, preferring
// an active one over pending invitations
func (c *Controller) FindByParticipant(ctx context.Context, id model.ParticipantID) (*model.Session, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	var found *model.Session
	for _, session := range sessions {
		if !session.ID.Involves(id) {
			continue
		}
		if session.State == model.SessionStateActive {
			return session, nil
		}
		if found == nil {
			found = session
		}
	}
	if found == nil {
		return nil, model.ErrSessionNotFound
	}
	return found, nil
}

// refresh re-reads both participant records into the session snapshots
func (c *Controller) refresh(ctx context.Context, session *model.Session) error {
	for _, side := range []*model.Participant{&session.PlayerX, &session.PlayerO} {
		participant, err := c.registry.Get(ctx, side.ID)
		if err != nil {
			if errors.Is(err, model.ErrParticipantNotFound) {
				continue
			}
			return err
		}
		*side = *participant
	}
	return nil
}
