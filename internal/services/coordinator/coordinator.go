package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/services/registry"
	"github.com/mcoot/tictacgame-go/internal/services/session"
	"github.com/mcoot/tictacgame-go/internal/transport"
)

// Coordinator wires inbound transport events to registry and session
// operations and emits the resulting broadcast events. A single mutex
// serializes every handler so two events can never interleave their
// mutations of shared state.
type Coordinator struct {
	mu        sync.Mutex
	registry  *registry.Service
	sessions  *session.Controller
	transport transport.Transport
	logger    *slog.Logger
}

// New creates a new coordinator
func New(
	registry *registry.Service,
	sessions *session.Controller,
	t transport.Transport,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		registry:  registry,
		sessions:  sessions,
		transport: t,
		logger:    logger.With(slog.String("component", "coordinator")),
	}
}

// Ensure Coordinator implements the transport handler
var _ transport.Handler = (*Coordinator)(nil)

// HandleConnect registers a fresh connection, sends it the current
// participant list and announces it to everyone else
func (c *Coordinator) HandleConnect(ctx context.Context, id model.ParticipantID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	participant, err := c.registry.Register(ctx, id)
	if err != nil {
		c.reportError(ctx, id, model.EventName("connect"), err)
		return
	}

	others, err := c.registry.List(ctx)
	if err != nil {
		c.reportError(ctx, id, model.EventName("connect"), err)
		return
	}

	c.transport.SendTo(id, model.EventAvailableGames, others)
	c.transport.Broadcast(model.EventPlayerUpdate, participant)
}

// HandleDisconnect removes any sessions involving the identity, notifies
// abandoned counterparts and broadcasts the participant's final state
func (c *Coordinator) HandleDisconnect(ctx context.Context, id model.ParticipantID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.sessions.RemoveByParticipant(ctx, id)
	if err != nil {
		c.logger.Error("failed to sweep sessions on disconnect",
			slog.String("participant_id", string(id)),
			slog.String("error", err.Error()),
		)
	}

	for _, sess := range removed {
		c.notifyAbandonment(ctx, sess, id)
		c.transport.DropGroup(sess.ID.GroupName())
	}

	participant, err := c.registry.Remove(ctx, id)
	if err != nil {
		c.logger.Error("disconnect for unknown participant",
			slog.String("participant_id", string(id)),
			slog.String("error", err.Error()),
		)
		return
	}

	c.transport.Broadcast(model.EventPlayerUpdate, participant)
}

// HandleEvent dispatches one inbound event to its handler. Handler failures
// are logged and reported back to the sender as an error event; they never
// take down the dispatch loop.
func (c *Coordinator) HandleEvent(ctx context.Context, from model.ParticipantID, event model.EventName, data json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch event {
	case model.EventRequestGame:
		err = c.handleRequestGame(ctx, from, data)
	case model.EventJoinGame:
		err = c.handleJoinGame(ctx, from, data)
	case model.EventPlayTurn:
		err = c.handlePlayTurn(ctx, from, data)
	case model.EventUpdatePlayerName:
		err = c.handleUpdatePlayerName(ctx, from, data)
	case model.EventChatMessage:
		c.transport.Broadcast(model.EventChatMessage, data)
	case model.EventSignal:
		err = c.handleSignal(ctx, from, data)
	default:
		err = fmt.Errorf("unknown event %q", event)
	}

	if err != nil {
		c.reportError(ctx, from, event, err)
	}
}

// handleRequestGame creates a pending session for an invitation. Both
// parties are joined to the session group before the join-request notice is
// emitted, so the notice never lands in an empty group.
func (c *Coordinator) handleRequestGame(ctx context.Context, from model.ParticipantID, data json.RawMessage) error {
	var payload model.RequestGamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("bad requestGame payload: %w", err)
	}
	if payload.RequesterID != from {
		return fmt.Errorf("%w: claimed requester %q does not match sender", model.ErrWrongTurn, payload.RequesterID)
	}

	sess, err := c.sessions.Create(ctx, from, payload.OpenPlayerID)
	if err != nil {
		return err
	}

	group := sess.ID.GroupName()
	c.transport.Join(group, sess.PlayerX.ID)
	c.transport.Join(group, sess.PlayerO.ID)

	c.transport.SendToGroup(group, model.EventRequestToJoin, sess)
	c.transport.Broadcast(model.EventPlayerUpdate, sess.PlayerX)
	c.transport.Broadcast(model.EventPlayerUpdate, sess.PlayerO)
	return nil
}

// handleJoinGame activates a pending session once the invitee accepts
func (c *Coordinator) handleJoinGame(ctx context.Context, from model.ParticipantID, data json.RawMessage) error {
	var payload model.JoinGamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("bad joinGame payload: %w", err)
	}

	sess, err := c.sessions.Activate(ctx, payload.SessionID, from)
	if err != nil {
		return err
	}

	group := sess.ID.GroupName()
	// Re-assert membership in case the accept raced the invitation sweep
	c.transport.Join(group, from)

	c.transport.SendToGroup(group, model.EventBeginGame, sess)

	// Distinct turn-order notice to each party
	waiting, _ := sess.Opponent(sess.CurrentTurn)
	c.transport.SendTo(sess.CurrentTurn, model.EventGameMessage,
		model.GameMessagePayload{Message: "Game Started, You go First"})
	c.transport.SendTo(waiting.ID, model.EventGameMessage,
		model.GameMessagePayload{Message: "Game Started, Other Player Thinking"})

	c.transport.Broadcast(model.EventPlayerUpdate, sess.PlayerX)
	c.transport.Broadcast(model.EventPlayerUpdate, sess.PlayerO)
	return nil
}

// handlePlayTurn applies a move and branches on the resulting verdict
func (c *Coordinator) handlePlayTurn(ctx context.Context, from model.ParticipantID, data json.RawMessage) error {
	var payload model.PlayTurnPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("bad playTurn payload: %w", err)
	}
	if payload.PlayerID != from {
		return fmt.Errorf("%w: claimed actor %q does not match sender", model.ErrWrongTurn, payload.PlayerID)
	}

	if _, err := c.sessions.ApplyTurn(ctx, payload.SessionID, from, payload.Action.Row, payload.Action.Col); err != nil {
		return err
	}

	sess, outcome, err := c.sessions.CheckOutcome(ctx, payload.SessionID)
	if err != nil {
		return err
	}

	group := sess.ID.GroupName()
	switch outcome.Kind {
	case model.OutcomeLive:
		c.transport.SendToGroup(group, model.EventTurnPlayed, sess)

	case model.OutcomeWon:
		mark, _ := sess.MarkOf(outcome.Winner)
		c.transport.SendToGroup(group, model.EventGameWon, model.GameWonPayload{
			Session: sess,
			Winner:  sess.PlayerFor(mark),
		})
		return c.endSession(ctx, sess)

	case model.OutcomeStalemate:
		c.transport.SendToGroup(group, model.EventStaleMate, sess)
		c.transport.SendToGroup(group, model.EventGameMessage,
			model.GameMessagePayload{Message: "Stale Mate!"})
		return c.endSession(ctx, sess)
	}
	return nil
}

// endSession tears the session down after a terminal broadcast
func (c *Coordinator) endSession(ctx context.Context, sess *model.Session) error {
	updated, err := c.sessions.End(ctx, sess.ID)
	if err != nil {
		return err
	}
	for _, participant := range updated {
		c.transport.Broadcast(model.EventPlayerUpdate, participant)
	}
	c.transport.DropGroup(sess.ID.GroupName())
	return nil
}

// handleUpdatePlayerName renames the sender and broadcasts the update
func (c *Coordinator) handleUpdatePlayerName(ctx context.Context, from model.ParticipantID, data json.RawMessage) error {
	var payload model.UpdatePlayerNamePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("bad updatePlayerName payload: %w", err)
	}

	participant, err := c.registry.Rename(ctx, from, payload.Name)
	if err != nil {
		return err
	}

	c.transport.Broadcast(model.EventPlayerUpdate, participant)
	return nil
}

// handleSignal relays an opaque peer-negotiation payload verbatim to the
// sender's session counterpart. Session state is read, never mutated.
func (c *Coordinator) handleSignal(ctx context.Context, from model.ParticipantID, data json.RawMessage) error {
	sess, err := c.sessions.FindByParticipant(ctx, from)
	if err != nil {
		return err
	}

	opponent, ok := sess.Opponent(from)
	if !ok {
		return model.ErrNotInSession
	}

	c.transport.SendTo(opponent.ID, model.EventSignal, data)
	return nil
}

// notifyAbandonment tells the surviving party their opponent left and
// returns them to the open-player pool
func (c *Coordinator) notifyAbandonment(ctx context.Context, sess *model.Session, leaver model.ParticipantID) {
	opponent, ok := sess.Opponent(leaver)
	if !ok {
		return
	}

	c.transport.SendTo(opponent.ID, model.EventOpponentLeft, sess)

	updated, err := c.registry.SetState(ctx, opponent.ID, model.ParticipantStateNew)
	if err != nil {
		if !errors.Is(err, model.ErrParticipantNotFound) {
			c.logger.Error("failed to reset abandoned opponent",
				slog.String("participant_id", string(opponent.ID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	c.transport.Broadcast(model.EventPlayerUpdate, updated)
}

// reportError logs a handler failure and surfaces it to the offending
// connection as a unicast error event
func (c *Coordinator) reportError(ctx context.Context, to model.ParticipantID, event model.EventName, err error) {
	c.logger.Warn("event handler failed",
		slog.String("event", string(event)),
		slog.String("participant_id", string(to)),
		slog.String("error", err.Error()),
	)

	c.transport.SendTo(to, model.EventError, model.ErrorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	})
}

// errorCode maps a handler error to a stable wire code
func errorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrParticipantNotFound):
		return "PARTICIPANT_NOT_FOUND"
	case errors.Is(err, model.ErrSessionNotFound):
		return "SESSION_NOT_FOUND"
	case errors.Is(err, model.ErrAlreadyRegistered):
		return "ALREADY_REGISTERED"
	case errors.Is(err, model.ErrSessionExists):
		return "SESSION_EXISTS"
	case errors.Is(err, model.ErrNotInSession):
		return "NOT_IN_SESSION"
	case errors.Is(err, model.ErrWrongTurn):
		return "WRONG_TURN"
	case errors.Is(err, model.ErrCellOccupied):
		return "CELL_OCCUPIED"
	case errors.Is(err, model.ErrOutOfRange):
		return "OUT_OF_RANGE"
	case errors.Is(err, model.ErrInvalidState):
		return "INVALID_STATE"
	default:
		return "INTERNAL_ERROR"
	}
}
