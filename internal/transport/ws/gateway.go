package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/transport"
)

// Gateway is the websocket implementation of the transport. Each accepted
// connection gets a fresh identity; named groups provide session-scoped
// multicast.
type Gateway struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	handler transport.Handler
	clients map[model.ParticipantID]*client
	groups  map[string]map[model.ParticipantID]struct{}
}

// NewGateway creates a websocket gateway
func NewGateway(logger *slog.Logger) *Gateway {
	return &Gateway{
		logger: logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[model.ParticipantID]*client),
		groups:  make(map[string]map[model.ParticipantID]struct{}),
	}
}

// Ensure Gateway implements the transport interface
var _ transport.Transport = (*Gateway)(nil)

// SetHandler wires the inbound event handler. Must be called before the
// gateway accepts connections.
func (g *Gateway) SetHandler(h transport.Handler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handler = h
}

// ServeWS upgrades an HTTP request to a websocket connection and runs its
// read loop until the connection drops
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := model.ParticipantID(uuid.NewString())
	c := &client{
		gateway: g,
		conn:    conn,
		id:      id,
		send:    make(chan []byte, sendBufferSize),
		logger:  g.logger.With(slog.String("participant_id", string(id))),
	}

	g.mu.Lock()
	g.clients[id] = c
	clientCount := len(g.clients)
	handler := g.handler
	g.mu.Unlock()

	g.logger.Info("connection established",
		slog.String("participant_id", string(id)),
		slog.Int("total_clients", clientCount),
	)

	go c.writePump()

	if handler != nil {
		handler.HandleConnect(r.Context(), id)
	}

	c.readPump()
}

// dispatch forwards an inbound envelope to the handler
func (g *Gateway) dispatch(from model.ParticipantID, env transport.Envelope) {
	g.mu.RLock()
	handler := g.handler
	g.mu.RUnlock()

	if handler != nil {
		handler.HandleEvent(context.Background(), from, env.Event, env.Data)
	}
}

// unregister drops a client, its group memberships, and notifies the handler
func (g *Gateway) unregister(c *client) {
	g.mu.Lock()
	if _, ok := g.clients[c.id]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.clients, c.id)
	close(c.send)
	for group, members := range g.groups {
		delete(members, c.id)
		if len(members) == 0 {
			delete(g.groups, group)
		}
	}
	clientCount := len(g.clients)
	handler := g.handler
	g.mu.Unlock()

	g.logger.Info("connection closed",
		slog.String("participant_id", string(c.id)),
		slog.Int("total_clients", clientCount),
	)

	if handler != nil {
		handler.HandleDisconnect(context.Background(), c.id)
	}
}

// SendTo delivers an event to a single participant
func (g *Gateway) SendTo(id model.ParticipantID, event model.EventName, payload any) {
	msg, ok := g.encode(event, payload)
	if !ok {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	c := g.clients[id]
	if c == nil {
		g.logger.Warn("send to unknown participant",
			slog.String("event", string(event)),
			slog.String("participant_id", string(id)),
		)
		return
	}
	g.deliver(c, event, msg)
}

// Broadcast delivers an event to every connected participant
func (g *Gateway) Broadcast(event model.EventName, payload any) {
	msg, ok := g.encode(event, payload)
	if !ok {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, c := range g.clients {
		g.deliver(c, event, msg)
	}
}

// SendToGroup delivers an event to every member of a group
func (g *Gateway) SendToGroup(group string, event model.EventName, payload any) {
	msg, ok := g.encode(event, payload)
	if !ok {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	delivered := 0
	for id := range g.groups[group] {
		if c, ok := g.clients[id]; ok {
			g.deliver(c, event, msg)
			delivered++
		}
	}
	if delivered == 0 {
		g.logger.Warn("send to empty group",
			slog.String("event", string(event)),
			slog.String("group", group),
		)
	}
}

// Join adds a participant to a group; membership is effective on return
func (g *Gateway) Join(group string, id model.ParticipantID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	members, ok := g.groups[group]
	if !ok {
		members = make(map[model.ParticipantID]struct{})
		g.groups[group] = members
	}
	members[id] = struct{}{}
}

// Leave removes a participant from a group
func (g *Gateway) Leave(group string, id model.ParticipantID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if members, ok := g.groups[group]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(g.groups, group)
		}
	}
}

// DropGroup removes a group and all its memberships
func (g *Gateway) DropGroup(group string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.groups, group)
}

// GroupMembers returns the current members of a group
func (g *Gateway) GroupMembers(group string) []model.ParticipantID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	members := make([]model.ParticipantID, 0, len(g.groups[group]))
	for id := range g.groups[group] {
		members = append(members, id)
	}
	return members
}

// ClientCount returns the number of connected participants
func (g *Gateway) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// encode marshals an envelope once per emission
func (g *Gateway) encode(event model.EventName, payload any) ([]byte, bool) {
	env, err := transport.NewEnvelope(event, payload)
	if err != nil {
		g.logger.Error("failed to encode event",
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	msg, err := json.Marshal(env)
	if err != nil {
		g.logger.Error("failed to encode envelope",
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return msg, true
}

// deliver queues a message on a client's send channel, dropping it if the
// buffer is full. Callers must hold g.mu, which excludes the close of the
// send channel in unregister.
func (g *Gateway) deliver(c *client, event model.EventName, msg []byte) {
	select {
	case c.send <- msg:
	default:
		g.logger.Warn("message dropped - client buffer full",
			slog.String("event", string(event)),
			slog.String("participant_id", string(c.id)),
		)
	}
}
