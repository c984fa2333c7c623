package transport

import (
	"context"
	"encoding/json"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// Envelope is the wire framing for every event in both directions
type Envelope struct {
	Event model.EventName `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope encodes a payload into an envelope
func NewEnvelope(event model.EventName, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

// Transport delivers named events to participants, individually or via
// named multicast groups. Implementations own connection bookkeeping; the
// coordinator only addresses identities and group names.
type Transport interface {
	// SendTo delivers an event to a single participant
	SendTo(id model.ParticipantID, event model.EventName, payload any)
	// Broadcast delivers an event to every connected participant
	Broadcast(event model.EventName, payload any)
	// SendToGroup delivers an event to every member of a group
	SendToGroup(group string, event model.EventName, payload any)
	// Join adds a participant to a group. Membership is established before
	// Join returns, so a following SendToGroup reaches the participant.
	Join(group string, id model.ParticipantID)
	// Leave removes a participant from a group
	Leave(group string, id model.ParticipantID)
	// DropGroup removes a group and all its memberships
	DropGroup(group string)
}

// Handler receives inbound transport activity. The gateway invokes it from
// connection goroutines; implementations are responsible for serializing
// access to shared state.
type Handler interface {
	HandleConnect(ctx context.Context, id model.ParticipantID)
	HandleDisconnect(ctx context.Context, id model.ParticipantID)
	HandleEvent(ctx context.Context, from model.ParticipantID, event model.EventName, data json.RawMessage)
}
