package model

// EventName identifies a transport event
type EventName string

// Inbound events (client -> coordinator)
const (
	EventRequestGame      EventName = "requestGame"
	EventJoinGame         EventName = "joinGame"
	EventPlayTurn         EventName = "playTurn"
	EventUpdatePlayerName EventName = "updatePlayerName"
	EventChatMessage      EventName = "chat_message"
	// EventSignal carries opaque peer-to-peer negotiation payloads relayed
	// verbatim to the session counterpart
	EventSignal EventName = "message"
)

// Outbound events (coordinator -> clients)
const (
	EventAvailableGames EventName = "available_games"
	EventPlayerUpdate   EventName = "player_update"
	EventRequestToJoin  EventName = "request_to_join"
	EventBeginGame      EventName = "begin_game"
	EventTurnPlayed     EventName = "turn_played"
	EventGameWon        EventName = "game_won"
	EventStaleMate      EventName = "stale_mate"
	EventGameMessage    EventName = "game_message"
	EventOpponentLeft   EventName = "opponent_left"
	EventError          EventName = "error"
)

// RequestGamePayload is the payload of a requestGame event
type RequestGamePayload struct {
	RequesterID  ParticipantID `json:"requesterId"`
	OpenPlayerID ParticipantID `json:"openPlayerId"`
}

// JoinGamePayload is the payload of a joinGame event
type JoinGamePayload struct {
	SessionID SessionID `json:"sessionId"`
}

// TurnAction addresses the cell a participant wants to claim
type TurnAction struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PlayTurnPayload is the payload of a playTurn event. PlayerID is the claimed
// actor and must match the sending connection's identity.
type PlayTurnPayload struct {
	SessionID SessionID     `json:"sessionId"`
	PlayerID  ParticipantID `json:"playerId"`
	Action    TurnAction    `json:"action"`
}

// UpdatePlayerNamePayload is the payload of an updatePlayerName event
type UpdatePlayerNamePayload struct {
	Name string `json:"name"`
}

// GameWonPayload is the payload of a game_won broadcast
type GameWonPayload struct {
	Session *Session    `json:"session"`
	Winner  Participant `json:"winner"`
}

// GameMessagePayload carries a human-readable status line shown to one side
// of a session
type GameMessagePayload struct {
	Message string `json:"message"`
}

// ErrorPayload is the payload of a unicast error event
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
