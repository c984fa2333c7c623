package redis

import (
	"fmt"

	"github.com/mcoot/tictacgame-go/internal/model"
)

// Key prefix for all coordinator data
const keyPrefix = "tictac"

// participantKey returns the Redis key for a Participant
func participantKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:participant:%s", keyPrefix, id)
}

// participantIndexKey returns the Redis key for the SET of participant keys
func participantIndexKey() string {
	return fmt.Sprintf("%s:idx:participants", keyPrefix)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionIndexKey returns the Redis key for the SET of session keys
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}
