package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tictacgame-go/internal/model"
	"github.com/mcoot/tictacgame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, participant *model.Participant) error {
	data, err := json.Marshal(participant)
	if err != nil {
		return err
	}

	key := participantKey(participant.ID)
	indexKey := participantIndexKey()

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.ParticipantTTL)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, s.cfg.ParticipantTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	data, err := s.client.Get(ctx, participantKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var participant model.Participant
	if err := json.Unmarshal(data, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

func (s *Storage) DeleteParticipant(ctx context.Context, id model.ParticipantID) error {
	key := participantKey(id)
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, participantIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	keys, err := s.client.SMembers(ctx, participantIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	participants := make([]*model.Participant, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Entry expired but index entry lingered; drop it
				_ = s.client.SRem(ctx, participantIndexKey(), key).Err()
				continue
			}
			return nil, err
		}

		var participant model.Participant
		if err := json.Unmarshal(data, &participant); err != nil {
			return nil, err
		}
		participants = append(participants, &participant)
	}
	return participants, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := sessionKey(session.ID)
	indexKey := sessionIndexKey()

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, s.cfg.SessionTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	key := sessionKey(id)
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, sessionIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	keys, err := s.client.SMembers(ctx, sessionIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				_ = s.client.SRem(ctx, sessionIndexKey(), key).Err()
				continue
			}
			return nil, err
		}

		var session model.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}
