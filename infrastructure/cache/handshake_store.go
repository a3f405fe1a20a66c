package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"

	"github.com/redis/go-redis/v9"
)

type handshakeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHandshakeStore keeps OAuth handshakes in Redis. SETNX gives one in-flight
// handshake per key and GETDEL makes every stored nonce single use.
func NewHandshakeStore(client *redis.Client, ttl time.Duration) repository.IHandshakeStore {
	return &handshakeStore{client: client, ttl: ttl}
}

func handshakeKey(userID string, platform model.Platform) string {
	return fmt.Sprintf("oauth:handshake:%s:%s", userID, platform.Slug())
}

func (s *handshakeStore) Put(ctx context.Context, state model.HandshakeState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, handshakeKey(state.UserID, state.Platform), data, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrHandshakeAlreadyInFlight
	}
	return nil
}

func (s *handshakeStore) Take(ctx context.Context, userID string, platform model.Platform) (*model.HandshakeState, error) {
	data, err := s.client.GetDel(ctx, handshakeKey(userID, platform)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrNoPendingHandshake
	}
	if err != nil {
		return nil, err
	}
	var state model.HandshakeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode handshake: %w", err)
	}
	return &state, nil
}
