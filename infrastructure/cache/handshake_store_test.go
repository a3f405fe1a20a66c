package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"socialflow/domain/model"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() model.HandshakeState {
	return model.HandshakeState{
		UserID:   "user-1",
		Platform: model.PlatformTikTok,
		Nonce:    "abc",
		IssuedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRedisHandshakeStore_Put(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewHandshakeStore(db, 10*time.Minute)
	state := sampleState()
	data, _ := json.Marshal(state)

	mock.ExpectSetNX("oauth:handshake:user-1:tiktok", data, 10*time.Minute).SetVal(true)
	require.NoError(t, store.Put(context.Background(), state))

	mock.ExpectSetNX("oauth:handshake:user-1:tiktok", data, 10*time.Minute).SetVal(false)
	err := store.Put(context.Background(), state)
	require.ErrorIs(t, err, model.ErrHandshakeAlreadyInFlight)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHandshakeStore_Take(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewHandshakeStore(db, time.Minute)
	state := sampleState()
	data, _ := json.Marshal(state)

	mock.ExpectGetDel("oauth:handshake:user-1:tiktok").SetVal(string(data))
	got, err := store.Take(context.Background(), "user-1", model.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Nonce)

	mock.ExpectGetDel("oauth:handshake:user-1:tiktok").RedisNil()
	_, err = store.Take(context.Background(), "user-1", model.PlatformTikTok)
	require.ErrorIs(t, err, model.ErrNoPendingHandshake)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryHandshakeStore(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryHandshakeStore(10*time.Minute, func() time.Time { return now })
	ctx := context.Background()
	state := sampleState()

	t.Run("second put while in flight is rejected", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, state))
		require.ErrorIs(t, store.Put(ctx, state), model.ErrHandshakeAlreadyInFlight)
	})

	t.Run("take consumes the state once", func(t *testing.T) {
		got, err := store.Take(ctx, state.UserID, state.Platform)
		require.NoError(t, err)
		assert.Equal(t, state, *got)

		_, err = store.Take(ctx, state.UserID, state.Platform)
		require.ErrorIs(t, err, model.ErrNoPendingHandshake)
	})

	t.Run("expired state is gone and a new one may be issued", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, state))
		now = now.Add(11 * time.Minute)
		_, err := store.Take(ctx, state.UserID, state.Platform)
		require.ErrorIs(t, err, model.ErrNoPendingHandshake)

		require.NoError(t, store.Put(ctx, state))
		now = now.Add(11 * time.Minute)
		require.NoError(t, store.Put(ctx, state))
	})

	t.Run("keys are per user and platform", func(t *testing.T) {
		other := state
		other.UserID = "user-2"
		require.NoError(t, store.Put(ctx, other))
		yt := state
		yt.Platform = model.PlatformYouTube
		require.NoError(t, store.Put(ctx, yt))
	})
}
