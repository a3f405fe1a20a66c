package repository

import (
	"context"

	"socialflow/domain/model"
)

// IConnection stores the connected platforms of each user.
type IConnection interface {
	Upsert(ctx context.Context, conn *model.StoredConnection) error
	ListByUser(ctx context.Context, userID string) ([]*model.StoredConnection, error)
	Delete(ctx context.Context, userID string, platform model.Platform) error
}

// IHandshakeStore keeps outstanding OAuth handshakes keyed by (user, platform).
type IHandshakeStore interface {
	// Put stores state unless an unexpired handshake already exists for the same key,
	// in which case it returns model.ErrHandshakeAlreadyInFlight.
	Put(ctx context.Context, state model.HandshakeState) error
	// Take removes and returns the stored state. It returns model.ErrNoPendingHandshake
	// when nothing is stored. A state can be taken at most once.
	Take(ctx context.Context, userID string, platform model.Platform) (*model.HandshakeState, error)
}
