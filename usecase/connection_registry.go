package usecase

import (
	"sync"

	"socialflow/domain/model"
)

// ConnectionRegistry tracks which platforms one user has connected.
type ConnectionRegistry struct {
	mu          sync.RWMutex
	connections map[model.Platform]model.PlatformConnection
}

// NewConnectionRegistry returns a registry with every platform disconnected.
func NewConnectionRegistry() *ConnectionRegistry {
	r := &ConnectionRegistry{connections: make(map[model.Platform]model.PlatformConnection, 3)}
	for _, p := range model.Platforms() {
		r.connections[p] = model.PlatformConnection{Platform: p}
	}
	return r
}

// MarkConnected stores the token bundle for platform, replacing any previous one.
func (r *ConnectionRegistry) MarkConnected(platform model.Platform, token model.TokenBundle, info *model.UserInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.connections[platform]; !ok {
		return model.ErrUnknownPlatform
	}
	conn := model.PlatformConnection{
		Platform:     platform,
		Connected:    true,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if token.ExpiresAt != nil {
		exp := *token.ExpiresAt
		conn.ExpiresAt = &exp
	}
	if info != nil {
		u := *info
		conn.UserInfo = &u
	}
	r.connections[platform] = conn
	return nil
}

// Disconnect clears the connection for platform. Disconnecting twice is a no-op.
func (r *ConnectionRegistry) Disconnect(platform model.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.connections[platform]; !ok {
		return model.ErrUnknownPlatform
	}
	r.connections[platform] = model.PlatformConnection{Platform: platform}
	return nil
}

// Get returns a copy of the connection entry for platform.
func (r *ConnectionRegistry) Get(platform model.Platform) (model.PlatformConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.connections[platform]
	if !ok {
		return model.PlatformConnection{}, model.ErrUnknownPlatform
	}
	return cloneConnection(conn), nil
}

// IsConnected is a shorthand for Get(platform).Connected.
func (r *ConnectionRegistry) IsConnected(platform model.Platform) bool {
	conn, err := r.Get(platform)
	return err == nil && conn.Connected
}

// ListConnected returns the connected subset.
func (r *ConnectionRegistry) ListConnected() []model.PlatformConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PlatformConnection, 0, len(r.connections))
	for _, p := range model.Platforms() {
		if conn := r.connections[p]; conn.Connected {
			out = append(out, cloneConnection(conn))
		}
	}
	return out
}

// List returns every platform entry in display order.
func (r *ConnectionRegistry) List() []model.PlatformConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PlatformConnection, 0, len(r.connections))
	for _, p := range model.Platforms() {
		out = append(out, cloneConnection(r.connections[p]))
	}
	return out
}

func cloneConnection(c model.PlatformConnection) model.PlatformConnection {
	if c.ExpiresAt != nil {
		exp := *c.ExpiresAt
		c.ExpiresAt = &exp
	}
	if c.UserInfo != nil {
		u := *c.UserInfo
		c.UserInfo = &u
	}
	return c
}
