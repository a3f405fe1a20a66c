package usecase

import (
	"context"
	"sync"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
	"socialflow/infrastructure/logger"

	"golang.org/x/sync/singleflight"
)

// Session bundles the per-user state: connections, the pending handshakes and the draft.
type Session struct {
	UserID    string
	Registry  *ConnectionRegistry
	Handshake *OAuthHandshake
	Composer  *PostComposer
}

// ISessionManager hands out one Session per authenticated user.
type ISessionManager interface {
	Session(ctx context.Context, userID string) (*Session, error)
	Disconnect(ctx context.Context, userID string, platform model.Platform) error
	Credentials(ctx context.Context, userID string, platform model.Platform) (model.PlatformConnection, error)
}

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// SessionManager creates sessions lazily and hydrates their registry from the
// connection store on first access. Hydration runs outside mu and at most once per
// user at a time.
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	hydrate     singleflight.Group
	connections repository.IConnection
	handshakes  repository.IHandshakeStore
	provider    repository.IOAuthProvider
	location    *time.Location
	now         func() time.Time
}

// NewSessionManager builds a manager. connections may be nil, in which case
// connections only live as long as the process.
func NewSessionManager(connections repository.IConnection, handshakes repository.IHandshakeStore, provider repository.IOAuthProvider, loc *time.Location) *SessionManager {
	return &SessionManager{
		sessions:    map[string]*sessionEntry{},
		connections: connections,
		handshakes:  handshakes,
		provider:    provider,
		location:    loc,
		now:         time.Now,
	}
}

// Session returns the session of userID, creating and hydrating it when needed.
func (m *SessionManager) Session(ctx context.Context, userID string) (*Session, error) {
	if s := m.lookup(userID); s != nil {
		return s, nil
	}
	v, err, _ := m.hydrate.Do(userID, func() (interface{}, error) {
		if s := m.lookup(userID); s != nil {
			return s, nil
		}
		s, err := m.build(ctx, userID)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[userID] = &sessionEntry{session: s, lastSeen: m.now()}
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// EvictIdle drops sessions not used for longer than idle and returns how many were
// dropped. An evicted user's unsubmitted draft is lost; connections come back from the
// store on the next access. Without a connection store nothing is evicted.
func (m *SessionManager) EvictIdle(idle time.Duration) int {
	if m.connections == nil || idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for userID, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, userID)
			n++
		}
	}
	return n
}

func (m *SessionManager) lookup(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	e.lastSeen = m.now()
	return e.session
}

func (m *SessionManager) build(ctx context.Context, userID string) (*Session, error) {
	registry := NewConnectionRegistry()
	if m.connections != nil {
		stored, err := m.connections.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, sc := range stored {
			token, info := fromStored(sc)
			if err := registry.MarkConnected(sc.Platform, token, info); err != nil {
				logger.GetLogger().WithField("user_id", userID).WithField("platform", sc.Platform).Warn("skipping stored connection")
			}
		}
	}

	handshake := NewOAuthHandshake(userID, m.handshakes, m.provider, registry).
		WithConnectedHook(func(ctx context.Context, conn model.PlatformConnection) {
			m.persist(ctx, userID, conn)
		})
	handshake.now = m.now
	composer := NewPostComposer(registry, m.location)
	composer.now = m.now

	return &Session{UserID: userID, Registry: registry, Handshake: handshake, Composer: composer}, nil
}

// Disconnect clears platform in the user's registry and removes the stored connection.
func (m *SessionManager) Disconnect(ctx context.Context, userID string, platform model.Platform) error {
	s, err := m.Session(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Registry.Disconnect(platform); err != nil {
		return err
	}
	if m.connections != nil {
		if err := m.connections.Delete(ctx, userID, platform); err != nil {
			logger.GetLogger().WithField("user_id", userID).WithField("platform", platform).WithField("error", err).Error("delete stored connection failed")
		}
	}
	return nil
}

// Credentials returns the current connection of userID for platform.
func (m *SessionManager) Credentials(ctx context.Context, userID string, platform model.Platform) (model.PlatformConnection, error) {
	s, err := m.Session(ctx, userID)
	if err != nil {
		return model.PlatformConnection{}, err
	}
	return s.Registry.Get(platform)
}

func (m *SessionManager) persist(ctx context.Context, userID string, conn model.PlatformConnection) {
	if m.connections == nil {
		return
	}
	now := m.now().UTC()
	sc := &model.StoredConnection{
		UserID:       userID,
		Platform:     conn.Platform,
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		ExpiresAt:    conn.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if conn.UserInfo != nil {
		sc.ExternalID = strPtr(conn.UserInfo.ExternalID)
		sc.Username = strPtr(conn.UserInfo.Username)
		sc.AvatarURL = strPtr(conn.UserInfo.AvatarURL)
	}
	if err := m.connections.Upsert(ctx, sc); err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("platform", conn.Platform).WithField("error", err).Error("persist connection failed")
	}
}

func fromStored(sc *model.StoredConnection) (model.TokenBundle, *model.UserInfo) {
	token := model.TokenBundle{
		AccessToken:  sc.AccessToken,
		RefreshToken: sc.RefreshToken,
		ExpiresAt:    sc.ExpiresAt,
	}
	if sc.ExternalID == nil && sc.Username == nil {
		return token, nil
	}
	info := &model.UserInfo{}
	if sc.ExternalID != nil {
		info.ExternalID = *sc.ExternalID
	}
	if sc.Username != nil {
		info.Username = *sc.Username
	}
	if sc.AvatarURL != nil {
		info.AvatarURL = *sc.AvatarURL
	}
	return token, info
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
