package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
	"socialflow/infrastructure/logger"
	"socialflow/infrastructure/metrics"
)

const nonceBytes = 32

// IOAuthHandshake drives the authorization-code flow for one user.
type IOAuthHandshake interface {
	Begin(ctx context.Context, platform model.Platform) (string, error)
	Complete(ctx context.Context, platform model.Platform, returnedNonce, code string) (model.PlatformConnection, error)
	Cancel(ctx context.Context, platform model.Platform) error
}

// OAuthHandshake issues single-use nonces and connects a platform in the registry only
// after the nonce matched and the token exchange succeeded.
type OAuthHandshake struct {
	userID   string
	store    repository.IHandshakeStore
	provider repository.IOAuthProvider
	registry *ConnectionRegistry
	now      func() time.Time
	// onConnected runs after the registry has been updated.
	onConnected func(ctx context.Context, conn model.PlatformConnection)
}

// NewOAuthHandshake builds a handshake for userID.
func NewOAuthHandshake(userID string, store repository.IHandshakeStore, provider repository.IOAuthProvider, registry *ConnectionRegistry) *OAuthHandshake {
	return &OAuthHandshake{
		userID:   userID,
		store:    store,
		provider: provider,
		registry: registry,
		now:      time.Now,
	}
}

// WithConnectedHook sets a callback invoked after a successful connection.
func (h *OAuthHandshake) WithConnectedHook(fn func(ctx context.Context, conn model.PlatformConnection)) *OAuthHandshake {
	h.onConnected = fn
	return h
}

// Begin stores a fresh nonce for platform and returns the authorization URL.
func (h *OAuthHandshake) Begin(ctx context.Context, platform model.Platform) (string, error) {
	if !platform.Valid() {
		return "", model.ErrUnknownPlatform
	}
	nonce, err := generateNonce()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL, err := h.provider.AuthCodeURL(platform, nonce)
	if err != nil {
		return "", err
	}
	state := model.HandshakeState{
		UserID:   h.userID,
		Platform: platform,
		Nonce:    nonce,
		IssuedAt: h.now().UTC(),
	}
	if err := h.store.Put(ctx, state); err != nil {
		return "", err
	}
	metrics.HandshakeOutcome(platform, "issued")
	return authURL, nil
}

// Complete verifies the nonce returned by the provider and, on a match, exchanges code
// for tokens. The stored handshake is consumed whatever the outcome.
func (h *OAuthHandshake) Complete(ctx context.Context, platform model.Platform, returnedNonce, code string) (model.PlatformConnection, error) {
	if !platform.Valid() {
		return model.PlatformConnection{}, model.ErrUnknownPlatform
	}
	lg := logger.GetLogger().WithField("user_id", h.userID).WithField("platform", platform)

	state, err := h.store.Take(ctx, h.userID, platform)
	if err != nil {
		if errors.Is(err, model.ErrNoPendingHandshake) {
			metrics.HandshakeOutcome(platform, "no_pending")
		}
		return model.PlatformConnection{}, err
	}
	if subtle.ConstantTimeCompare([]byte(state.Nonce), []byte(returnedNonce)) != 1 {
		lg.Warn("oauth callback nonce mismatch")
		metrics.HandshakeOutcome(platform, "nonce_mismatch")
		return model.PlatformConnection{}, model.ErrNonceMismatch
	}

	token, info, err := h.provider.Exchange(ctx, platform, code)
	if err != nil {
		lg.WithField("error", err).Warn("oauth token exchange failed")
		metrics.HandshakeOutcome(platform, "exchange_failed")
		return model.PlatformConnection{}, fmt.Errorf("%w: %v", model.ErrTokenExchangeFailed, err)
	}
	if err := h.registry.MarkConnected(platform, token, info); err != nil {
		return model.PlatformConnection{}, err
	}
	conn, err := h.registry.Get(platform)
	if err != nil {
		return model.PlatformConnection{}, err
	}
	metrics.HandshakeOutcome(platform, "connected")
	lg.Info("platform connected")
	if h.onConnected != nil {
		h.onConnected(ctx, conn)
	}
	return conn, nil
}

// Cancel discards the pending handshake, for example when the user denied access
// at the provider. The registry is not touched.
func (h *OAuthHandshake) Cancel(ctx context.Context, platform model.Platform) error {
	if !platform.Valid() {
		return model.ErrUnknownPlatform
	}
	if _, err := h.store.Take(ctx, h.userID, platform); err != nil {
		return err
	}
	metrics.HandshakeOutcome(platform, "denied")
	return nil
}

func generateNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
