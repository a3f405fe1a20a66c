package model

import "time"

// UserInfo is the external profile attached to a platform connection.
type UserInfo struct {
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// TokenBundle is what the token-exchange collaborator hands back for an authorization code.
type TokenBundle struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// PlatformConnection is the per-platform OAuth connection state of one user.
// Token and user fields are only populated while Connected is true.
type PlatformConnection struct {
	Platform     Platform   `json:"platform"`
	Connected    bool       `json:"connected"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UserInfo     *UserInfo  `json:"user_info,omitempty"`
}

// StoredConnection is the persisted form of a connected platform for a user.
type StoredConnection struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Platform     Platform   `json:"platform"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	ExternalID   *string    `json:"external_id,omitempty"`
	Username     *string    `json:"username,omitempty"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HandshakeState is an outstanding OAuth authorization attempt.
type HandshakeState struct {
	UserID   string    `json:"user_id"`
	Platform Platform  `json:"platform"`
	Nonce    string    `json:"nonce"`
	IssuedAt time.Time `json:"issued_at"`
}
