package oauthprovider

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"socialflow/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *provider {
	return New(map[model.Platform]Credentials{
		model.PlatformInstagram: {ClientID: "ig-app", RedirectURL: "https://app/oauth/instagram/callback", Scopes: []string{"instagram_basic", "instagram_content_publish"}},
		model.PlatformTikTok:    {ClientID: "tt-key", RedirectURL: "https://app/oauth/tiktok/callback", Scopes: []string{"user.info.basic", "video.upload"}},
		model.PlatformYouTube:   {ClientID: "yt-client", RedirectURL: "https://app/oauth/youtube/callback", Scopes: []string{"https://www.googleapis.com/auth/youtube.upload"}},
	}).(*provider)
}

func parse(t *testing.T, raw string) (*url.URL, url.Values) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u, u.Query()
}

func TestAuthCodeURL(t *testing.T) {
	p := newTestProvider()

	t.Run("instagram", func(t *testing.T) {
		raw, err := p.AuthCodeURL(model.PlatformInstagram, "nonce-1")
		require.NoError(t, err)
		u, q := parse(t, raw)
		assert.Equal(t, "www.facebook.com", u.Host)
		assert.Equal(t, "nonce-1", q.Get("state"))
		assert.Equal(t, "instagram_basic,instagram_content_publish", q.Get("scope"))
		assert.Equal(t, "code", q.Get("response_type"))
	})

	t.Run("tiktok", func(t *testing.T) {
		raw, err := p.AuthCodeURL(model.PlatformTikTok, "nonce-2")
		require.NoError(t, err)
		u, q := parse(t, raw)
		assert.Equal(t, "www.tiktok.com", u.Host)
		assert.Equal(t, "tt-key", q.Get("client_key"))
		assert.Equal(t, "user.info.basic,video.upload", q.Get("scope"))
	})

	t.Run("youtube", func(t *testing.T) {
		raw, err := p.AuthCodeURL(model.PlatformYouTube, "nonce-3")
		require.NoError(t, err)
		u, q := parse(t, raw)
		assert.Equal(t, "accounts.google.com", u.Host)
		assert.Equal(t, "offline", q.Get("access_type"))
		assert.Equal(t, "https://app/oauth/youtube/callback", q.Get("redirect_uri"))
	})
}

func TestAuthCodeURLErrors(t *testing.T) {
	p := New(map[model.Platform]Credentials{model.PlatformTikTok: {}})
	_, err := p.AuthCodeURL(model.PlatformTikTok, "n")
	require.ErrorIs(t, err, model.ErrProviderNotConfigured)
	_, err = p.AuthCodeURL(model.Platform("Vine"), "n")
	require.ErrorIs(t, err, model.ErrUnknownPlatform)
}

func TestExchange(t *testing.T) {
	p := newTestProvider()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	tok, info, err := p.Exchange(context.Background(), model.PlatformYouTube, "auth-code")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok.AccessToken, "youtube_at_"))
	assert.True(t, strings.HasPrefix(tok.RefreshToken, "youtube_rt_"))
	require.NotNil(t, tok.ExpiresAt)
	assert.Equal(t, now.Add(tokenLifetime), *tok.ExpiresAt)
	require.NotNil(t, info)
	assert.Len(t, info.ExternalID, 16)

	again, info2, err := p.Exchange(context.Background(), model.PlatformYouTube, "auth-code")
	require.NoError(t, err)
	assert.NotEqual(t, tok.AccessToken, again.AccessToken)
	assert.Equal(t, info.ExternalID, info2.ExternalID)

	_, _, err = p.Exchange(context.Background(), model.PlatformYouTube, "  ")
	require.Error(t, err)
}
