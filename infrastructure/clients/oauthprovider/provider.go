// Package oauthprovider builds platform authorization URLs and stands in for the
// platforms' token endpoints.
package oauthprovider

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// Instagram publishing goes through Facebook Login; TikTok has no endpoint in x/oauth2.
var (
	instagramEndpoint = oauth2.Endpoint{
		AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
		TokenURL: facebook.Endpoint.TokenURL,
	}
	tiktokEndpoint = oauth2.Endpoint{
		AuthURL:  "https://www.tiktok.com/auth/authorize/",
		TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
	}
)

const tokenLifetime = 60 * 24 * time.Hour

// Credentials are the OAuth client settings of one platform.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type provider struct {
	configs map[model.Platform]*oauth2.Config
	now     func() time.Time
}

// New returns the provider for the configured platforms. Platforms without a
// client id are reported as not configured.
func New(creds map[model.Platform]Credentials) repository.IOAuthProvider {
	p := &provider{configs: map[model.Platform]*oauth2.Config{}, now: time.Now}
	for platform, c := range creds {
		if c.ClientID == "" {
			continue
		}
		p.configs[platform] = &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       append([]string(nil), c.Scopes...),
			Endpoint:     endpoint(platform),
		}
	}
	return p
}

func endpoint(platform model.Platform) oauth2.Endpoint {
	switch platform {
	case model.PlatformInstagram:
		return instagramEndpoint
	case model.PlatformTikTok:
		return tiktokEndpoint
	default:
		return google.Endpoint
	}
}

func (p *provider) AuthCodeURL(platform model.Platform, nonce string) (string, error) {
	if !platform.Valid() {
		return "", model.ErrUnknownPlatform
	}
	cfg, ok := p.configs[platform]
	if !ok {
		return "", model.ErrProviderNotConfigured
	}
	switch platform {
	case model.PlatformTikTok:
		return cfg.AuthCodeURL(nonce,
			oauth2.SetAuthURLParam("client_key", cfg.ClientID),
			oauth2.SetAuthURLParam("scope", strings.Join(cfg.Scopes, ","))), nil
	case model.PlatformInstagram:
		return cfg.AuthCodeURL(nonce, oauth2.SetAuthURLParam("scope", strings.Join(cfg.Scopes, ","))), nil
	default:
		return cfg.AuthCodeURL(nonce, oauth2.AccessTypeOffline), nil
	}
}

// Exchange issues an opaque token bundle for code. The platform token endpoints
// are not called; the delivery workers own the real credentials.
func (p *provider) Exchange(_ context.Context, platform model.Platform, code string) (model.TokenBundle, *model.UserInfo, error) {
	if !platform.Valid() {
		return model.TokenBundle{}, nil, model.ErrUnknownPlatform
	}
	if _, ok := p.configs[platform]; !ok {
		return model.TokenBundle{}, nil, model.ErrProviderNotConfigured
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return model.TokenBundle{}, nil, errors.New("empty authorization code")
	}
	access, err := opaque(platform.Slug() + "_at")
	if err != nil {
		return model.TokenBundle{}, nil, err
	}
	refresh, err := opaque(platform.Slug() + "_rt")
	if err != nil {
		return model.TokenBundle{}, nil, err
	}
	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Expiry:       p.now().Add(tokenLifetime).UTC(),
	}
	sum := sha256.Sum256([]byte(platform.Slug() + ":" + code))
	info := &model.UserInfo{ExternalID: hex.EncodeToString(sum[:8])}
	return bundle(tok), info, nil
}

func bundle(tok *oauth2.Token) model.TokenBundle {
	b := model.TokenBundle{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry
		b.ExpiresAt = &exp
	}
	return b
}

func opaque(prefix string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return prefix + "_" + hex.EncodeToString(buf), nil
}
