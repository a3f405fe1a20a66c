package configuration

import (
	"fmt"
	"strings"
	"time"

	"socialflow/domain/model"
)

const defaultHandshakeTTL = 10 * time.Minute

// defaultScopes are requested when the configuration does not list any.
var defaultScopes = map[model.Platform][]string{
	model.PlatformInstagram: {"instagram_basic", "instagram_content_publish"},
	model.PlatformTikTok:    {"user.info.basic", "video.list", "video.upload"},
	model.PlatformYouTube:   {"https://www.googleapis.com/auth/youtube.upload"},
}

func initOAuth(C *Config) {
	for _, p := range model.Platforms() {
		client := C.OAuth.client(p)
		prefix := strings.ToUpper(p.Slug())
		setFromEnv(&client.ClientID, prefix+"_CLIENT_ID")
		setFromEnv(&client.ClientSecret, prefix+"_CLIENT_SECRET")
		setFromEnv(&client.RedirectURI, prefix+"_REDIRECT_URL")
		if client.RedirectURI == "" {
			client.RedirectURI = defaultRedirect(C.App, p)
		}
		if C.App.TLSEnabled && !hasHTTPS(client.RedirectURI) {
			client.RedirectURI = toHTTPSCallback(client.RedirectURI)
		}
		if len(client.Scopes) == 0 {
			client.Scopes = append([]string(nil), defaultScopes[p]...)
		}
	}
}

func (o *OAuth) client(p model.Platform) *OAuthClient {
	switch p {
	case model.PlatformInstagram:
		return &o.Instagram
	case model.PlatformTikTok:
		return &o.TikTok
	default:
		return &o.YouTube
	}
}

// PlatformClient returns the OAuth client settings of p.
func PlatformClient(p model.Platform) (OAuthClient, error) {
	if !p.Valid() {
		return OAuthClient{}, model.ErrUnknownPlatform
	}
	return *C.OAuth.client(p), nil
}

// HandshakeTTL is how long an issued OAuth nonce remains valid.
func HandshakeTTL() time.Duration {
	if C.OAuth.HandshakeTTLSeconds > 0 {
		return time.Duration(C.OAuth.HandshakeTTLSeconds) * time.Second
	}
	return defaultHandshakeTTL
}

// Location returns the zone used to interpret schedule inputs, UTC when unknown.
func Location() *time.Location {
	loc, err := time.LoadLocation(C.App.Timezone)
	if err != nil || C.App.Timezone == "" {
		return time.UTC
	}
	return loc
}

func defaultRedirect(app App, p model.Platform) string {
	scheme := "http"
	if app.TLSEnabled {
		scheme = "https"
	}
	port := app.Port
	if port == 0 {
		port = 10001
	}
	return fmt.Sprintf("%s://localhost:%d/oauth/%s/callback", scheme, port, p.Slug())
}
