package model

import (
	"strings"
	"unicode/utf8"
)

// Platform is one of the fixed social-media targets a post can be published to.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
	PlatformYouTube   Platform = "YouTube"
)

// Character limits per platform, counted in Unicode code points.
const (
	InstagramCharacterLimit = 2200
	TikTokCharacterLimit    = 150
	YouTubeCharacterLimit   = 5000
)

// Platforms returns every supported platform in display order.
func Platforms() []Platform {
	return []Platform{PlatformInstagram, PlatformTikTok, PlatformYouTube}
}

// ParsePlatform resolves a platform name case-insensitively.
func ParsePlatform(name string) (Platform, error) {
	for _, p := range Platforms() {
		if strings.EqualFold(string(p), strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return "", ErrUnknownPlatform
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformTikTok, PlatformYouTube:
		return true
	}
	return false
}

// CharacterLimit returns the maximum content length for p, or 0 for an unknown platform.
func (p Platform) CharacterLimit() int {
	switch p {
	case PlatformInstagram:
		return InstagramCharacterLimit
	case PlatformTikTok:
		return TikTokCharacterLimit
	case PlatformYouTube:
		return YouTubeCharacterLimit
	}
	return 0
}

// Exceeds reports whether content is longer than the platform limit.
func (p Platform) Exceeds(content string) bool {
	return utf8.RuneCountInString(content) > p.CharacterLimit()
}

// Slug is the lower-case form used in URLs, queue keys and storage.
func (p Platform) Slug() string {
	return strings.ToLower(string(p))
}
