package domain

import (
	"net/url"
	"strings"
)

// Platform identifies the social network a profile URL points at.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformYouTube   Platform = "YouTube"
	PlatformBlog      Platform = "Blog/Naver"
	PlatformTikTok    Platform = "TikTok"
	PlatformUnknown   Platform = "Unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"instagram.com", PlatformInstagram},
	{"instagr.am", PlatformInstagram},
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"tiktok.com", PlatformTikTok},
	{"blog.naver.com", PlatformBlog},
	{"naver.com", PlatformBlog},
	{"tistory.com", PlatformBlog},
}

// DetectPlatform guesses the platform from the URL host. Bare hosts without a
// scheme ("instagram.com/foo") are accepted.
func DetectPlatform(raw string) Platform {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PlatformUnknown
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, entry := range platformHosts {
		if host == entry.suffix || strings.HasSuffix(host, "."+entry.suffix) {
			return entry.platform
		}
	}
	return PlatformUnknown
}
