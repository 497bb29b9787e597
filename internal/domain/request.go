package domain

import (
	"strings"
	"time"
)

// Platform identifies the source site a URL belongs to.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformReddit    Platform = "reddit"
	PlatformUnknown   Platform = "unknown"
)

// String returns the string representation of the Platform.
func (p Platform) String() string {
	return string(p)
}

// platformDomains maps URL substrings to platforms. Order matters only
// for readability; no two entries overlap.
var platformDomains = []struct {
	substr   string
	platform Platform
}{
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"instagram.com", PlatformInstagram},
	{"tiktok.com", PlatformTikTok},
	{"twitter.com", PlatformTwitter},
	{"x.com", PlatformTwitter},
	{"facebook.com", PlatformFacebook},
	{"fb.watch", PlatformFacebook},
	{"reddit.com", PlatformReddit},
}

// DetectPlatform classifies a URL by substring match against the fixed
// domain table. Unrecognized URLs return PlatformUnknown.
func DetectPlatform(url string) Platform {
	lower := strings.ToLower(url)
	for _, e := range platformDomains {
		if strings.Contains(lower, e.substr) {
			return e.platform
		}
	}
	return PlatformUnknown
}

// DownloadRequest describes a single acquisition. Immutable once
// created; discarded after the pipeline resolves.
type DownloadRequest struct {
	URL       string
	Platform  Platform
	UserID    string
	CreatedAt time.Time
}

// NewDownloadRequest creates a request with the platform detected from
// the URL.
func NewDownloadRequest(url, userID string) DownloadRequest {
	return DownloadRequest{
		URL:       url,
		Platform:  DetectPlatform(url),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}
