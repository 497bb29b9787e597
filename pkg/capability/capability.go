// Package capability detects available external runtimes once at
// process start. The result is an immutable value passed into the
// components that depend on those runtimes, so nothing re-probes the
// filesystem on a per-call basis.
package capability

import (
	"log/slog"
	"os/exec"
)

// Capabilities records which external binaries were resolved at startup.
type Capabilities struct {
	AcquireTool string // yt-dlp or compatible
	FFmpeg      string
	FFprobe     string
	Browser     string // headless chromium-family binary for batch extraction
}

// HasAcquireTool reports whether the acquisition tool is present.
func (c Capabilities) HasAcquireTool() bool { return c.AcquireTool != "" }

// HasFFmpeg reports whether both ffmpeg and ffprobe are present.
func (c Capabilities) HasFFmpeg() bool { return c.FFmpeg != "" && c.FFprobe != "" }

// HasFFprobe reports whether ffprobe alone is present.
func (c Capabilities) HasFFprobe() bool { return c.FFprobe != "" }

// HasBrowser reports whether a headless browser binary is present.
func (c Capabilities) HasBrowser() bool { return c.Browser != "" }

// browserBinaries are tried in order; the first hit wins.
var browserBinaries = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"headless-shell",
}

// Detect resolves the external binaries. Missing binaries are logged
// and left empty; callers degrade the affected feature instead of
// failing startup.
func Detect(acquireTool string, logger *slog.Logger) Capabilities {
	caps := Capabilities{}

	if path, err := exec.LookPath(acquireTool); err == nil {
		caps.AcquireTool = path
	} else {
		logger.Warn("acquisition tool not found, direct downloads disabled", "tool", acquireTool)
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		caps.FFmpeg = path
	} else {
		logger.Warn("ffmpeg not found, transcoding disabled")
	}
	if path, err := exec.LookPath("ffprobe"); err == nil {
		caps.FFprobe = path
	} else {
		logger.Warn("ffprobe not found, probing disabled")
	}

	for _, bin := range browserBinaries {
		if path, err := exec.LookPath(bin); err == nil {
			caps.Browser = path
			break
		}
	}
	if caps.Browser == "" {
		logger.Info("no headless browser found, batch extraction will use the scraper fallback")
	}

	return caps
}
