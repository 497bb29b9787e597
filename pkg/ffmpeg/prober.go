// Package ffmpeg wraps the ffmpeg/ffprobe command line tools for
// probing, normalizing, and thumbnailing local media files.
package ffmpeg

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/vidforge/vidforge/internal/domain"
)

// Processor runs ffmpeg and ffprobe against local files. Binary paths
// are resolved once at startup (see pkg/capability), not per call.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	logger      *slog.Logger
}

// NewProcessor creates a processor around resolved binary paths. Each
// individual tool invocation is capped at timeout so a wedged binary
// cannot pin a worker; zero disables the cap.
func NewProcessor(ffmpegPath, ffprobePath string, timeout time.Duration, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		logger:      logger,
	}
}

// bound caps a single tool invocation under the configured timeout.
func (p *Processor) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// Probe extracts metadata from a local media file. A nil result with a
// nil error means the file could not be measured; callers treat that as
// "best-effort unknown", never as a failure.
func (p *Processor) Probe(ctx context.Context, path string) *domain.MediaInfo {
	stat, err := os.Stat(path)
	if err != nil {
		return nil
	}

	ctx, cancel := p.bound(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		p.logger.Warn("ffprobe failed", "path", path, "error", err)
		return nil
	}

	type ffprobeFormat struct {
		Duration string `json:"duration"`
	}
	type ffprobeStream struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		PixFmt    string `json:"pix_fmt"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	}
	type ffprobeOutput struct {
		Format  ffprobeFormat   `json:"format"`
		Streams []ffprobeStream `json:"streams"`
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		p.logger.Warn("ffprobe output unparsable", "path", path, "error", err)
		return nil
	}

	info := &domain.MediaInfo{Size: stat.Size()}

	if parsed.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64); err == nil {
			info.Duration = dur
		}
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if info.Codec == "" {
				info.Codec = s.CodecName
			}
			if info.PixFmt == "" {
				info.PixFmt = s.PixFmt
			}
			if info.Width == 0 && s.Width > 0 {
				info.Width = s.Width
			}
			if info.Height == 0 && s.Height > 0 {
				info.Height = s.Height
			}
		}
	}

	if info.Width == 0 && info.Height == 0 && info.Duration == 0 {
		// Nothing measurable; corrupt or incomplete download.
		return nil
	}

	return info
}
