package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/vidforge/vidforge/internal/domain"
)

// Size thresholds for the compression policy.
const (
	// compressMinSize is the size above which high-resolution files are
	// re-encoded.
	compressMinSize = 10 * 1024 * 1024
	// aggressiveSize switches to the more aggressive quality preset,
	// anticipating the transport's ~50 MB ceiling.
	aggressiveSize = 45 * 1024 * 1024
	// emergencySize triggers the forced-downscale second pass.
	emergencySize = 49 * 1024 * 1024

	compatPixFmt = "yuv420p"
	compatCodec  = "h264"

	crfStandard   = 24
	crfAggressive = 28
	crfEmergency  = 32
)

// Action is the transcoder's decision for a file.
type Action string

const (
	ActionRemux    Action = "remux"
	ActionCompress Action = "compress"
)

// Decide evaluates the compression policy against probed metadata.
// A nil info defaults to remux-only: most acquired files are already
// acceptable, and missing metadata usually means a measurement quirk
// rather than a broken file.
func Decide(info *domain.MediaInfo) Action {
	if info == nil {
		return ActionRemux
	}

	shorter := info.Width
	if info.Height < shorter {
		shorter = info.Height
	}

	highResHuge := info.Size > compressMinSize && shorter > 720
	if highResHuge || info.PixFmt != compatPixFmt || info.Codec != compatCodec {
		return ActionCompress
	}
	return ActionRemux
}

// crfFor picks the quality preset from the source size.
func crfFor(size int64) int {
	if size > aggressiveSize {
		return crfAggressive
	}
	return crfStandard
}

// Normalize re-encodes or remuxes the file in place so it meets the
// compatibility and size constraints. On success the original is
// replaced by the output; on failure it is left untouched and false is
// returned, letting the caller decide whether the unprocessed file is
// still acceptable.
func (p *Processor) Normalize(ctx context.Context, path string) bool {
	info := p.Probe(ctx, path)
	action := Decide(info)
	transcodeDecisions.WithLabelValues(string(action)).Inc()

	tmp := path + ".norm.mp4"
	defer os.Remove(tmp)

	var err error
	switch action {
	case ActionRemux:
		err = p.remux(ctx, path, tmp)
	case ActionCompress:
		size := int64(0)
		if info != nil {
			size = info.Size
		} else if stat, statErr := os.Stat(path); statErr == nil {
			size = stat.Size()
		}
		err = p.compress(ctx, path, tmp, crfFor(size), "")
	}

	if err != nil {
		p.logger.Warn("normalize pass failed", "path", path, "action", string(action), "error", err)
		return false
	}

	stat, err := os.Stat(tmp)
	if err != nil || stat.Size() == 0 {
		return false
	}

	// Emergency second pass: still over the transport ceiling. Force a
	// downscale to at most 720 on the longer dimension. The first
	// pass's output is only discarded once the second verifiably exists.
	if stat.Size() > emergencySize {
		tmp2 := path + ".norm2.mp4"
		defer os.Remove(tmp2)

		if err := p.compress(ctx, path, tmp2, crfEmergency, "scale='if(gt(iw,ih),min(iw,720),-2)':'if(gt(iw,ih),-2,min(ih,720))'"); err == nil {
			if stat2, err := os.Stat(tmp2); err == nil && stat2.Size() > 0 {
				if err := os.Rename(tmp2, tmp); err != nil {
					p.logger.Warn("emergency pass rename failed", "path", path, "error", err)
				}
			}
		} else {
			p.logger.Warn("emergency pass failed, keeping first pass output", "path", path, "error", err)
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		p.logger.Warn("normalize replace failed", "path", path, "error", err)
		return false
	}

	p.logger.Info("normalized media", "path", path, "action", string(action))
	return true
}

// remux repackages the streams into a clean mp4 container without
// re-encoding.
func (p *Processor) remux(ctx context.Context, src, dst string) error {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-i", src,
		"-c", "copy",
		"-movflags", "+faststart",
		"-y",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("remux: %w: %s", err, tail(out))
	}
	return nil
}

// compress re-encodes to the compatibility codec/pixel format at the
// given crf, optionally applying a scale filter.
func (p *Processor) compress(ctx context.Context, src, dst string, crf int, scaleFilter string) error {
	args := []string{
		"-i", src,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-preset", "fast",
		"-pix_fmt", compatPixFmt,
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
	}
	if scaleFilter != "" {
		args = append(args, "-vf", scaleFilter)
	}
	args = append(args, "-y", dst)

	ctx, cancel := p.bound(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("compress crf=%d: %w: %s", crf, err, tail(out))
	}
	return nil
}

// tail returns the last few hundred bytes of tool output for error
// context without flooding logs.
func tail(out []byte) string {
	const max = 400
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return string(out)
}
