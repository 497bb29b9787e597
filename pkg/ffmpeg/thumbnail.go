package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Thumbnail extracts a representative still frame from the video into
// thumbPath. Absence of a thumbnail is a normal outcome; callers send
// without one.
func (p *Processor) Thumbnail(ctx context.Context, videoPath, thumbPath string) (string, error) {
	// Seek a couple of seconds in to skip black lead-in frames, falling
	// back to the first frame for very short clips.
	seek := "2"
	if info := p.Probe(ctx, videoPath); info != nil && info.Duration > 0 && info.Duration < 3 {
		seek = "0"
	}

	frameCtx, cancel := p.bound(ctx)
	defer cancel()

	cmd := exec.CommandContext(frameCtx, p.ffmpegPath,
		"-ss", seek,
		"-i", videoPath,
		"-vframes", "1",
		"-vf", "scale='min(320,iw)':-2",
		"-q:v", "5",
		"-y",
		thumbPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("thumbnail: %w: %s", err, tail(out))
	}

	stat, err := os.Stat(thumbPath)
	if err != nil || stat.Size() == 0 {
		os.Remove(thumbPath)
		return "", fmt.Errorf("thumbnail: empty output")
	}

	return thumbPath, nil
}
