package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vidforge/vidforge/internal/domain"
	"github.com/vidforge/vidforge/pkg/cookies"
)

// authSignatures are error substrings that indicate the target site
// demanded session identity. Matching output raises the distinguished
// authentication-required failure instead of a generic one.
var authSignatures = []string{
	"sign in to confirm",
	"login required",
	"log in or sign up",
	"requires authentication",
	"rate-limit reached",
	"requested content is not available",
	"cookies are no longer valid",
	"http error 403",
	"this content isn't available",
}

// browserAbsentSignatures mark a browser cookie store that simply does
// not exist on this host. Those are skipped quietly; anything else from
// a browser extraction attempt is logged loudly.
var browserAbsentSignatures = []string{
	"could not find",
	"no such file or directory",
	"unsupported browser",
}

// ToolRunner invokes the external acquisition tool. Success is decided
// by the output file's existence and non-zero size, never by the exit
// code alone: partial tool failures can still leave a usable file.
type ToolRunner struct {
	toolPath    string
	timeout     time.Duration
	maxFileSize int64
	logger      *slog.Logger
}

// NewToolRunner creates a runner around a resolved tool path.
func NewToolRunner(toolPath string, timeout time.Duration, maxFileSize int64, logger *slog.Logger) *ToolRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolRunner{
		toolPath:    toolPath,
		timeout:     timeout,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// InfoSidecarPath returns where the tool writes the JSON info sidecar
// for a given destination path.
func InfoSidecarPath(dest string) string {
	return strings.TrimSuffix(dest, filepath.Ext(dest)) + ".info.json"
}

func (r *ToolRunner) baseArgs(req domain.DownloadRequest, dest string) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"-f", "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/b",
		"--merge-output-format", "mp4",
		"--max-filesize", strconv.FormatInt(r.maxFileSize, 10),
		"--write-info-json",
		"-o", dest,
	}
	if req.Platform == domain.PlatformYouTube {
		// The embedded script-challenge solver needs these extractor
		// hints to pick a working player client.
		args = append(args, "--extractor-args", "youtube:player_client=default,web_safari")
	}
	return args
}

// run executes the tool with the given credential arguments. It cleans
// up any partial output on failure so the next stage's existence check
// stays truthful.
func (r *ToolRunner) run(ctx context.Context, req domain.DownloadRequest, dest string, credArgs []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(r.baseArgs(req, dest), credArgs...)
	args = append(args, req.URL)

	cmd := exec.CommandContext(ctx, r.toolPath, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()

	if stat, err := os.Stat(dest); err == nil && stat.Size() > 0 {
		if runErr != nil {
			// Exit code is logged but not authoritative.
			r.logger.Warn("acquisition tool exited non-zero but left usable output",
				"url", req.URL, "error", runErr)
		}
		return output.String(), nil
	}

	r.cleanupPartials(dest)

	out := output.String()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		// Behaviorally an ordinary failure, surfaced distinctly in logs.
		r.logger.Warn("acquisition tool timed out", "url", req.URL, "timeout", r.timeout)
		return out, fmt.Errorf("tool timed out after %s", r.timeout)
	}
	if matchesAny(out, authSignatures) {
		return out, domain.ErrAuthRequired
	}
	if runErr != nil {
		return out, fmt.Errorf("tool failed: %w: %s", runErr, tail(out))
	}
	return out, fmt.Errorf("tool produced no output file")
}

func (r *ToolRunner) cleanupPartials(dest string) {
	for _, p := range []string{
		dest,
		dest + ".part",
		dest + ".ytdl",
		InfoSidecarPath(dest),
	} {
		os.Remove(p)
	}
}

func matchesAny(output string, signatures []string) bool {
	lower := strings.ToLower(output)
	for _, sig := range signatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// tail trims tool output for error messages.
func tail(out string) string {
	out = strings.TrimSpace(out)
	const max = 300
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}

// CookieFileStrategy runs the tool with the explicitly installed
// credential file. Skips when no file is installed.
type CookieFileStrategy struct {
	runner *ToolRunner
	store  *cookies.Store
}

// NewCookieFileStrategy creates the explicit-credential stage.
func NewCookieFileStrategy(runner *ToolRunner, store *cookies.Store) *CookieFileStrategy {
	return &CookieFileStrategy{runner: runner, store: store}
}

func (s *CookieFileStrategy) Name() string { return "cookie-file" }

func (s *CookieFileStrategy) Attempt(ctx context.Context, req domain.DownloadRequest, dest string) error {
	// Resolved at attempt time: an admin install may land between jobs.
	// Concurrent read vs replace is an accepted last-writer-wins race.
	path := s.store.NetscapePath()
	if path == "" {
		return ErrSkipped
	}
	_, err := s.runner.run(ctx, req, dest, []string{"--cookies", path})
	return err
}

// BrowserCookieStrategy runs the tool with cookies extracted from a
// local browser profile.
type BrowserCookieStrategy struct {
	runner  *ToolRunner
	browser string
}

// NewBrowserCookieStrategy creates a browser-extraction stage for one
// browser from the fixed ordered list.
func NewBrowserCookieStrategy(runner *ToolRunner, browser string) *BrowserCookieStrategy {
	return &BrowserCookieStrategy{runner: runner, browser: browser}
}

func (s *BrowserCookieStrategy) Name() string { return "browser:" + s.browser }

func (s *BrowserCookieStrategy) Attempt(ctx context.Context, req domain.DownloadRequest, dest string) error {
	out, err := s.runner.run(ctx, req, dest, []string{"--cookies-from-browser", s.browser})
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrAuthRequired) && matchesAny(out, browserAbsentSignatures) {
		// The browser store simply isn't on this host.
		return ErrSkipped
	}
	return err
}

// AnonymousStrategy runs the tool with no credentials at all.
type AnonymousStrategy struct {
	runner *ToolRunner
}

// NewAnonymousStrategy creates the uncredentialed stage.
func NewAnonymousStrategy(runner *ToolRunner) *AnonymousStrategy {
	return &AnonymousStrategy{runner: runner}
}

func (s *AnonymousStrategy) Name() string { return "anonymous" }

func (s *AnonymousStrategy) Attempt(ctx context.Context, req domain.DownloadRequest, dest string) error {
	_, err := s.runner.run(ctx, req, dest, nil)
	return err
}
