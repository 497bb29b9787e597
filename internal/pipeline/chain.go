package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vidforge/vidforge/internal/domain"
	"github.com/vidforge/vidforge/pkg/cookies"
)

// Chain drives the ordered fallback sequence. Credentialed attempts run
// before anonymous ones because anti-automation defenses increasingly
// require session identity; the relay runs last. Every stage failure is
// non-fatal; only exhaustion of all stages fails the acquisition.
type Chain struct {
	strategies []Strategy
	relay      Resolver
	tempDir    string
	logger     *slog.Logger
}

// NewChain creates a chain over the given stages.
func NewChain(strategies []Strategy, relay Resolver, tempDir string, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		strategies: strategies,
		relay:      relay,
		tempDir:    tempDir,
		logger:     logger,
	}
}

// BuildStrategies assembles the direct stages in priority order:
// explicit cookie file, each configured browser profile, anonymous.
func BuildStrategies(runner *ToolRunner, store *cookies.Store, browsers []string) []Strategy {
	strategies := []Strategy{NewCookieFileStrategy(runner, store)}
	for _, b := range browsers {
		strategies = append(strategies, NewBrowserCookieStrategy(runner, b))
	}
	return append(strategies, NewAnonymousStrategy(runner))
}

// Acquire runs the chain for one request. On success the returned
// file is owned by the caller until explicitly deleted. Exhaustion is
// reported as domain.ErrExhausted, authentication-required failures as
// domain.ErrAuthRequired; callers must not treat either as a crash.
func (c *Chain) Acquire(ctx context.Context, req domain.DownloadRequest) (*domain.DownloadResult, error) {
	dest := filepath.Join(c.tempDir, "vf_"+uuid.New().String()+".mp4")

	authSeen := false

	for _, strategy := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptsTotal.WithLabelValues(strategy.Name()).Inc()
		err := strategy.Attempt(ctx, req, dest)

		if usable(dest) {
			if err != nil {
				c.logger.Warn("stage errored but produced usable output",
					"strategy", strategy.Name(), "url", req.URL, "error", err)
			}
			successTotal.WithLabelValues(strategy.Name()).Inc()
			return c.result(req, dest, strategy.Name()), nil
		}
		// A failed stage must leave nothing behind, or the next stage's
		// existence check would lie.
		removeIfEmpty(dest)

		switch {
		case errors.Is(err, ErrSkipped):
			c.logger.Debug("stage skipped", "strategy", strategy.Name(), "url", req.URL)
		case errors.Is(err, domain.ErrAuthRequired):
			authSeen = true
			authFailuresTotal.Inc()
			c.logger.Warn("stage blocked by anti-automation defense",
				"strategy", strategy.Name(), "url", req.URL)
		default:
			c.logger.Warn("stage failed",
				"strategy", strategy.Name(), "url", req.URL, "error", err)
		}
	}

	if c.relay != nil {
		if res, err := c.acquireViaRelay(ctx, req, dest); err == nil {
			return res, nil
		} else if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		} else {
			c.logger.Warn("relay fallback failed", "url", req.URL, "error", err)
		}
	}

	if authSeen {
		return nil, domain.NewAcquireError(req.URL, "", domain.ErrAuthRequired)
	}
	return nil, domain.NewAcquireError(req.URL, "", domain.ErrExhausted)
}

func (c *Chain) acquireViaRelay(ctx context.Context, req domain.DownloadRequest, dest string) (*domain.DownloadResult, error) {
	attemptsTotal.WithLabelValues("relay").Inc()

	mediaURL, err := c.relay.Resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if err := c.relay.Fetch(ctx, mediaURL, dest); err != nil {
		return nil, err
	}
	if !usable(dest) {
		removeIfEmpty(dest)
		return nil, fmt.Errorf("relay produced no usable file")
	}

	successTotal.WithLabelValues("relay").Inc()
	// No metadata sidecar on the relay path.
	return &domain.DownloadResult{
		FilePath: dest,
		Strategy: "relay",
		Platform: req.Platform,
	}, nil
}

func (c *Chain) result(req domain.DownloadRequest, dest, strategy string) *domain.DownloadResult {
	res := &domain.DownloadResult{
		FilePath: dest,
		Strategy: strategy,
		Platform: req.Platform,
	}
	if info := InfoSidecarPath(dest); usable(info) {
		res.InfoPath = info
	}
	return res
}

// usable reports a present, non-empty file. Presence alone is not
// enough: a zero-byte leftover would falsely signal success.
func usable(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Size() > 0
}

func removeIfEmpty(path string) {
	if stat, err := os.Stat(path); err == nil && stat.Size() == 0 {
		os.Remove(path)
	}
}
