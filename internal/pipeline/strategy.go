// Package pipeline implements the acquisition strategy chain: ordered
// fallback across credentialed, anonymous, and relay-based download
// mechanisms for a single URL.
package pipeline

import (
	"context"
	"errors"

	"github.com/vidforge/vidforge/internal/domain"
)

// ErrSkipped marks a strategy that declined to run (e.g. no cookie file
// installed, browser store absent). Skips are quiet; the chain simply
// advances.
var ErrSkipped = errors.New("strategy skipped")

// Strategy is one acquisition mechanism. Attempt must either produce a
// non-empty file at dest or leave no file behind; a partial file would
// make the next stage's existence check falsely report success.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req domain.DownloadRequest, dest string) error
}

// Resolver is the relay fallback: it maps a source URL to a directly
// fetchable media URL through third-party relay instances.
type Resolver interface {
	Resolve(ctx context.Context, url string) (string, error)
	Fetch(ctx context.Context, mediaURL, dest string) error
}
