// Package batch enumerates item URLs from a profile or collection
// page, primarily through a headless browser session and secondarily
// through a plain HTML scrape.
package batch

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// itemLinkPattern matches hrefs that point at individual media items.
var itemLinkPattern = regexp.MustCompile(`/(reel|reels|p|video|shorts)/[^/?#]+|[?&]v=[^&#]+|/status/\d+`)

// lister is one enumeration mechanism. Implementations return item
// URLs in their natural page order and never more than count.
type lister interface {
	name() string
	list(ctx context.Context, handle string, count int, textFilter string) ([]string, error)
}

// Extractor drives the primary browser session and falls back to the
// scraper when the browser is unavailable or fails.
type Extractor struct {
	primary  lister
	fallback lister
	logger   *slog.Logger
}

// NewExtractor wires the two strategies. primary may be nil when no
// browser runtime was detected at startup.
func NewExtractor(primary, fallback lister, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{primary: primary, fallback: fallback, logger: logger}
}

// ListItems enumerates up to count item URLs for a collection handle.
//
// The browser session delivers newest-first page order: it is reversed
// when the caller wants oldest-first ("series" semantics) and returned
// unmodified for newest-first ("last N" semantics). The scraper
// fallback returns the library's native order in both cases; that
// asymmetry is deliberate and pinned by tests.
//
// Both strategies failing yields an empty slice, never an error: zero
// results is a reportable, non-fatal outcome for the caller.
func (e *Extractor) ListItems(ctx context.Context, handle string, count int, textFilter string, newestFirst bool) []string {
	if count <= 0 {
		return nil
	}

	if e.primary != nil {
		items, err := e.primary.list(ctx, handle, count, textFilter)
		if err == nil && len(items) > 0 {
			if !newestFirst {
				reverse(items)
			}
			return items
		}
		if err != nil {
			e.logger.Warn("primary extraction failed, trying fallback",
				"strategy", e.primary.name(), "handle", handle, "error", err)
		}
	}

	if e.fallback != nil {
		items, err := e.fallback.list(ctx, handle, count, textFilter)
		if err != nil {
			e.logger.Warn("fallback extraction failed",
				"strategy", e.fallback.name(), "handle", handle, "error", err)
			return nil
		}
		return items
	}

	return nil
}

func reverse(items []string) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

// matchesFilter applies the optional case-insensitive text filter.
func matchesFilter(text, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(filter))
}

// collectionURL maps a bare handle to its profile page, passing full
// URLs through untouched.
func collectionURL(handle string) string {
	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		return handle
	}
	return "https://www.instagram.com/" + strings.TrimPrefix(handle, "@") + "/"
}
