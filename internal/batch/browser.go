package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/vidforge/vidforge/pkg/cookies"
)

// pageLink is what the in-page collector returns per anchor.
type pageLink struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

const collectLinksJS = `Array.from(document.querySelectorAll('a[href]')).map(a => ({href: a.href, text: a.textContent || ""}))`

// BrowserLister drives a headless browser session: navigate to the
// collection page, then scroll and collect distinct item links until
// the desired count is reached or patience runs out.
type BrowserLister struct {
	execPath    string
	userAgent   string
	store       *cookies.Store // optional credential source for the session
	patience    int
	scrollDelay time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// BrowserConfig configures the browser lister.
type BrowserConfig struct {
	ExecPath    string
	UserAgent   string
	Patience    int
	ScrollDelay time.Duration
	Timeout     time.Duration
}

// NewBrowserLister creates the primary extraction strategy. store may
// be nil to always browse anonymously.
func NewBrowserLister(cfg BrowserConfig, store *cookies.Store, logger *slog.Logger) *BrowserLister {
	if cfg.Patience <= 0 {
		cfg.Patience = 5
	}
	if cfg.ScrollDelay <= 0 {
		cfg.ScrollDelay = 1500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserLister{
		execPath:    cfg.ExecPath,
		userAgent:   cfg.UserAgent,
		store:       store,
		patience:    cfg.Patience,
		scrollDelay: cfg.ScrollDelay,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

func (b *BrowserLister) name() string { return "browser" }

// list scrolls the collection page collecting distinct item links in
// page order (newest first). The session is a scoped resource: every
// exit path runs the cancel functions, so no headless process leaks.
func (b *BrowserLister) list(ctx context.Context, handle string, count int, textFilter string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(b.execPath),
		chromedp.UserAgent(b.userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if path := b.cookiePath(); path != "" {
		if err := b.seedCookies(browserCtx, path); err != nil {
			b.logger.Warn("cookie pre-seed failed, continuing anonymously", "error", err)
		}
	}

	if err := chromedp.Run(browserCtx, chromedp.Navigate(collectionURL(handle))); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	seen := make(map[string]bool)
	var items []string
	stale := 0

	for len(items) < count && stale < b.patience {
		if err := chromedp.Run(browserCtx, chromedp.Sleep(b.scrollDelay)); err != nil {
			return nil, fmt.Errorf("settle: %w", err)
		}

		var links []pageLink
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(collectLinksJS, &links)); err != nil {
			return nil, fmt.Errorf("collect links: %w", err)
		}

		added := 0
		for _, link := range links {
			if len(items) >= count {
				break
			}
			if !itemLinkPattern.MatchString(link.Href) || seen[link.Href] {
				continue
			}
			seen[link.Href] = true
			if !matchesFilter(link.Text, textFilter) {
				continue
			}
			items = append(items, link.Href)
			added++
		}

		// Patience threshold: a stopping rule, not a hard limit. Slow
		// networks legitimately need several empty cycles before we
		// conclude the page has nothing more to give.
		if added == 0 {
			stale++
		} else {
			stale = 0
		}

		if len(items) < count {
			if err := chromedp.Run(browserCtx,
				chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			); err != nil {
				return nil, fmt.Errorf("scroll: %w", err)
			}
		}
	}

	return items, nil
}

// cookiePath resolves the installed credential file at session start,
// so installs landing after boot reach the next session without a
// restart.
func (b *BrowserLister) cookiePath() string {
	if b.store == nil {
		return ""
	}
	return b.store.NetscapePath()
}

// seedCookies loads the installed Netscape cookie file into the
// browser session so the collection page renders as a logged-in user.
func (b *BrowserLister) seedCookies(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}
	set := cookies.ParseNetscape(data)
	if len(set) == 0 {
		return nil
	}

	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, r := range set {
			param := network.SetCookie(r.Name, r.Value).
				WithDomain(r.Domain).
				WithPath(r.Path).
				WithSecure(r.Secure)
			if err := param.Do(ctx); err != nil {
				return fmt.Errorf("set cookie %s: %w", r.Name, err)
			}
		}
		return nil
	}))
}
