package batch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeLister is the secondary strategy: a single plain HTML fetch of
// the collection page. No scrolling, no script execution, and no
// reordering — items come back in the order the document gives them.
type ScrapeLister struct {
	client    *http.Client
	userAgent string
}

// NewScrapeLister creates the fallback extraction strategy.
func NewScrapeLister(timeout time.Duration, userAgent string) *ScrapeLister {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ScrapeLister{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (s *ScrapeLister) name() string { return "scrape" }

func (s *ScrapeLister) list(ctx context.Context, handle string, count int, textFilter string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, collectionURL(handle), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch collection page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse collection page: %w", err)
	}

	base := resp.Request.URL
	seen := make(map[string]bool)
	var items []string

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		if u, err := base.Parse(href); err == nil {
			href = u.String()
		}
		if !itemLinkPattern.MatchString(href) || seen[href] {
			return true
		}
		seen[href] = true
		if !matchesFilter(sel.Text(), textFilter) {
			return true
		}
		items = append(items, href)
		return len(items) < count
	})

	return items, nil
}
