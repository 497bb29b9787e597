package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vidforge/vidforge/internal/domain"
)

// RelayClient queries third-party relay instances that resolve a source
// URL to a direct media URL. Instances speak one of two incompatible
// request schemas; both are tried per instance. Relay is the last
// stage: it depends on infrastructure of variable reliability and
// strips fidelity, so it only runs after every direct attempt failed.
type RelayClient struct {
	instances []string
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewRelayClient creates a relay client over the configured instances.
func NewRelayClient(instances []string, timeout time.Duration, userAgent string, logger *slog.Logger) *RelayClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayClient{
		instances: instances,
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// relayResponse covers both schema generations. The legacy schema
// answers "stream"/"success" where the modern one answers
// "tunnel"/"redirect"; both may answer "picker" with variants.
type relayResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Picker []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"picker"`
}

func (r relayResponse) mediaURL() string {
	switch r.Status {
	case "tunnel", "redirect", "stream", "success":
		return r.URL
	case "picker":
		for _, p := range r.Picker {
			if p.Type == "video" || p.Type == "" {
				return p.URL
			}
		}
	}
	return ""
}

// Resolve tries each instance and each schema variant in turn until one
// returns a resolvable media URL.
func (c *RelayClient) Resolve(ctx context.Context, url string) (string, error) {
	for _, instance := range c.instances {
		for _, attempt := range []struct {
			schema string
			fn     func(context.Context, string, string) (string, error)
		}{
			{"v10", c.resolveModern},
			{"v7", c.resolveLegacy},
		} {
			mediaURL, err := attempt.fn(ctx, instance, url)
			if err != nil {
				c.logger.Debug("relay instance failed",
					"instance", instance, "schema", attempt.schema, "error", err)
				relayInstanceFailures.WithLabelValues(instance).Inc()
				continue
			}
			if mediaURL != "" {
				return mediaURL, nil
			}
		}
	}
	return "", domain.ErrNoMediaURL
}

// resolveModern speaks the current schema: POST / with videoQuality.
func (c *RelayClient) resolveModern(ctx context.Context, instance, url string) (string, error) {
	body := map[string]any{
		"url":           url,
		"videoQuality":  "720",
		"filenameStyle": "basic",
	}
	return c.post(ctx, strings.TrimRight(instance, "/")+"/", body)
}

// resolveLegacy speaks the older schema: POST /api/json with vQuality.
func (c *RelayClient) resolveLegacy(ctx context.Context, instance, url string) (string, error) {
	body := map[string]any{
		"url":      url,
		"vQuality": "720",
	}
	return c.post(ctx, strings.TrimRight(instance, "/")+"/api/json", body)
}

func (c *RelayClient) post(ctx context.Context, endpoint string, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if parsed.Status == "error" {
		return "", fmt.Errorf("relay answered error status")
	}
	return parsed.mediaURL(), nil
}

// Fetch streams the resolved media URL's bytes to dest, bypassing the
// acquisition tool entirely. A failed fetch leaves no partial file.
func (c *RelayClient) Fetch(ctx context.Context, mediaURL, dest string) error {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: 2 * time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2.0}

	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, c.fetchOnce(ctx, mediaURL, dest)
	})
	if err != nil {
		os.Remove(dest)
	}
	return err
}

func (c *RelayClient) fetchOnce(ctx context.Context, mediaURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("stream body: %w", err)
	}
	if closeErr != nil {
		os.Remove(dest)
		return fmt.Errorf("close destination: %w", closeErr)
	}
	if written == 0 {
		os.Remove(dest)
		return fmt.Errorf("relay returned empty body")
	}
	return nil
}
