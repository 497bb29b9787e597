package service

import (
	"context"
	"log/slog"

	"github.com/vidforge/vidforge/internal/authwait"
	"github.com/vidforge/vidforge/internal/domain"
	"github.com/vidforge/vidforge/pkg/cookies"
)

// CookieService installs fresh credentials and resubmits requests that
// were parked waiting for them.
type CookieService struct {
	store   *cookies.Store
	pending *authwait.Store
	acquire *AcquireService
	logger  *slog.Logger
}

// NewCookieService creates a new cookie service.
func NewCookieService(store *cookies.Store, pending *authwait.Store, acquire *AcquireService, logger *slog.Logger) *CookieService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CookieService{
		store:   store,
		pending: pending,
		acquire: acquire,
		logger:  logger,
	}
}

// InstallResult summarizes a credential install.
type InstallResult struct {
	CookieCount int
	Resubmitted []domain.JobID
}

// Install replaces the stored credentials with a fresh structured
// export and requeues every acquisition parked on an auth failure.
func (c *CookieService) Install(ctx context.Context, jsonExport []byte) (*InstallResult, error) {
	count, err := c.store.Install(jsonExport)
	if err != nil {
		return nil, err
	}

	result := &InstallResult{CookieCount: count}
	if c.pending != nil && c.acquire != nil {
		for userID, entry := range c.pending.Drain() {
			resp, err := c.acquire.Submit(ctx, entry.URL, userID)
			if err != nil {
				c.logger.Warn("failed to requeue parked acquisition",
					"user_id", userID, "url", entry.URL, "error", err)
				continue
			}
			result.Resubmitted = append(result.Resubmitted, resp.JobID)
		}
	}

	c.logger.Info("credentials installed",
		"cookies", count,
		"resubmitted", len(result.Resubmitted),
	)
	return result, nil
}

// Status reports credential state plus the number of parked requests.
type CookieStatus struct {
	cookies.Status
	PendingAuth int `json:"pending_auth"`
}

// Status returns the current credential status.
func (c *CookieService) Status() CookieStatus {
	st := CookieStatus{Status: c.store.Status()}
	if c.pending != nil {
		st.PendingAuth = c.pending.Len()
	}
	return st
}
