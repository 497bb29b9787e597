package handler

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidforge/vidforge/internal/authwait"
	"github.com/vidforge/vidforge/internal/config"
	"github.com/vidforge/vidforge/internal/domain"
	"github.com/vidforge/vidforge/internal/repository"
	"github.com/vidforge/vidforge/internal/service"
	"github.com/vidforge/vidforge/pkg/cookies"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubChain satisfies service.Acquirer without running anything.
type stubChain struct {
	result *domain.DownloadResult
	err    error
}

func (s *stubChain) Acquire(_ context.Context, _ domain.DownloadRequest) (*domain.DownloadResult, error) {
	return s.result, s.err
}

type testEnv struct {
	acquire *service.AcquireService
	cookies *service.CookieService
	jobs    *repository.InMemoryJobRepository
	pending *authwait.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	jobs := repository.NewInMemoryJobRepository()
	history, err := repository.NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { history.Close() })

	pending := authwait.NewStore(time.Hour)
	acquire := service.NewAcquireService(&stubChain{}, nil, jobs, history, pending,
		config.WorkerConfig{Count: 1, MaxRetries: 2}, testLogger())

	store, err := cookies.NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new cookie store: %v", err)
	}
	cookieSvc := service.NewCookieService(store, pending, acquire, testLogger())

	return &testEnv{acquire: acquire, cookies: cookieSvc, jobs: jobs, pending: pending}
}
