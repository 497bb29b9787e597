package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/vidforge/vidforge/internal/domain"
)

type fakeStrategy struct {
	name string
	// behavior per call
	err        error
	writeBytes []byte
	calls      int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(_ context.Context, _ domain.DownloadRequest, dest string) error {
	f.calls++
	if f.writeBytes != nil {
		if err := os.WriteFile(dest, f.writeBytes, 0644); err != nil {
			return err
		}
	}
	return f.err
}

type fakeResolver struct {
	resolveCalls int
	resolveErr   error
	mediaURL     string
	fetchErr     error
	fetchBytes   []byte
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) (string, error) {
	f.resolveCalls++
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.mediaURL, nil
}

func (f *fakeResolver) Fetch(_ context.Context, _ string, dest string) error {
	if f.fetchErr != nil {
		return f.fetchErr
	}
	return os.WriteFile(dest, f.fetchBytes, 0644)
}

func testRequest() domain.DownloadRequest {
	return domain.NewDownloadRequest("https://www.youtube.com/watch?v=abc", "u1")
}

func TestChain_AnonymousSucceedsWithoutRelay(t *testing.T) {
	first := &fakeStrategy{name: "cookie-file", err: errors.New("no dice")}
	second := &fakeStrategy{name: "browser:firefox", err: errors.New("still no")}
	anon := &fakeStrategy{name: "anonymous", writeBytes: []byte("video bytes")}
	relay := &fakeResolver{mediaURL: "https://cdn.example/v.mp4"}

	chain := NewChain([]Strategy{first, second, anon}, relay, t.TempDir(), nil)

	res, err := chain.Acquire(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if res.Strategy != "anonymous" {
		t.Errorf("strategy = %q, want anonymous", res.Strategy)
	}
	if !usable(res.FilePath) {
		t.Error("result file should exist and be non-empty")
	}
	if relay.resolveCalls != 0 {
		t.Error("relay must not be consulted when a direct stage succeeded")
	}
	if first.calls != 1 || second.calls != 1 || anon.calls != 1 {
		t.Errorf("each stage should run once: %d %d %d", first.calls, second.calls, anon.calls)
	}
}

func TestChain_AuthRequiredBeatsExhaustion(t *testing.T) {
	blocked := &fakeStrategy{name: "cookie-file", err: domain.ErrAuthRequired}
	anon := &fakeStrategy{name: "anonymous", err: errors.New("generic failure")}
	relay := &fakeResolver{resolveErr: domain.ErrNoMediaURL}

	chain := NewChain([]Strategy{blocked, anon}, relay, t.TempDir(), nil)

	_, err := chain.Acquire(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("want ErrAuthRequired, got %v", err)
	}
	if errors.Is(err, domain.ErrExhausted) {
		t.Error("auth failure must not be merged into exhaustion")
	}
	if relay.resolveCalls != 1 {
		t.Error("relay should still be tried before reporting auth failure")
	}
}

func TestChain_Exhaustion(t *testing.T) {
	s := &fakeStrategy{name: "anonymous", err: errors.New("nope")}
	relay := &fakeResolver{resolveErr: errors.New("all instances down")}

	chain := NewChain([]Strategy{s}, relay, t.TempDir(), nil)

	_, err := chain.Acquire(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrExhausted) {
		t.Fatalf("want ErrExhausted, got %v", err)
	}
}

func TestChain_RelayFallbackProducesResult(t *testing.T) {
	s := &fakeStrategy{name: "anonymous", err: errors.New("nope")}
	relay := &fakeResolver{mediaURL: "https://cdn.example/v.mp4", fetchBytes: []byte("relayed")}

	chain := NewChain([]Strategy{s}, relay, t.TempDir(), nil)

	res, err := chain.Acquire(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if res.Strategy != "relay" {
		t.Errorf("strategy = %q, want relay", res.Strategy)
	}
	if res.InfoPath != "" {
		t.Error("relay path must not claim a metadata sidecar")
	}
}

func TestChain_SkippedStagesAreQuiet(t *testing.T) {
	skipped := &fakeStrategy{name: "cookie-file", err: ErrSkipped}
	anon := &fakeStrategy{name: "anonymous", writeBytes: []byte("ok")}

	chain := NewChain([]Strategy{skipped, anon}, nil, t.TempDir(), nil)

	res, err := chain.Acquire(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if res.Strategy != "anonymous" {
		t.Errorf("strategy = %q, want anonymous", res.Strategy)
	}
}

func TestChain_ZeroByteLeftoverIsNotSuccess(t *testing.T) {
	// A stage that errors but leaves an empty file must not fool the
	// next stage's existence check.
	leaky := &fakeStrategy{name: "cookie-file", err: errors.New("died mid-write"), writeBytes: []byte{}}
	anon := &fakeStrategy{name: "anonymous", writeBytes: []byte("real content")}

	chain := NewChain([]Strategy{leaky, anon}, nil, t.TempDir(), nil)

	res, err := chain.Acquire(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if res.Strategy != "anonymous" {
		t.Errorf("strategy = %q, want anonymous (leftover mistaken for success?)", res.Strategy)
	}
	data, err := os.ReadFile(res.FilePath)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if string(data) != "real content" {
		t.Errorf("result content = %q", data)
	}
}

func TestChain_ContextCancellation(t *testing.T) {
	s := &fakeStrategy{name: "anonymous", err: errors.New("nope")}
	chain := NewChain([]Strategy{s}, nil, t.TempDir(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Acquire(ctx, testRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if s.calls != 0 {
		t.Error("no stage should run after cancellation")
	}
}
