package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidforge/vidforge/internal/domain"
)

func newTestRelay(instances ...string) *RelayClient {
	return NewRelayClient(instances, 5*time.Second, "test-agent", nil)
}

func TestRelay_ModernSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["videoQuality"] != "720" {
			t.Errorf("modern schema should send videoQuality, got %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "tunnel",
			"url":    "https://cdn.example/media.mp4",
		})
	}))
	defer srv.Close()

	url, err := newTestRelay(srv.URL).Resolve(context.Background(), "https://x.com/a/status/1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if url != "https://cdn.example/media.mp4" {
		t.Errorf("url = %q", url)
	}
}

func TestRelay_LegacySchemaFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			// Old instances don't answer the modern endpoint.
			http.Error(w, "not found", http.StatusNotFound)
		case "/api/json":
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			if req["vQuality"] != "720" {
				t.Errorf("legacy schema should send vQuality, got %v", req)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"status": "stream",
				"url":    "https://cdn.example/legacy.mp4",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	url, err := newTestRelay(srv.URL).Resolve(context.Background(), "https://x.com/a/status/1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if url != "https://cdn.example/legacy.mp4" {
		t.Errorf("url = %q", url)
	}
}

func TestRelay_PickerSelectsVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "picker",
			"picker": []map[string]string{
				{"type": "photo", "url": "https://cdn.example/still.jpg"},
				{"type": "video", "url": "https://cdn.example/clip.mp4"},
			},
		})
	}))
	defer srv.Close()

	url, err := newTestRelay(srv.URL).Resolve(context.Background(), "https://instagram.com/p/1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if url != "https://cdn.example/clip.mp4" {
		t.Errorf("picker should select the video variant, got %q", url)
	}
}

func TestRelay_TriesNextInstanceOnError(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error"})
	}))
	defer dead.Close()

	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "redirect", "url": "https://cdn.example/ok.mp4"})
	}))
	defer alive.Close()

	url, err := newTestRelay(dead.URL, alive.URL).Resolve(context.Background(), "https://tiktok.com/@u/video/1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if url != "https://cdn.example/ok.mp4" {
		t.Errorf("url = %q", url)
	}
}

func TestRelay_AllInstancesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestRelay(srv.URL).Resolve(context.Background(), "https://x.com/a/status/1")
	if !errors.Is(err, domain.ErrNoMediaURL) {
		t.Fatalf("want ErrNoMediaURL, got %v", err)
	}
}

func TestRelay_FetchStreamsToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("media bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp4")
	if err := newTestRelay().Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "media bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestRelay_FetchEmptyBodyLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp4")
	if err := newTestRelay().Fetch(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("empty body should fail")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("failed fetch must leave no partial file")
	}
}
