package capability

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestHasMethods(t *testing.T) {
	var caps Capabilities
	if caps.HasAcquireTool() || caps.HasFFmpeg() || caps.HasFFprobe() || caps.HasBrowser() {
		t.Error("empty capabilities should report nothing available")
	}

	caps = Capabilities{AcquireTool: "/usr/bin/yt-dlp", FFmpeg: "/usr/bin/ffmpeg"}
	if !caps.HasAcquireTool() {
		t.Error("acquire tool should be reported")
	}
	// Transcoding needs the prober too.
	if caps.HasFFmpeg() {
		t.Error("ffmpeg without ffprobe must not enable transcoding")
	}
}

func TestDetect_FindsToolOnPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a POSIX shell")
	}

	dir := t.TempDir()
	stub := filepath.Join(dir, "fake-dl")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", dir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	caps := Detect("fake-dl", logger)

	if caps.AcquireTool != stub {
		t.Errorf("AcquireTool = %q, want %q", caps.AcquireTool, stub)
	}
	if caps.HasFFmpeg() || caps.HasBrowser() {
		t.Error("nothing else on PATH, nothing else should resolve")
	}
}
