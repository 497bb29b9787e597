package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			APIKey: "test-api-key",
		},
		Storage: StorageConfig{
			TempPath:   "/data/temp",
			CookiePath: "/data/cookies",
		},
		Worker: WorkerConfig{
			Count: 1,
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() should pass, got %v", err)
	}
}

func TestConfig_Validate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Server.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing API_KEY")
	}
}

func TestConfig_Validate_MissingTempPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.TempPath = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing STORAGE_TEMP_PATH")
	}
}

func TestConfig_Validate_ZeroWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Worker.Count = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for zero workers")
	}
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  api_key: "file-key"
storage:
  temp_path: "/tmp/vidforge"
  cookie_path: "/tmp/vidforge/cookies"
relay:
  instances: ["https://relay.example.com"]
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("API_KEY", "")
	os.Unsetenv("API_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file-key", cfg.Server.APIKey)
	}
	if len(cfg.Relay.Instances) != 1 || cfg.Relay.Instances[0] != "https://relay.example.com" {
		t.Errorf("Relay.Instances = %v", cfg.Relay.Instances)
	}
	if cfg.Acquire.Timeout != 10*time.Minute {
		t.Errorf("Acquire.Timeout = %v, want default 10m", cfg.Acquire.Timeout)
	}
	if cfg.Batch.Patience != 5 {
		t.Errorf("Batch.Patience = %d, want default 5", cfg.Batch.Patience)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  api_key: "file-key"
storage:
  temp_path: "/tmp/vidforge"
  cookie_path: "/tmp/vidforge/cookies"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env override", cfg.Server.APIKey)
	}
}

func TestLoad_DefaultRelayInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  api_key: "k"
storage:
  temp_path: "/tmp/a"
  cookie_path: "/tmp/b"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Relay.Instances) == 0 {
		t.Error("relay instances should default when unset")
	}
}
