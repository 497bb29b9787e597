package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Worker    WorkerConfig    `yaml:"worker"`
	Acquire   AcquireConfig   `yaml:"acquire"`
	Relay     RelayConfig     `yaml:"relay"`
	Batch     BatchConfig     `yaml:"batch"`
	Transcode TranscodeConfig `yaml:"transcode"`
	Cookies   CookiesConfig   `yaml:"cookies"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"9483"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"5m"`
}

// StorageConfig holds filesystem storage configuration.
type StorageConfig struct {
	TempPath   string `yaml:"temp_path" envconfig:"STORAGE_TEMP_PATH" default:"/data/temp"`
	HistoryDB  string `yaml:"history_db" envconfig:"STORAGE_HISTORY_DB" default:"/data/vidforge.db"`
	CookiePath string `yaml:"cookie_path" envconfig:"STORAGE_COOKIE_PATH" default:"/data/cookies"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Count        int           `yaml:"count" envconfig:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"WORKER_POLL_INTERVAL" default:"2s"`
	MaxRetries   int           `yaml:"max_retries" envconfig:"WORKER_MAX_RETRIES" default:"2"`
}

// AcquireConfig holds acquisition tool configuration.
type AcquireConfig struct {
	ToolPath string        `yaml:"tool_path" envconfig:"ACQUIRE_TOOL_PATH" default:"yt-dlp"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"ACQUIRE_TIMEOUT" default:"10m"`
	// Browsers is the ordered list of local browser profiles tried for
	// cookie extraction when no explicit cookie file is installed.
	Browsers []string `yaml:"browsers" envconfig:"ACQUIRE_BROWSERS" default:"chromium,firefox,brave,edge"`
	// MaxFileSize caps what the tool is asked to fetch, in bytes.
	MaxFileSize int64 `yaml:"max_file_size" envconfig:"ACQUIRE_MAX_FILE_SIZE" default:"2147483648"`
}

// RelayConfig holds relay fallback service configuration.
type RelayConfig struct {
	// Instances are base URLs of independent relay services, tried in order.
	Instances []string      `yaml:"instances" envconfig:"RELAY_INSTANCES"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"RELAY_TIMEOUT" default:"60s"`
	UserAgent string        `yaml:"user_agent" envconfig:"RELAY_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// BatchConfig holds batch extraction configuration.
type BatchConfig struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"BATCH_TIMEOUT" default:"3m"`
	// Patience is how many consecutive no-progress scroll cycles the
	// browser session tolerates before giving up.
	Patience    int           `yaml:"patience" envconfig:"BATCH_PATIENCE" default:"5"`
	ScrollDelay time.Duration `yaml:"scroll_delay" envconfig:"BATCH_SCROLL_DELAY" default:"1500ms"`
	UserAgent   string        `yaml:"user_agent" envconfig:"BATCH_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// TranscodeConfig holds transcoder configuration.
type TranscodeConfig struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"TRANSCODE_TIMEOUT" default:"15m"`
}

// CookiesConfig holds cookie store configuration.
type CookiesConfig struct {
	// Passphrase protects the structured master copy at rest. Optional;
	// when empty the master copy is stored in the clear.
	Passphrase string `yaml:"passphrase" envconfig:"COOKIES_PASSPHRASE"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if len(cfg.Relay.Instances) == 0 {
		cfg.Relay.Instances = DefaultRelayInstances()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultRelayInstances returns the built-in relay instance list.
func DefaultRelayInstances() []string {
	return []string{
		"https://cobalt-api.kwiatekmiki.com",
		"https://capi.oak.li",
		"https://cobalt-backend.canine.tools",
	}
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.Storage.TempPath == "" {
		return fmt.Errorf("STORAGE_TEMP_PATH is required")
	}
	if c.Storage.CookiePath == "" {
		return fmt.Errorf("STORAGE_COOKIE_PATH is required")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
