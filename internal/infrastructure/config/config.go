package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Sengled bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Cloud    CloudConfig    `yaml:"cloud"`
	Realtime RealtimeConfig `yaml:"realtime"`
	History  HistoryConfig  `yaml:"history"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CloudConfig contains Sengled cloud account and REST endpoint settings.
type CloudConfig struct {
	Account  AccountConfig `yaml:"account"`
	BaseURLs BaseURLConfig `yaml:"base_urls"`

	// Timeout is the per-request timeout for REST calls (seconds).
	Timeout int `yaml:"timeout"`
}

// AccountConfig contains the Sengled mobile app credentials.
// These are the only secrets the bridge ever holds.
type AccountConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// BaseURLConfig contains the two REST backends Sengled splits its API across.
type BaseURLConfig struct {
	// UCenter hosts the authentication endpoints (login, session probe).
	UCenter string `yaml:"ucenter"`

	// Life2 hosts the device endpoints (server info, device list).
	Life2 string `yaml:"life2"`
}

// RealtimeConfig contains settings for the MQTT-over-websocket channel.
type RealtimeConfig struct {
	Endpoint  EndpointConfig  `yaml:"endpoint"`
	KeepAlive int             `yaml:"keep_alive"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
}

// EndpointConfig is the default realtime endpoint, used until the cloud
// reports a fresher one via endpoint discovery.
type EndpointConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// ReconnectConfig controls the supervised re-login loop.
//
// The channel itself never reconnects on its own; a fresh login drives
// reconnection. When Enabled is true the client retries login with
// exponential backoff after a transport-level disconnect.
type ReconnectConfig struct {
	Enabled      bool `yaml:"enabled"`
	InitialDelay int  `yaml:"initial_delay"`
	MaxDelay     int  `yaml:"max_delay"`
	MaxAttempts  int  `yaml:"max_attempts"`
}

// HistoryConfig contains SQLite attribute-history settings.
type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	WALMode       bool   `yaml:"wal_mode"`
	BusyTimeout   int    `yaml:"busy_timeout"`
	RetentionDays int    `yaml:"retention_days"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SENGLED_SECTION_KEY
// For example: SENGLED_USERNAME, SENGLED_HISTORY_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
//
// The REST base URLs and realtime endpoint default to the public US cloud;
// endpoint discovery replaces the realtime endpoint after login.
func defaultConfig() *Config {
	return &Config{
		Cloud: CloudConfig{
			BaseURLs: BaseURLConfig{
				UCenter: "https://ucenter.cloud.sengled.com",
				Life2:   "https://life2.cloud.sengled.com",
			},
			Timeout: 10,
		},
		Realtime: RealtimeConfig{
			Endpoint: EndpointConfig{
				Host: "us-mqtt.cloud.sengled.com",
				Port: 443,
				Path: "/mqtt",
			},
			KeepAlive: 30,
			Reconnect: ReconnectConfig{
				Enabled:      true,
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "./data/sengled-bridge.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SENGLED_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Account credentials (preferred over storing them in the file)
	if v := os.Getenv("SENGLED_USERNAME"); v != "" {
		cfg.Cloud.Account.Username = v
	}
	if v := os.Getenv("SENGLED_PASSWORD"); v != "" {
		cfg.Cloud.Account.Password = v
	}

	// History
	if v := os.Getenv("SENGLED_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	// InfluxDB
	if v := os.Getenv("SENGLED_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("SENGLED_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Account validation - the bridge is useless without credentials.
	if c.Cloud.Account.Username == "" {
		errs = append(errs, "cloud.account.username is required (set SENGLED_USERNAME environment variable)")
	}
	if c.Cloud.Account.Password == "" {
		errs = append(errs, "cloud.account.password is required (set SENGLED_PASSWORD environment variable)")
	}

	// REST backend validation
	if c.Cloud.BaseURLs.UCenter == "" {
		errs = append(errs, "cloud.base_urls.ucenter is required")
	}
	if c.Cloud.BaseURLs.Life2 == "" {
		errs = append(errs, "cloud.base_urls.life2 is required")
	}
	if c.Cloud.Timeout <= 0 {
		errs = append(errs, "cloud.timeout must be positive")
	}

	// Realtime validation
	if c.Realtime.Endpoint.Host == "" {
		errs = append(errs, "realtime.endpoint.host is required")
	}
	if c.Realtime.Endpoint.Port < 1 || c.Realtime.Endpoint.Port > 65535 {
		errs = append(errs, "realtime.endpoint.port must be between 1 and 65535")
	}

	// History validation
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set SENGLED_INFLUXDB_TOKEN environment variable)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetCloudTimeout returns the REST request timeout as a Duration.
func (c *Config) GetCloudTimeout() time.Duration {
	return c.Cloud.GetTimeout()
}

// GetTimeout returns the REST request timeout as a Duration.
func (c CloudConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetKeepAlive returns the realtime keepalive interval as a Duration.
func (c *Config) GetKeepAlive() time.Duration {
	return time.Duration(c.Realtime.KeepAlive) * time.Second
}

// GetRetention returns the history retention window as a Duration.
func (c *Config) GetRetention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}
