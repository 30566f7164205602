package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
cloud:
  account:
    username: "user@example.com"
    password: "hunter2"
  timeout: 5
realtime:
  endpoint:
    host: "eu-mqtt.cloud.sengled.com"
    port: 443
    path: "/mqtt"
history:
  enabled: true
  path: "/tmp/test.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cloud.Account.Username != "user@example.com" {
		t.Errorf("Cloud.Account.Username = %q, want %q", cfg.Cloud.Account.Username, "user@example.com")
	}

	if cfg.Realtime.Endpoint.Host != "eu-mqtt.cloud.sengled.com" {
		t.Errorf("Realtime.Endpoint.Host = %q, want %q", cfg.Realtime.Endpoint.Host, "eu-mqtt.cloud.sengled.com")
	}

	if cfg.History.Path != "/tmp/test.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "/tmp/test.db")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	content := `
cloud:
  account:
    username: "user@example.com"
    password: "hunter2"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cloud.BaseURLs.UCenter != "https://ucenter.cloud.sengled.com" {
		t.Errorf("Cloud.BaseURLs.UCenter = %q, want default", cfg.Cloud.BaseURLs.UCenter)
	}
	if cfg.Realtime.Endpoint.Port != 443 {
		t.Errorf("Realtime.Endpoint.Port = %d, want 443", cfg.Realtime.Endpoint.Port)
	}
	if cfg.Realtime.KeepAlive != 30 {
		t.Errorf("Realtime.KeepAlive = %d, want 30", cfg.Realtime.KeepAlive)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "cloud: [not a mapping"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
cloud:
  account:
    username: "file-user"
    password: "file-pass"
`
	t.Setenv("SENGLED_USERNAME", "env-user")
	t.Setenv("SENGLED_PASSWORD", "env-pass")
	t.Setenv("SENGLED_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cloud.Account.Username != "env-user" {
		t.Errorf("Cloud.Account.Username = %q, want %q", cfg.Cloud.Account.Username, "env-user")
	}
	if cfg.Cloud.Account.Password != "env-pass" {
		t.Errorf("Cloud.Account.Password = %q, want %q", cfg.Cloud.Account.Password, "env-pass")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := defaultConfig()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for missing credentials, got nil")
	}
	if !strings.Contains(err.Error(), "cloud.account.username") {
		t.Errorf("Validate() error = %v, want mention of cloud.account.username", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cloud.Account.Username = "u"
	cfg.Cloud.Account.Password = "p"
	cfg.Realtime.Endpoint.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for invalid port, got nil")
	}
}

func TestValidate_InfluxRequiresToken(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cloud.Account.Username = "u"
	cfg.Cloud.Account.Password = "p"
	cfg.InfluxDB.Enabled = true
	cfg.InfluxDB.URL = "http://localhost:8086"
	cfg.InfluxDB.Token = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for missing influxdb token, got nil")
	}
	if !strings.Contains(err.Error(), "influxdb.token") {
		t.Errorf("Validate() error = %v, want mention of influxdb.token", err)
	}
}
