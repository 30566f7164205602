package influxdb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "sengled-dev-token",
		Org:           "sengled",
		Bucket:        "metrics",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running locally.
func skipIfNoInfluxDB(t *testing.T) *influxdb.Client {
	t.Helper()

	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	t.Cleanup(func() {
		client.Close()
	})
	return client
}

func TestConnectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnectInvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:1" // nothing listens here

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestHealthCheck(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestWriteBulbMetric(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	client.WriteBulbMetric("test-bulb-01", "brightness", 75)
	client.WriteBulbMetric("test-bulb-01", "rssi", -52)
	client.Flush()
}

func TestWriteBulbState(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	client.WriteBulbState("test-bulb-01", true)
	client.WriteBulbState("test-bulb-01", false)
	client.Flush()
}

func TestCloseDropsWrites(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}

	// Writes and flushes after close are silent no-ops.
	client.WriteBulbMetric("test-bulb-01", "brightness", 10)
	client.Flush()
}
