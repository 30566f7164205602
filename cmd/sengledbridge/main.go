// Sengled Bridge - cloud client for Sengled Wi-Fi LED bulbs.
//
// The bridge logs into the Sengled cloud, opens the MQTT-over-websocket
// realtime channel, and exposes every Wi-Fi bulb on the account as a
// live proxy: attribute changes stream in over the channel, commands go
// out on it. Observed changes are optionally recorded to a local SQLite
// history trail and to InfluxDB telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/bulb"
	"github.com/nerrad567/sengled-bridge/internal/client"
	"github.com/nerrad567/sengled-bridge/internal/history"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/database"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// pruneInterval is how often the history retention window is enforced.
const pruneInterval = 12 * time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Sengled bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	bridge := client.New(cfg, log)

	// Attribute history (optional)
	if cfg.History.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.History.Path,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening history database: %w", dbErr)
		}
		defer func() {
			log.Info("closing history database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing history database", "error", closeErr)
			}
		}()

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running history migrations: %w", migrateErr)
		}
		log.Info("history database ready", "path", cfg.History.Path)

		repo := history.NewSQLiteRepository(db.DB)
		bridge.AttachHistory(repo)

		if cfg.History.RetentionDays > 0 {
			go pruneLoop(ctx, repo, cfg.GetRetention(), log)
		}
	} else {
		log.Info("attribute history disabled")
	}

	// InfluxDB telemetry (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		bridge.AttachTelemetry(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Registered last so the channel disconnects before its sinks close.
	defer func() {
		log.Info("closing client")
		bridge.Close()
	}()

	// Log in, connect the realtime channel, and discover the account's bulbs.
	if pairErr := bridge.Pair(ctx, func(b *bulb.Bulb) {
		log.Info("bulb discovered",
			"uuid", b.UUID(),
			"name", b.Name(),
			"type", b.TypeCode(),
			"online", b.Online(),
		)
	}); pairErr != nil {
		return fmt.Errorf("initial pairing: %w", pairErr)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. Client (channel disconnect)
	// 2. InfluxDB (if enabled)
	// 3. History database (if enabled)

	log.Info("Sengled bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SENGLED_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENGLED_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pruneLoop enforces the history retention window on an interval.
func pruneLoop(ctx context.Context, repo *history.SQLiteRepository, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		deleted, err := repo.Prune(ctx, retention)
		if err != nil {
			log.Warn("history prune failed", "error", err)
		} else if deleted > 0 {
			log.Info("history pruned", "deleted", deleted)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
