package database

import (
	"context"
	"fmt"
	"time"
)

// Migration represents a single schema migration.
type Migration struct {
	// Version orders migrations; later versions run after earlier ones.
	// Format: YYYYMMDD_HHMMSS (e.g. 20260118_120000)
	Version string

	// Name is the human-readable migration name.
	Name string

	// SQL is the statement batch applied for this migration.
	SQL string
}

// MigrationRecord represents a row in the schema_migrations table.
type MigrationRecord struct {
	Version   string
	AppliedAt time.Time
}

// migrations is the full ordered schema. New migrations append here;
// existing entries are immutable once released.
var migrations = []Migration{
	{
		Version: "20260115_000000",
		Name:    "create_attribute_history",
		SQL: `
			CREATE TABLE attribute_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				device_id TEXT NOT NULL,
				attribute TEXT NOT NULL,
				value TEXT NOT NULL,
				source TEXT NOT NULL DEFAULT 'status',
				created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
			) STRICT;
			CREATE INDEX idx_attribute_history_device ON attribute_history(device_id, created_at DESC);
			CREATE INDEX idx_attribute_history_time ON attribute_history(created_at DESC);
		`,
	},
}

// Migrate applies all pending migrations to the database.
// Migrations are applied in declaration order (oldest first).
//
// Each migration runs in its own transaction. If migration N fails,
// migrations 1 to N-1 remain committed, N is rolled back, and N+1
// onwards are not attempted. Re-running Migrate after fixing the issue
// continues from N.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: If any migration fails (that migration is rolled back)
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, m := range applied {
		appliedSet[m.Version] = true
	}

	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// MigrationStatus returns the applied and pending migrations.
//
// Returns:
//   - applied: Migrations recorded in schema_migrations, oldest first
//   - pending: Declared migrations not yet applied, in run order
//   - err: If the migrations table cannot be read
func (db *DB) MigrationStatus(ctx context.Context) (applied []MigrationRecord, pending []Migration, err error) {
	if err := db.createMigrationsTable(ctx); err != nil {
		return nil, nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err = db.appliedMigrations(ctx)
	if err != nil {
		return nil, nil, err
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, m := range applied {
		appliedSet[m.Version] = true
	}
	for _, m := range migrations {
		if !appliedSet[m.Version] {
			pending = append(pending, m)
		}
	}

	return applied, pending, nil
}

// createMigrationsTable ensures the schema_migrations table exists.
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT
	`)
	return err
}

// appliedMigrations returns all recorded migrations, oldest first.
func (db *DB) appliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT version, applied_at FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("querying schema_migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var record MigrationRecord
		var appliedAt string
		if err := rows.Scan(&record.Version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration record: %w", err)
		}
		if ts, err := time.Parse("2006-01-02T15:04:05Z", appliedAt); err == nil {
			record.AppliedAt = ts
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migration records: %w", err)
	}

	return records, nil
}

// applyMigration runs a single migration in its own transaction and
// records it in schema_migrations.
func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}
