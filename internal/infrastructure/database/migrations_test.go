package database

import (
	"context"
	"testing"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='attribute_history'").
		Scan(&name)
	if err != nil {
		t.Fatalf("attribute_history table missing: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("counting schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("schema_migrations rows = %d, want %d", count, len(migrations))
	}
}

func TestMigrationStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %d before Migrate, want 0", len(applied))
	}
	if len(pending) != len(migrations) {
		t.Errorf("pending = %d before Migrate, want %d", len(pending), len(migrations))
	}

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	applied, pending, err = db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != len(migrations) {
		t.Errorf("applied = %d after Migrate, want %d", len(applied), len(migrations))
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d after Migrate, want 0", len(pending))
	}
	if len(applied) > 0 && applied[0].AppliedAt.IsZero() {
		t.Error("AppliedAt is zero, want parsed timestamp")
	}
}
