// Package database provides the SQLite connection layer for local
// persistence.
//
// It wraps database/sql with connection setup tuned for SQLite (WAL
// mode, busy timeout, single-writer pool) and a small versioned schema
// migration runner. Migrations are declared in Go rather than loose SQL
// files so the schema ships inside the binary.
//
// The database backs the attribute history trail; see the history
// package for the repository built on top of this layer.
package database
