// Package history persists a local audit trail of bulb attribute
// changes in SQLite.
//
// Every applied status delta and every acknowledged command can be
// recorded, giving an offline-queryable record even when the
// time-series database is unavailable. Entries keep the wire encoding
// of values so the trail reflects exactly what the cloud reported.
package history
