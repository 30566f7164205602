package history

import (
	"context"
	"time"
)

// Source values for attribute history entries.
const (
	// SourceStatus marks changes observed on the realtime status topic.
	SourceStatus = "status"

	// SourceCommand marks changes caused by a locally issued command.
	SourceCommand = "command"
)

// Entry represents a single recorded attribute change.
//
// Values are stored in their wire encoding (strings) so the trail
// reflects exactly what the cloud reported, before any decoding.
type Entry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// DeviceID is the unique identifier of the bulb.
	DeviceID string `json:"device_id"`

	// Attribute is the normalised property name that changed.
	Attribute string `json:"attribute"`

	// Value is the string-encoded value after the change.
	Value string `json:"value"`

	// Source identifies how the change was recorded (status, command).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Repository stores and retrieves attribute change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// Record persists a single attribute change.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - deviceID: Unique bulb identifier
	//   - attribute: Normalised property name
	//   - value: String-encoded value after the change
	//   - source: Origin of the change (status, command)
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	Record(ctx context.Context, deviceID, attribute, value, source string) error

	// GetHistory returns recent attribute changes for a bulb.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - deviceID: Unique bulb identifier
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []Entry: Ordered newest-first history entries (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetHistory(ctx context.Context, deviceID string, limit int) ([]Entry, error)
}
