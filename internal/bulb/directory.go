package bulb

import (
	"context"
	"sync"

	"github.com/nerrad567/sengled-bridge/internal/cloud"
)

// supportedCategory is the only device category the directory proxies.
// Other Sengled product families use different topics and payloads.
const supportedCategory = "wifielement"

// Fetcher retrieves the account's device records from the cloud.
// Satisfied by *cloud.Session.
type Fetcher interface {
	FetchDevices(ctx context.Context) ([]cloud.DeviceInfo, error)
}

// Directory holds the account's bulb proxies and keeps them stable
// across refreshes.
//
// A proxy, once created, is never discarded: a device missing from a
// later listing keeps its entry (and its attribute state) so callers
// holding the proxy are never invalidated by a transient cloud omission.
//
// Only records in the wifielement category with a device UUID get a
// proxy. The account listing can carry other Sengled product families,
// and those speak different topics and payloads this package cannot
// drive, so they are skipped during refresh rather than surfaced as
// half-working proxies.
type Directory struct {
	fetcher Fetcher
	channel Channel
	logger  Logger

	mu     sync.Mutex
	bulbs  []*Bulb
	byUUID map[string]*Bulb
}

// NewDirectory creates an empty directory.
//
// Parameters:
//   - fetcher: Cloud device listing source
//   - channel: Realtime transport handed to new proxies
//   - logger: Logger handed to new proxies
//
// Returns:
//   - *Directory: Directory with no proxies; call List to populate
func NewDirectory(fetcher Fetcher, channel Channel, logger Logger) *Directory {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Directory{
		fetcher: fetcher,
		channel: channel,
		logger:  logger,
		byUUID:  make(map[string]*Bulb),
	}
}

// List returns the account's bulb proxies, refreshing from the cloud
// when forced or when the directory is empty.
//
// On a refresh failure the cached proxies are returned alongside the
// error, so callers can keep operating on last-known devices.
//
// Parameters:
//   - ctx: Context for the cloud request
//   - force: Refresh even when proxies are cached
//
// Returns:
//   - []*Bulb: Snapshot of the directory, in first-seen order
//   - error: Fetch or decode failure; nil when served from cache
func (d *Directory) List(ctx context.Context, force bool) ([]*Bulb, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !force && len(d.bulbs) > 0 {
		return d.snapshot(), nil
	}

	infos, err := d.fetcher.FetchDevices(ctx)
	if err != nil {
		return d.snapshot(), err
	}

	for _, info := range infos {
		if info.Category != supportedCategory {
			continue
		}
		if info.DeviceUUID == "" {
			continue
		}
		if _, exists := d.byUUID[info.DeviceUUID]; exists {
			continue
		}
		b := New(d.channel, d.logger, info)
		d.byUUID[info.DeviceUUID] = b
		d.bulbs = append(d.bulbs, b)
	}

	return d.snapshot(), nil
}

// Get returns the proxy for a device UUID, or nil when unknown.
func (d *Directory) Get(uuid string) *Bulb {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byUUID[uuid]
}

// Count returns the number of proxies held.
func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bulbs)
}

// snapshot copies the proxy slice. Caller must hold d.mu.
func (d *Directory) snapshot() []*Bulb {
	out := make([]*Bulb, len(d.bulbs))
	copy(out, d.bulbs)
	return out
}
