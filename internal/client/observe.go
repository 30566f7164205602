package client

import (
	"context"
	"strconv"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/bulb"
	"github.com/nerrad567/sengled-bridge/internal/history"
)

// recordTimeout bounds each history insert triggered from the realtime
// receive path.
const recordTimeout = 2 * time.Second

// HistorySink persists observed attribute changes.
// Satisfied by *history.SQLiteRepository.
type HistorySink interface {
	Record(ctx context.Context, deviceID, attribute, value, source string) error
}

// TelemetrySink receives numeric attribute changes.
// Satisfied by *influxdb.Client.
type TelemetrySink interface {
	WriteBulbMetric(deviceID string, attribute string, value float64)
	WriteBulbState(deviceID string, on bool)
}

// AttachHistory installs the attribute history sink. Passing nil
// disables recording.
func (c *Client) AttachHistory(sink HistorySink) {
	c.sinkMu.Lock()
	c.history = sink
	c.sinkMu.Unlock()
}

// AttachTelemetry installs the telemetry sink. Passing nil disables
// telemetry.
func (c *Client) AttachTelemetry(sink TelemetrySink) {
	c.sinkMu.Lock()
	c.telemetry = sink
	c.sinkMu.Unlock()
}

// SetObserver installs the host's observer for a bulb while keeping the
// client's history and telemetry recording in place.
//
// The bulb holds a single observer slot; registering directly on the
// bulb would silence the sinks, so hosts go through this method.
//
// Parameters:
//   - b: Bulb to observe
//   - observer: Host observer, or nil to only record
func (c *Client) SetObserver(b *bulb.Bulb, observer bulb.Observer) {
	c.observe(b, observer)
}

// observe wires the fan-out observer onto a bulb.
func (c *Client) observe(b *bulb.Bulb, next bulb.Observer) {
	b.SetObserver(bulb.ObserverFunc(func(b *bulb.Bulb, property string, value any) {
		c.record(b, property, value)
		if next != nil {
			next.AttributeChanged(b, property, value)
		}
	}))
}

// record forwards one attribute change to the attached sinks.
func (c *Client) record(b *bulb.Bulb, property string, value any) {
	c.sinkMu.RLock()
	historySink := c.history
	telemetrySink := c.telemetry
	c.sinkMu.RUnlock()

	if historySink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := historySink.Record(ctx, b.UUID(), property, encodeValue(value), history.SourceStatus); err != nil {
			c.logger.Warn("history record failed", "uuid", b.UUID(), "property", property, "error", err)
		}
		cancel()
	}

	if telemetrySink != nil {
		switch v := value.(type) {
		case int:
			telemetrySink.WriteBulbMetric(b.UUID(), property, float64(v))
		case bool:
			if property == bulb.PropSwitch {
				telemetrySink.WriteBulbState(b.UUID(), v)
			}
		}
	}
}

// encodeValue renders a decoded property value back into its wire
// encoding for the history trail.
func encodeValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}
