package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteBulbMetric writes a single numeric bulb measurement.
//
// This is the primary method for recording bulb telemetry. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Unique bulb identifier (the device UUID)
//   - attribute: The property name (e.g. "brightness", "rssi")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteBulbMetric("B0:CE:18:11:22:33", "brightness", 75)
//	client.WriteBulbMetric("B0:CE:18:11:22:33", "rssi", -52)
func (c *Client) WriteBulbMetric(deviceID string, attribute string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"bulb_metrics",
		map[string]string{
			"device_id": deviceID,
			"attribute": attribute,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBulbState writes a power state change as a 0/1 gauge.
//
// Keeping on/off transitions in their own measurement makes uptime and
// usage queries straightforward.
//
// Parameters:
//   - deviceID: Unique bulb identifier
//   - on: Power state after the change
func (c *Client) WriteBulbState(deviceID string, on bool) {
	if !c.IsConnected() {
		return
	}

	state := 0.0
	if on {
		state = 1.0
	}

	point := write.NewPoint(
		"bulb_state",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"on": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
