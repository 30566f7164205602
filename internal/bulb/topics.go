package bulb

import "fmt"

// topicPrefix is the product family prefix all Wi-Fi bulb topics share.
const topicPrefix = "wifielement"

// Topics provides builders for the per-device MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// Status returns the inbound status topic for a device.
//
// Example: wifielement/B0:CE:18:11:22:33/status
func (Topics) Status(deviceUUID string) string {
	return fmt.Sprintf("%s/%s/status", topicPrefix, deviceUUID)
}

// Update returns the outbound command topic for a device.
//
// Example: wifielement/B0:CE:18:11:22:33/update
func (Topics) Update(deviceUUID string) string {
	return fmt.Sprintf("%s/%s/update", topicPrefix, deviceUUID)
}
