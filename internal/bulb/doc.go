// Package bulb models Sengled Wi-Fi bulbs and the directory that owns them.
//
// Each physical bulb is represented by a Bulb proxy that:
//   - Owns an ordered attribute store seeded from the cloud device record
//   - Subscribes to its status topic (wifielement/<uuid>/status) on construction
//   - Decodes inbound attribute deltas and applies them to the store
//   - Publishes switch/brightness commands to wifielement/<uuid>/update
//   - Notifies a registered observer on every recognised change
//
// The Directory caches one proxy per device identifier for the lifetime
// of the process. Devices that disappear from the cloud's device list are
// deliberately retained; see Directory.List.
//
// Attribute values are string-encoded on the wire. Typed accessors decode
// on every access and return well-defined defaults for missing names:
// 0 for integers, false for booleans, "" for strings.
package bulb
