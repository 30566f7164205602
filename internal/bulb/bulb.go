package bulb

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/sengled-bridge/internal/cloud"
	"github.com/nerrad567/sengled-bridge/internal/realtime"
)

// Command types accepted on the update topic.
const (
	commandSwitch     = "switch"
	commandBrightness = "brightness"
)

// Brightness bounds; out-of-range levels are clamped, never rejected.
const (
	minBrightness = 0
	maxBrightness = 100
)

// Channel is the realtime transport a bulb needs: publish commands and
// subscribe its status topic. Satisfied by *realtime.Channel.
type Channel interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler realtime.Handler) error
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Observer receives change notifications for a bulb.
//
// AttributeChanged is invoked on the channel's receive goroutine for
// every recognised inbound delta, with the normalised property name and
// that property's current decoded value.
type Observer interface {
	AttributeChanged(b *Bulb, property string, value any)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(b *Bulb, property string, value any)

// AttributeChanged calls f.
func (f ObserverFunc) AttributeChanged(b *Bulb, property string, value any) {
	f(b, property, value)
}

// Bulb is the in-process proxy for one physical bulb.
//
// Construction subscribes the bulb's status topic; inbound deltas flow
// into the attribute store and out to the registered observer. Commands
// publish to the bulb's update topic and report the channel's result.
type Bulb struct {
	channel Channel
	logger  Logger

	uuid     string
	category string
	typeCode string
	attrs    *AttributeStore

	observer   Observer
	observerMu sync.RWMutex
}

// statusEntry is one element of the inbound status payload.
type statusEntry struct {
	DN    string `json:"dn"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// command is the outbound payload on the update topic.
type command struct {
	DN    string `json:"dn"`
	Type  string `json:"type"`
	Value string `json:"value"`
	Time  int64  `json:"time"`
}

// New creates a bulb proxy from a cloud device record and subscribes its
// status topic.
//
// A failed subscribe is logged and does not fail construction: the proxy
// can still issue commands, and the next login-driven directory refresh
// happens on a freshly connected channel.
//
// Parameters:
//   - channel: Realtime transport (must usually be connected)
//   - logger: Logger for subscribe failures and dropped payloads
//   - info: Device record from the cloud directory
//
// Returns:
//   - *Bulb: Proxy ready for commands and inbound deltas
func New(channel Channel, logger Logger, info cloud.DeviceInfo) *Bulb {
	if logger == nil {
		logger = noopLogger{}
	}

	b := &Bulb{
		channel:  channel,
		logger:   logger,
		uuid:     info.DeviceUUID,
		category: info.Category,
		typeCode: info.TypeCode,
		attrs:    NewAttributeStore(info.AttributeList),
	}

	topic := Topics{}.Status(b.uuid)
	if err := channel.Subscribe(topic, b.handleStatus); err != nil {
		logger.Warn("status subscribe failed", "uuid", b.uuid, "error", err)
	}

	return b
}

// SetObserver registers the observer notified on attribute changes.
// Passing nil clears it. At most one observer is held per bulb.
func (b *Bulb) SetObserver(observer Observer) {
	b.observerMu.Lock()
	b.observer = observer
	b.observerMu.Unlock()
}

// Toggle switches the bulb on or off.
//
// Parameters:
//   - on: Desired power state
//
// Returns:
//   - error: The channel's publish result; nil means the broker
//     acknowledged the command.
func (b *Bulb) Toggle(on bool) error {
	value := "0"
	if on {
		value = "1"
	}
	return b.publishCommand(commandSwitch, value)
}

// SetBrightness sets the brightness level, clamped to [0, 100].
//
// Parameters:
//   - level: Desired brightness percentage
//
// Returns:
//   - error: The channel's publish result
func (b *Bulb) SetBrightness(level int) error {
	if level < minBrightness {
		level = minBrightness
	}
	if level > maxBrightness {
		level = maxBrightness
	}
	return b.publishCommand(commandBrightness, strconv.Itoa(level))
}

// publishCommand publishes a command object to the bulb's update topic.
func (b *Bulb) publishCommand(commandType, value string) error {
	payload, err := json.Marshal(command{
		DN:    b.uuid,
		Type:  commandType,
		Value: value,
		Time:  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	return b.channel.Publish(Topics{}.Update(b.uuid), payload)
}

// handleStatus applies an inbound status payload to the attribute store.
//
// The payload is a JSON array of {dn, type, value} entries. Malformed
// payloads are dropped silently; entries for other devices or unknown
// attribute names are ignored without error. Each applied entry notifies
// the observer, provided the bulb exposes the normalised property.
func (b *Bulb) handleStatus(_ string, payload []byte) error {
	var entries []statusEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		b.logger.Debug("dropping malformed status payload", "uuid", b.uuid)
		return nil
	}

	for _, e := range entries {
		if e.Type == "" || e.DN == "" {
			continue
		}
		if e.DN != b.uuid {
			continue
		}
		if !b.attrs.Apply(e.Type, e.Value) {
			continue
		}
		b.notifyObserver(e.Type)
	}

	return nil
}

// notifyObserver translates the wire attribute name and notifies the
// observer with the property's current decoded value. Properties without
// a typed accessor never reach the observer.
func (b *Bulb) notifyObserver(attr string) {
	b.observerMu.RLock()
	observer := b.observer
	b.observerMu.RUnlock()
	if observer == nil {
		return
	}

	property := propertyName(attr)
	value, ok := b.propertyValue(property)
	if !ok {
		return
	}

	observer.AttributeChanged(b, property, value)
}

// UUID returns the device's globally unique identifier.
func (b *Bulb) UUID() string {
	return b.uuid
}

// Category returns the device category tag, e.g. "wifielement".
func (b *Bulb) Category() string {
	return b.category
}

// Attributes returns the bulb's attribute store.
func (b *Bulb) Attributes() *AttributeStore {
	return b.attrs
}

// Switch reports whether the bulb is switched on.
func (b *Bulb) Switch() bool {
	return b.attrs.Bool(attrSwitch)
}

// Brightness returns the brightness level (0-100).
func (b *Bulb) Brightness() int {
	return b.attrs.Int(attrBrightness)
}

// ConsumptionTime returns the accumulated consumption time.
func (b *Bulb) ConsumptionTime() int {
	return b.attrs.Int(attrConsumptionTime)
}

// RSSI returns the Wi-Fi signal strength.
func (b *Bulb) RSSI() int {
	return b.attrs.Int(attrDeviceRSSI)
}

// IdentifyNo returns the device identify number.
func (b *Bulb) IdentifyNo() string {
	return b.attrs.String(attrIdentifyNo)
}

// IP returns the bulb's LAN IP address as reported by the cloud.
func (b *Bulb) IP() string {
	return b.attrs.String(attrIP)
}

// Name returns the user-assigned bulb name.
func (b *Bulb) Name() string {
	return b.attrs.String(attrName)
}

// Online reports whether the bulb is currently reachable by the cloud.
func (b *Bulb) Online() bool {
	return b.attrs.Bool(attrOnline)
}

// ProductCode returns the product code, e.g. "wifielement".
func (b *Bulb) ProductCode() string {
	return b.attrs.String(attrProductCode)
}

// SaveFlag returns the save flag state.
func (b *Bulb) SaveFlag() bool {
	return b.attrs.Bool(attrSaveFlag)
}

// StartTime returns when the bulb last joined the network.
func (b *Bulb) StartTime() string {
	return b.attrs.String(attrStartTime)
}

// SupportAttributes returns the supported attribute list string.
func (b *Bulb) SupportAttributes() string {
	return b.attrs.String(attrSupportAttributes)
}

// TimeZone returns the bulb's configured time zone.
func (b *Bulb) TimeZone() string {
	return b.attrs.String(attrTimeZone)
}

// TypeCode returns the device type code, e.g. "wifia19-L".
// Falls back to the directory record when the attribute is absent.
func (b *Bulb) TypeCode() string {
	if v, ok := b.attrs.Lookup(attrTypeCode); ok {
		return v
	}
	return b.typeCode
}

// Version returns the firmware version.
func (b *Bulb) Version() string {
	return b.attrs.String(attrVersion)
}
