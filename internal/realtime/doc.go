// Package realtime manages the persistent MQTT channel to the Sengled cloud.
//
// This package provides:
//   - MQTT over TLS websockets via eclipse/paho.mqtt.golang
//   - An explicit Disconnected/Connecting/Connected state machine
//   - Publish with broker acknowledgement and bounded wait
//   - A subscription registry replayed verbatim on reconnect
//   - Inbound dispatch by exact topic match with panic recovery
//
// # Architecture
//
// The channel authenticates with the session token at connection time:
// the MQTT client ID is "<token>@lifeApp" and the websocket upgrade
// carries the token as a JSESSIONID cookie. Tokens expire, so the channel
// never reconnects on its own - a fresh login produces a fresh token and
// explicitly drives Connect or Reconnect. The client layer may wrap this
// in a supervised retry loop; the channel itself stays passive.
//
// Subscriptions are channel-scoped, not connection-scoped: the registry
// is the source of truth, and Reconnect replays every entry against the
// new connection before the transition completes. Unsubscribe only
// removes the registry entry; subsequent messages on that topic are
// dropped by the dispatcher without a server round-trip.
package realtime
