package realtime

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// State describes the channel's connection state.
type State int

// Channel states. Transitions are Disconnected -> Connecting -> Connected
// and back; no other transitions exist.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns a human-readable state name for logging.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Handler is the callback signature for received messages.
//
// Handlers are invoked on the channel's receive goroutines and should not
// block for extended periods. A returned error is logged and otherwise
// ignored; it does not affect message acknowledgement.
type Handler func(topic string, payload []byte) error

// Logger is the logging interface used by the channel.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Channel manages the MQTT-over-websocket connection to the Sengled cloud.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - State transitions hold a single mutex for their full duration, so a
//     partially reconnected channel is never externally observable.
type Channel struct {
	// mu guards state, client and creds across whole transitions.
	mu     sync.Mutex
	state  State
	client pahomqtt.Client
	creds  Credentials

	// newClient builds the paho client for a dial. Replaceable in tests;
	// defaults to pahomqtt.NewClient.
	newClient func(opts *pahomqtt.ClientOptions) pahomqtt.Client

	// subs maps exact topic strings to their single handler. It survives
	// reconnects and is replayed against every new connection.
	subs  map[string]Handler
	subMu sync.RWMutex

	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// NewChannel creates a disconnected channel.
func NewChannel() *Channel {
	return &Channel{
		subs:      make(map[string]Handler),
		newClient: pahomqtt.NewClient,
	}
}

// Connect opens the websocket stream and starts the receive loop.
//
// Valid only from the Disconnected state and only with a session token;
// the token authenticates the connection itself (client ID and upgrade
// cookie), not individual messages.
//
// Parameters:
//   - creds: Endpoint address and session token
//
// Returns:
//   - error: ErrAlreadyConnected, ErrMissingToken, or ErrConnectionFailed
func (c *Channel) Connect(creds Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisconnected {
		return ErrAlreadyConnected
	}
	if creds.Token == "" {
		return ErrMissingToken
	}

	c.state = StateConnecting
	client, err := c.dial(creds)
	if err != nil {
		c.state = StateDisconnected
		return err
	}

	c.client = client
	c.creds = creds
	c.state = StateConnected
	return nil
}

// Reconnect tears down the current stream and re-establishes it with the
// latest endpoint and token, then replays the subscription registry.
//
// Valid only from the Connected state. Each registered topic is
// re-subscribed exactly once, in arbitrary order; order is irrelevant
// because topics are disjoint. The mutex is held for the whole
// transition, so callers never observe a half-reconnected channel.
//
// Parameters:
//   - creds: Fresh endpoint address and session token
//
// Returns:
//   - error: ErrNotConnected, ErrMissingToken, or ErrConnectionFailed
func (c *Channel) Reconnect(creds Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected {
		return ErrNotConnected
	}
	if creds.Token == "" {
		return ErrMissingToken
	}

	c.state = StateConnecting
	c.client.Disconnect(defaultDisconnectQuiesce)

	client, err := c.dial(creds)
	if err != nil {
		c.state = StateDisconnected
		return err
	}

	c.client = client
	c.creds = creds

	// Replay the registry against the fresh connection. Failures are
	// logged, not fatal: a topic that cannot be re-subscribed is in the
	// same position as any other transient delivery gap.
	for topic := range c.snapshotSubscriptions() {
		token := client.Subscribe(topic, channelQoS, c.route)
		if !token.WaitTimeout(defaultPublishTimeout) || token.Error() != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("re-subscribe failed after reconnect",
					"topic", topic,
					"error", token.Error(),
				)
			}
		}
	}

	c.state = StateConnected
	return nil
}

// dial creates and connects a new paho client. Caller holds c.mu.
func (c *Channel) dial(creds Credentials) (pahomqtt.Client, error) {
	opts := buildClientOptions(creds)
	opts.SetDefaultPublishHandler(c.route)
	opts.SetConnectionLostHandler(func(lost pahomqtt.Client, err error) {
		c.handleConnectionLost(lost, err)
	})

	client := c.newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return client, nil
}

// handleConnectionLost marks the channel disconnected and notifies the
// registered callback.
//
// The event is ignored unless it came from the channel's current client:
// when an old connection drops concurrently with Reconnect, its
// lost-callback can acquire the mutex only after Reconnect has installed
// the replacement, and the fresh connection must not be stamped
// disconnected by it.
//
// The registry is deliberately left intact; the next Connect plus
// explicit re-subscription (or Reconnect) restores it.
func (c *Channel) handleConnectionLost(lost pahomqtt.Client, err error) {
	c.mu.Lock()
	if c.client != lost {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// Disconnect closes the stream. Registered subscriptions are kept so a
// later Connect can restore them.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnected && c.client != nil {
		c.client.Disconnect(defaultDisconnectQuiesce)
	}
	c.state = StateDisconnected
}

// Publish sends a message and blocks until the broker acknowledges
// delivery, the bounded wait expires, or a delivery error occurs.
//
// Parameters:
//   - topic: Topic to publish to
//   - payload: Message payload (JSON for all Sengled topics)
//
// Returns:
//   - error: ErrNotConnected before connect; ErrPublishFailed (wrapped)
//     on timeout or broker rejection. Ordinary delivery failure never
//     panics.
func (c *Channel) Publish(topic string, payload []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	client, ok := c.connectedClient()
	if !ok {
		return ErrNotConnected
	}

	token := client.Publish(topic, channelQoS, false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// Subscribe registers a handler for a topic and issues the subscribe
// request. At most one handler exists per topic; the registry entry is
// what survives reconnects.
//
// Parameters:
//   - topic: Exact topic string (the Sengled cloud uses no wildcards)
//   - handler: Callback invoked for each message on the topic
//
// Returns:
//   - error: ErrNotConnected before connect; ErrSubscribeFailed (wrapped)
//     when the broker rejects the request, in which case no registry
//     entry is kept.
func (c *Channel) Subscribe(topic string, handler Handler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	client, ok := c.connectedClient()
	if !ok {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subs[topic] = handler
	c.subMu.Unlock()

	token := client.Subscribe(topic, channelQoS, c.route)
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.removeSubscription(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.removeSubscription(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe removes the registry entry for a topic.
//
// No unsubscribe request is sent to the server; messages that keep
// arriving are dropped by the dispatcher. This mirrors the mobile app's
// behaviour and keeps Unsubscribe valid in every channel state.
func (c *Channel) Unsubscribe(topic string) {
	c.removeSubscription(topic)
}

func (c *Channel) removeSubscription(topic string) {
	c.subMu.Lock()
	delete(c.subs, topic)
	c.subMu.Unlock()
}

// snapshotSubscriptions returns a copy of the registry for replay.
func (c *Channel) snapshotSubscriptions() map[string]Handler {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	snapshot := make(map[string]Handler, len(c.subs))
	for topic, handler := range c.subs {
		snapshot[topic] = handler
	}
	return snapshot
}

// SubscriptionCount returns the number of registered topics.
func (c *Channel) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subs)
}

// HasSubscription reports whether a handler is registered for the topic.
func (c *Channel) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subs[topic]
	return exists
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the channel is in the Connected state.
func (c *Channel) IsConnected() bool {
	return c.State() == StateConnected
}

// connectedClient returns the paho client if the channel is connected.
func (c *Channel) connectedClient() (pahomqtt.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected || c.client == nil {
		return nil, false
	}
	return c.client, true
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
// The error parameter describes why. The callback runs on a paho
// goroutine and must not call back into the channel synchronously.
func (c *Channel) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for handler errors and panics.
// If not set, handler errors are silently ignored.
func (c *Channel) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Channel) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// route is the single inbound entry point for all received messages.
func (c *Channel) route(_ pahomqtt.Client, msg pahomqtt.Message) {
	c.dispatch(msg.Topic(), msg.Payload())
}

// dispatch looks the topic up in the registry and invokes its handler
// with panic recovery. Unmatched topics are silently dropped.
func (c *Channel) dispatch(topic string, payload []byte) {
	c.subMu.RLock()
	handler, ok := c.subs[topic]
	c.subMu.RUnlock()
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Error("message handler panic recovered",
					"topic", topic,
					"panic", r,
				)
			}
		}
	}()

	if err := handler(topic, payload); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("message handler returned error",
				"topic", topic,
				"error", err,
			)
		}
	}
}
