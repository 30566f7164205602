package realtime

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for a connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout bounds the wait for publish/subscribe
	// acknowledgement. Expiry is reported as a failure, never an
	// indefinite block.
	defaultPublishTimeout = 5 * time.Second

	// defaultKeepAlive matches the interval the Sengled mobile app uses.
	defaultKeepAlive = 30 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations
	// on disconnect (milliseconds, per the paho API).
	defaultDisconnectQuiesce = 1000

	// channelQoS is used for all publishes and subscriptions. At-least-once
	// gives a broker acknowledgement, which Publish blocks on.
	channelQoS = 1

	// tlsMinVersion is the minimum TLS version for the websocket transport.
	tlsMinVersion = tls.VersionTLS12
)

// Credentials carries everything needed to (re)establish the channel:
// the realtime endpoint and the session token that authenticates the
// connection itself.
type Credentials struct {
	Host  string
	Port  int
	Path  string
	Token string

	// KeepAlive overrides the default keepalive interval when positive.
	KeepAlive time.Duration
}

// BrokerURL returns the websocket broker URL for these credentials.
func (c Credentials) BrokerURL() string {
	return fmt.Sprintf("wss://%s:%d%s", c.Host, c.Port, c.Path)
}

// clientID returns the MQTT client identifier derived from the token.
// The cloud broker expects the "<token>@lifeApp" form.
func (c Credentials) clientID() string {
	return c.Token + "@lifeApp"
}

// buildClientOptions creates paho MQTT options for a websocket connection
// authenticated by the session token.
//
// The token is a connection-time credential: it appears in the client ID
// and in the websocket upgrade headers, not on individual messages.
// Auto-reconnect stays off - reconnection is driven by login, because a
// reconnect without a fresh token would be rejected anyway.
func buildClientOptions(creds Credentials) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(creds.BrokerURL())
	opts.SetClientID(creds.clientID())

	headers := http.Header{}
	headers.Set("Cookie", "JSESSIONID="+creds.Token)
	headers.Set("X-Requested-With", "com.sengled.life2")
	opts.SetHTTPHeaders(headers)

	opts.SetTLSConfig(&tls.Config{
		MinVersion: tlsMinVersion,
	})

	keepAlive := defaultKeepAlive
	if creds.KeepAlive > 0 {
		keepAlive = creds.KeepAlive
	}
	opts.SetKeepAlive(keepAlive)

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(defaultConnectTimeout)

	return opts
}
