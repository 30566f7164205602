package client

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/sengled-bridge/internal/bulb"
	"github.com/nerrad567/sengled-bridge/internal/cloud"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
	"github.com/nerrad567/sengled-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/sengled-bridge/internal/realtime"
)

// sessionManager is the slice of the cloud session the client drives.
// Satisfied by *cloud.Session.
type sessionManager interface {
	EnsureSession(ctx context.Context) (renewed bool, err error)
	ResolveEndpoint(ctx context.Context) error
	Endpoint() cloud.Endpoint
	Token() string
}

// channel is the slice of the realtime channel the client drives.
// Satisfied by *realtime.Channel.
type channel interface {
	Connect(creds realtime.Credentials) error
	Reconnect(creds realtime.Credentials) error
	Disconnect()
	IsConnected() bool
	SetOnDisconnect(callback func(err error))
}

// directory is the slice of the bulb directory the client drives.
// Satisfied by *bulb.Directory.
type directory interface {
	List(ctx context.Context, force bool) ([]*bulb.Bulb, error)
	Get(uuid string) *bulb.Bulb
}

// PairHandler receives each newly discovered bulb during a pairing scan.
type PairHandler func(b *bulb.Bulb)

// Client orchestrates the cloud session, realtime channel, and bulb
// directory for a single account.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Login is serialized with
//     a mutex so concurrent triggers cannot race the channel through
//     overlapping reconnects.
type Client struct {
	cfg     *config.Config
	logger  *logging.Logger
	session sessionManager
	channel channel
	dir     directory

	// loginMu serializes the whole login flow.
	loginMu sync.Mutex

	// cancelPairing is checked between pairing iterations.
	cancelPairing atomic.Bool

	// paired tracks bulbs already handed to a pairing handler.
	paired   map[string]bool
	pairedMu sync.Mutex

	// history and telemetry are optional observation sinks.
	history   HistorySink
	telemetry TelemetrySink
	sinkMu    sync.RWMutex

	closed atomic.Bool
	done   chan struct{}

	// relogging guards the supervised re-login loop (one at a time).
	relogging atomic.Bool
}

// New creates a client wired to the real cloud and realtime stacks.
//
// The channel's disconnect callback is installed here; whether a
// disconnect triggers supervised re-login is controlled by
// cfg.Realtime.Reconnect.Enabled.
//
// Parameters:
//   - cfg: Validated configuration
//   - logger: Structured logger (nil falls back to the default logger)
//
// Returns:
//   - *Client: Client ready for Login and Pair
func New(cfg *config.Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}

	session := cloud.NewSession(cfg.Cloud, cloud.Endpoint{
		Host: cfg.Realtime.Endpoint.Host,
		Port: cfg.Realtime.Endpoint.Port,
		Path: cfg.Realtime.Endpoint.Path,
	})

	ch := realtime.NewChannel()
	ch.SetLogger(logger)

	dir := bulb.NewDirectory(session, ch, logger)

	c := newClient(cfg, logger, session, ch, dir)
	ch.SetOnDisconnect(c.handleDisconnect)
	return c
}

// newClient wires a client from pre-built collaborators.
func newClient(cfg *config.Config, logger *logging.Logger, session sessionManager, ch channel, dir directory) *Client {
	return &Client{
		cfg:     cfg,
		logger:  logger,
		session: session,
		channel: ch,
		dir:     dir,
		paired:  make(map[string]bool),
		done:    make(chan struct{}),
	}
}

// Login establishes or renews the cloud session and brings the realtime
// side in line with it.
//
// When the session token was renewed (or the channel is down), the flow
// continues: resolve the realtime endpoint (failure is non-fatal and
// keeps the previous endpoint), connect or reconnect the channel with
// the fresh token, and force refresh the directory so new devices get
// proxies on the live connection.
//
// A still-valid session with a connected channel is a no-op success.
//
// Parameters:
//   - ctx: Context for the REST calls
//
// Returns:
//   - error: Session, connection, or directory refresh failure
func (c *Client) Login(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	renewed, err := c.session.EnsureSession(ctx)
	if err != nil {
		return err
	}

	if !renewed && c.channel.IsConnected() {
		return nil
	}

	if err := c.session.ResolveEndpoint(ctx); err != nil {
		c.logger.Warn("endpoint resolution failed, keeping previous endpoint", "error", err)
	}

	endpoint := c.session.Endpoint()
	creds := realtime.Credentials{
		Host:      endpoint.Host,
		Port:      endpoint.Port,
		Path:      endpoint.Path,
		Token:     c.session.Token(),
		KeepAlive: c.cfg.GetKeepAlive(),
	}

	if c.channel.IsConnected() {
		err = c.channel.Reconnect(creds)
	} else {
		err = c.channel.Connect(creds)
	}
	if err != nil {
		return err
	}

	if _, err := c.dir.List(ctx, true); err != nil {
		return err
	}

	c.logger.Info("login complete", "endpoint", creds.BrokerURL())
	return nil
}

// Pair logs in, force refreshes the directory, and hands every bulb not
// seen by a previous scan to the handler.
//
// The scan is cooperatively cancellable: CancelPairing (or context
// cancellation) stops it between iterations, but an in-flight network
// call is not preempted.
//
// Parameters:
//   - ctx: Context for the login and refresh
//   - handler: Receives each newly discovered bulb
//
// Returns:
//   - error: Login/refresh failure, ErrPairingCancelled, or ctx.Err()
func (c *Client) Pair(ctx context.Context, handler PairHandler) error {
	c.cancelPairing.Store(false)

	if err := c.Login(ctx); err != nil {
		return err
	}

	bulbs, err := c.dir.List(ctx, false)
	if err != nil {
		return err
	}

	for _, b := range bulbs {
		if c.cancelPairing.Load() {
			return ErrPairingCancelled
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		c.pairedMu.Lock()
		seen := c.paired[b.UUID()]
		if !seen {
			c.paired[b.UUID()] = true
		}
		c.pairedMu.Unlock()
		if seen {
			continue
		}

		c.observe(b, nil)
		if handler != nil {
			handler(b)
		}
	}

	return nil
}

// CancelPairing requests that an in-progress pairing scan stop at the
// next iteration boundary. Safe to call from any goroutine.
func (c *Client) CancelPairing() {
	c.cancelPairing.Store(true)
}

// Get returns the proxy for a device UUID, or nil when unknown.
func (c *Client) Get(uuid string) *bulb.Bulb {
	return c.dir.Get(uuid)
}

// Close shuts the client down: the supervised re-login loop stops and
// the channel disconnects. The client cannot be reused afterwards.
func (c *Client) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	close(c.done)
	c.channel.Disconnect()
}
