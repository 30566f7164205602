package client

import (
	"context"
	"time"
)

// superviseLoginTimeout bounds one full login cycle (REST calls,
// channel connect, directory refresh) inside the re-login loop.
const superviseLoginTimeout = 60 * time.Second

// handleDisconnect is installed as the channel's disconnect callback.
//
// The broker drops connections when the session token expires, so a
// bare channel-level reconnect would be rejected anyway. Recovery goes
// through Login, which renews the token first. The loop is gated by
// configuration; with it disabled the disconnect is only logged and the
// host drives recovery by calling Login itself.
func (c *Client) handleDisconnect(err error) {
	c.logger.Warn("realtime channel lost", "error", err)

	if c.closed.Load() || !c.cfg.Realtime.Reconnect.Enabled {
		return
	}

	// One supervisor at a time; later disconnects fold into the running loop.
	if !c.relogging.CompareAndSwap(false, true) {
		return
	}

	go c.superviseRelogin()
}

// superviseRelogin retries Login with exponential backoff until it
// succeeds, the attempt budget runs out, or the client closes.
func (c *Client) superviseRelogin() {
	defer c.relogging.Store(false)

	policy := c.cfg.Realtime.Reconnect
	delay := time.Duration(policy.InitialDelay) * time.Second
	maxDelay := time.Duration(policy.MaxDelay) * time.Second
	if delay <= 0 {
		delay = time.Second
	}
	if maxDelay < delay {
		maxDelay = delay
	}

	for attempt := 1; ; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), superviseLoginTimeout)
		err := c.Login(ctx)
		cancel()
		if err == nil {
			c.logger.Info("re-login succeeded", "attempt", attempt)
			return
		}

		c.logger.Warn("re-login failed", "attempt", attempt, "next_delay", delay.String(), "error", err)

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			c.logger.Error("re-login attempts exhausted", "attempts", attempt)
			return
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
