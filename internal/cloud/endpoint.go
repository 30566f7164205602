package cloud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// defaultRealtimePort is assumed when the inception address omits a port.
// The realtime channel always runs over a TLS websocket.
const defaultRealtimePort = 443

// ResolveEndpoint asks the cloud for the current realtime endpoint and
// stores it on the session.
//
// The server reports an "inception address" URI from which host, port and
// path are parsed; a missing port defaults to 443. On any failure the
// previously configured endpoint is left untouched - an already-connected
// channel keeps using the last known-good address, so resolver failure is
// never fatal.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - error: ErrNoSession if not logged in, otherwise the discovery failure
func (s *Session) ResolveEndpoint(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return ErrNoSession
	}

	var resp struct {
		InceptionAddr string `json:"inceptionAddr"`
	}
	if err := s.post(ctx, s.life2URL+pathServerInfo, token, map[string]string{}, &resp); err != nil {
		return err
	}

	if resp.InceptionAddr == "" {
		return fmt.Errorf("%w: missing inceptionAddr", ErrMalformedResponse)
	}

	endpoint, err := parseInceptionAddr(resp.InceptionAddr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.endpoint = endpoint
	s.mu.Unlock()

	return nil
}

// Endpoint returns the current realtime endpoint. Before the first
// successful discovery this is the configured default.
func (s *Session) Endpoint() Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// parseInceptionAddr splits an inception address URI into host, port and path.
func parseInceptionAddr(addr string) (Endpoint, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: parsing inceptionAddr: %w", ErrMalformedResponse, err)
	}

	host := u.Hostname()
	if host == "" {
		return Endpoint{}, fmt.Errorf("%w: inceptionAddr %q has no host", ErrMalformedResponse, addr)
	}

	port := defaultRealtimePort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Endpoint{}, fmt.Errorf("%w: inceptionAddr port %q: %w", ErrMalformedResponse, p, err)
		}
	}

	return Endpoint{
		Host: host,
		Port: port,
		Path: u.Path,
	}, nil
}
