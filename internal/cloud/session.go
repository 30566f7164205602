package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
)

// REST endpoint paths, relative to their base URL.
const (
	// pathLogin exchanges credentials for a session token (ucenter).
	pathLogin = "/user/app/customer/v2/AuthenCross.json"

	// pathSessionProbe checks whether the current token is still valid (ucenter).
	pathSessionProbe = "/user/app/customer/isSessionTimeout.json"

	// pathServerInfo reports the realtime endpoint address (life2).
	pathServerInfo = "/life2/server/getServerInfo.json"

	// pathDeviceList returns the account's device records (life2).
	pathDeviceList = "/life2/device/list.json"
)

// Fixed platform identification fields the mobile app sends on every
// authentication call. The server rejects requests without them.
const (
	platformOSType      = "android"
	platformProductCode = "life"
	platformAppCode     = "life"
	platformRequestedBy = "com.sengled.life2"
)

// instanceIDLength is the number of hex characters in the per-process
// client instance identifier.
const instanceIDLength = 16

// Session owns the authenticated REST session against the Sengled cloud.
//
// It holds the account credentials, the per-process instance identifier,
// the current session token, and the resolved realtime endpoint.
//
// Thread Safety:
//   - All methods are safe for concurrent use. EnsureSession serialises
//     concurrent login attempts behind a single mutex so two callers can
//     never trigger duplicate authentications.
type Session struct {
	instanceID string
	username   string
	password   string

	ucenterURL string
	life2URL   string
	httpClient *http.Client

	mu       sync.Mutex
	token    string
	endpoint Endpoint
}

// Endpoint is the realtime channel address parsed from endpoint discovery.
type Endpoint struct {
	Host string
	Port int
	Path string
}

// NewSession creates a Session for the configured account.
//
// The instance identifier is generated once per process and reused for
// every REST call; the server uses it to correlate the "device" making
// the requests.
//
// Parameters:
//   - cfg: Cloud configuration (credentials, base URLs, timeout)
//   - endpoint: Initial realtime endpoint, used until discovery succeeds
//
// Returns:
//   - *Session: Session ready for EnsureSession
func NewSession(cfg config.CloudConfig, endpoint Endpoint) *Session {
	return &Session{
		instanceID: newInstanceID(),
		username:   cfg.Account.Username,
		password:   cfg.Account.Password,
		ucenterURL: strings.TrimRight(cfg.BaseURLs.UCenter, "/"),
		life2URL:   strings.TrimRight(cfg.BaseURLs.Life2, "/"),
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
		endpoint:   endpoint,
	}
}

// newInstanceID returns a 16-hex-character identifier, stable for the
// lifetime of the process.
func newInstanceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:instanceIDLength]
}

// EnsureSession makes sure a valid session token exists.
//
// If a token is present and the server probe confirms it, no
// authentication happens and renewed is false. Otherwise the stale token
// is cleared and credentials are posted to the login endpoint.
//
// On authentication failure the previous state is left untouched and the
// call is not retried internally; the caller decides whether to retry.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - renewed: true if a new token was obtained (callers must then
//     re-resolve the endpoint and reconnect the realtime channel)
//   - error: nil on success, ErrAuthFailed (wrapped) on login failure
func (s *Session) EnsureSession(ctx context.Context) (renewed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		if probeErr := s.probe(ctx); probeErr == nil {
			return false, nil
		}
		// Any probe failure means the token is invalid, for whatever reason.
		s.token = ""
	}

	token, err := s.authenticate(ctx)
	if err != nil {
		return false, err
	}

	s.token = token
	return true, nil
}

// probe asks the server whether the current token is still valid.
//
// Any transport error, bad status, malformed body, or an info field other
// than "OK" is treated as an expired session.
func (s *Session) probe(ctx context.Context) error {
	payload := map[string]string{
		"uuid":    s.instanceID,
		"os_type": platformOSType,
		"appCode": platformAppCode,
	}

	var resp struct {
		Info string `json:"info"`
	}
	if err := s.post(ctx, s.ucenterURL+pathSessionProbe, s.token, payload, &resp); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	if resp.Info != "OK" {
		return fmt.Errorf("%w: probe returned %q", ErrSessionExpired, resp.Info)
	}

	return nil
}

// authenticate posts credentials to the login endpoint and returns the
// new session token.
func (s *Session) authenticate(ctx context.Context) (string, error) {
	payload := map[string]string{
		"uuid":        s.instanceID,
		"user":        s.username,
		"pwd":         s.password,
		"osType":      platformOSType,
		"productCode": platformProductCode,
		"appCode":     platformAppCode,
	}

	var resp struct {
		JSessionID string `json:"jsessionId"`
	}
	if err := s.post(ctx, s.ucenterURL+pathLogin, "", payload, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	if resp.JSessionID == "" {
		return "", fmt.Errorf("%w: %w: empty jsessionId", ErrAuthFailed, ErrMalformedResponse)
	}

	return resp.JSessionID, nil
}

// Token returns the current session token, or "" if not logged in.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// HasSession reports whether a session token is currently held.
// It does not probe the server; the token may already have expired.
func (s *Session) HasSession() bool {
	return s.Token() != ""
}

// InstanceID returns the per-process client instance identifier.
func (s *Session) InstanceID() string {
	return s.instanceID
}

// post issues a JSON POST and decodes the JSON response into out.
//
// When token is non-empty the request carries the session cookie and the
// mobile app identification headers the server expects.
func (s *Session) post(ctx context.Context, url string, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Cookie", "JSESSIONID="+token)
		req.Header.Set("sid", token)
		req.Header.Set("X-Requested-With", platformRequestedBy)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return nil
}
