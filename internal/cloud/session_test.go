package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/nerrad567/sengled-bridge/internal/infrastructure/config"
)

// fakeCloud is an httptest server standing in for both REST backends.
type fakeCloud struct {
	server *httptest.Server

	authCalls  atomic.Int64
	probeCalls atomic.Int64

	// Behaviour knobs
	authStatus int
	authToken  string
	probeInfo  string
}

func newFakeCloud(t *testing.T) *fakeCloud {
	t.Helper()

	f := &fakeCloud{
		authStatus: http.StatusOK,
		authToken:  "session-token-1",
		probeInfo:  "OK",
	}

	mux := http.NewServeMux()
	mux.HandleFunc(pathLogin, func(w http.ResponseWriter, r *http.Request) {
		f.authCalls.Add(1)
		if f.authStatus != http.StatusOK {
			w.WriteHeader(f.authStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"jsessionId": f.authToken})
	})
	mux.HandleFunc(pathSessionProbe, func(w http.ResponseWriter, r *http.Request) {
		f.probeCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"info": f.probeInfo})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCloud) sessionConfig() config.CloudConfig {
	return config.CloudConfig{
		Account: config.AccountConfig{
			Username: "user@example.com",
			Password: "hunter2",
		},
		BaseURLs: config.BaseURLConfig{
			UCenter: f.server.URL,
			Life2:   f.server.URL,
		},
		Timeout: 5,
	}
}

func defaultEndpoint() Endpoint {
	return Endpoint{Host: "us-mqtt.cloud.sengled.com", Port: 443, Path: "/mqtt"}
}

func TestEnsureSession_FirstLogin(t *testing.T) {
	f := newFakeCloud(t)
	sess := NewSession(f.sessionConfig(), defaultEndpoint())

	renewed, err := sess.EnsureSession(context.Background())
	if err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	if !renewed {
		t.Error("EnsureSession() renewed = false, want true on first login")
	}
	if sess.Token() != "session-token-1" {
		t.Errorf("Token() = %q, want %q", sess.Token(), "session-token-1")
	}
	if got := f.authCalls.Load(); got != 1 {
		t.Errorf("auth calls = %d, want 1", got)
	}
}

func TestEnsureSession_IdempotentWhileValid(t *testing.T) {
	f := newFakeCloud(t)
	sess := NewSession(f.sessionConfig(), defaultEndpoint())

	ctx := context.Background()
	if _, err := sess.EnsureSession(ctx); err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}

	// Second and third calls probe the existing token and must not
	// authenticate again.
	for i := 0; i < 2; i++ {
		renewed, err := sess.EnsureSession(ctx)
		if err != nil {
			t.Fatalf("EnsureSession() error = %v", err)
		}
		if renewed {
			t.Error("EnsureSession() renewed = true, want false for valid token")
		}
	}

	if got := f.authCalls.Load(); got != 1 {
		t.Errorf("auth calls = %d, want exactly 1", got)
	}
}

func TestEnsureSession_ExpiredTokenReauthenticates(t *testing.T) {
	f := newFakeCloud(t)
	sess := NewSession(f.sessionConfig(), defaultEndpoint())

	ctx := context.Background()
	if _, err := sess.EnsureSession(ctx); err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}

	// Server now reports the session as timed out.
	f.probeInfo = "EXPIRED"
	f.authToken = "session-token-2"

	renewed, err := sess.EnsureSession(ctx)
	if err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	if !renewed {
		t.Error("EnsureSession() renewed = false, want true after expiry")
	}
	if sess.Token() != "session-token-2" {
		t.Errorf("Token() = %q, want %q", sess.Token(), "session-token-2")
	}
	if got := f.authCalls.Load(); got != 2 {
		t.Errorf("auth calls = %d, want 2", got)
	}
}

func TestEnsureSession_AuthFailure(t *testing.T) {
	f := newFakeCloud(t)
	f.authStatus = http.StatusForbidden
	sess := NewSession(f.sessionConfig(), defaultEndpoint())

	_, err := sess.EnsureSession(context.Background())
	if err == nil {
		t.Fatal("EnsureSession() expected error for rejected credentials")
	}
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("EnsureSession() error = %v, want ErrAuthFailed", err)
	}
	if sess.HasSession() {
		t.Error("HasSession() = true after failed login, want false")
	}
}

func TestEnsureSession_EmptyToken(t *testing.T) {
	f := newFakeCloud(t)
	f.authToken = ""
	sess := NewSession(f.sessionConfig(), defaultEndpoint())

	_, err := sess.EnsureSession(context.Background())
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("EnsureSession() error = %v, want ErrAuthFailed", err)
	}
}

func TestNewInstanceID(t *testing.T) {
	id := newInstanceID()
	if len(id) != instanceIDLength {
		t.Errorf("newInstanceID() length = %d, want %d", len(id), instanceIDLength)
	}

	other := newInstanceID()
	if id == other {
		t.Error("newInstanceID() returned duplicate identifiers")
	}
}
