package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newSessionWithServerInfo builds a logged-in session whose life2 backend
// serves the given server-info handler.
func newSessionWithServerInfo(t *testing.T, handler http.HandlerFunc) *Session {
	t.Helper()

	f := newFakeCloud(t)

	mux := http.NewServeMux()
	mux.HandleFunc(pathServerInfo, handler)
	life2 := httptest.NewServer(mux)
	t.Cleanup(life2.Close)

	cfg := f.sessionConfig()
	cfg.BaseURLs.Life2 = life2.URL

	sess := NewSession(cfg, defaultEndpoint())
	if _, err := sess.EnsureSession(context.Background()); err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	return sess
}

func TestResolveEndpoint(t *testing.T) {
	sess := newSessionWithServerInfo(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"inceptionAddr": "https://eu-mqtt.cloud.sengled.com:8443/mqtt",
		})
	})

	if err := sess.ResolveEndpoint(context.Background()); err != nil {
		t.Fatalf("ResolveEndpoint() error = %v", err)
	}

	ep := sess.Endpoint()
	if ep.Host != "eu-mqtt.cloud.sengled.com" {
		t.Errorf("Endpoint().Host = %q, want %q", ep.Host, "eu-mqtt.cloud.sengled.com")
	}
	if ep.Port != 8443 {
		t.Errorf("Endpoint().Port = %d, want 8443", ep.Port)
	}
	if ep.Path != "/mqtt" {
		t.Errorf("Endpoint().Path = %q, want %q", ep.Path, "/mqtt")
	}
}

func TestResolveEndpoint_DefaultPort(t *testing.T) {
	sess := newSessionWithServerInfo(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"inceptionAddr": "https://eu-mqtt.cloud.sengled.com/mqtt",
		})
	})

	if err := sess.ResolveEndpoint(context.Background()); err != nil {
		t.Fatalf("ResolveEndpoint() error = %v", err)
	}

	if ep := sess.Endpoint(); ep.Port != defaultRealtimePort {
		t.Errorf("Endpoint().Port = %d, want %d", ep.Port, defaultRealtimePort)
	}
}

func TestResolveEndpoint_FailureKeepsLastKnownGood(t *testing.T) {
	sess := newSessionWithServerInfo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	before := sess.Endpoint()

	err := sess.ResolveEndpoint(context.Background())
	if err == nil {
		t.Fatal("ResolveEndpoint() expected error for server failure")
	}

	if after := sess.Endpoint(); after != before {
		t.Errorf("Endpoint() changed after failed discovery: %+v -> %+v", before, after)
	}
}

func TestResolveEndpoint_MissingField(t *testing.T) {
	sess := newSessionWithServerInfo(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	})

	err := sess.ResolveEndpoint(context.Background())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("ResolveEndpoint() error = %v, want ErrMalformedResponse", err)
	}
}

func TestResolveEndpoint_RequiresSession(t *testing.T) {
	f := newFakeCloud(t)
	sess := NewSession(f.sessionConfig(), defaultEndpoint())

	err := sess.ResolveEndpoint(context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("ResolveEndpoint() error = %v, want ErrNoSession", err)
	}
}

func TestParseInceptionAddr(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    Endpoint
		wantErr bool
	}{
		{
			name: "host port and path",
			addr: "wss://mqtt.example.com:9443/mqtt",
			want: Endpoint{Host: "mqtt.example.com", Port: 9443, Path: "/mqtt"},
		},
		{
			name: "port defaults to 443",
			addr: "https://mqtt.example.com/mqtt",
			want: Endpoint{Host: "mqtt.example.com", Port: 443, Path: "/mqtt"},
		},
		{
			name:    "missing host",
			addr:    "/just/a/path",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInceptionAddr(tt.addr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseInceptionAddr(%q) expected error", tt.addr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInceptionAddr(%q) error = %v", tt.addr, err)
			}
			if got != tt.want {
				t.Errorf("parseInceptionAddr(%q) = %+v, want %+v", tt.addr, got, tt.want)
			}
		})
	}
}
