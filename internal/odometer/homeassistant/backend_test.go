package homeassistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"upkeep/internal/config"
	"upkeep/internal/odometer"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/states/car.odometer":
			fmt.Fprint(w, `{"entity_id": "car.odometer", "state": "54321.5"}`)
		case "/api/states/sensor.offline":
			fmt.Fprint(w, `{"entity_id": "sensor.offline", "state": "unavailable"}`)
		case "/api/states/sensor.door":
			fmt.Fprint(w, `{"entity_id": "sensor.door", "state": "open"}`)
		case "/api/states/sensor.broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testBackend(t *testing.T, baseURL string) *Backend {
	t.Helper()
	return New(config.HomeAssistantConfig{
		BaseURL: baseURL,
		Token:   "test-token",
		// High cap so tests never sit in the limiter
		RequestsPerMinute: 6000,
	})
}

func TestCurrentValue(t *testing.T) {
	srv := testServer(t)
	b := testBackend(t, srv.URL)

	v, err := b.CurrentValue(context.Background(), "car.odometer")
	if err != nil {
		t.Fatalf("CurrentValue: %v", err)
	}
	if v != 54321.5 {
		t.Fatalf("reading = %v, want 54321.5", v)
	}
}

func TestCurrentValueUnavailableStates(t *testing.T) {
	srv := testServer(t)
	b := testBackend(t, srv.URL)

	for _, entity := range []string{"sensor.offline", "sensor.door", "sensor.missing"} {
		_, err := b.CurrentValue(context.Background(), entity)
		if !errors.Is(err, odometer.ErrUnavailable) {
			t.Fatalf("%s error = %v, want ErrUnavailable", entity, err)
		}
	}
}

func TestCurrentValueServerError(t *testing.T) {
	srv := testServer(t)
	b := testBackend(t, srv.URL)

	_, err := b.CurrentValue(context.Background(), "sensor.broken")
	if err == nil {
		t.Fatal("no error for 500 response")
	}
	if errors.Is(err, odometer.ErrUnavailable) {
		t.Fatal("server failure reported as a normal unavailable state")
	}
}

func TestIsEnabled(t *testing.T) {
	if b := New(config.HomeAssistantConfig{}); b.IsEnabled() {
		t.Fatal("enabled without base url and token")
	}
	if b := New(config.HomeAssistantConfig{BaseURL: "http://ha.local:8123"}); b.IsEnabled() {
		t.Fatal("enabled without token")
	}
	if b := testBackend(t, "http://ha.local:8123"); !b.IsEnabled() {
		t.Fatal("not enabled with base url and token")
	}

	_, err := New(config.HomeAssistantConfig{}).CurrentValue(context.Background(), "car.odometer")
	if !errors.Is(err, odometer.ErrUnavailable) {
		t.Fatalf("unconfigured CurrentValue error = %v, want ErrUnavailable", err)
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		state string
		want  float64
		ok    bool
	}{
		{state: "54321.5", want: 54321.5, ok: true},
		{state: "0", want: 0, ok: true},
		{state: "unknown"},
		{state: "unavailable"},
		{state: ""},
		{state: "open"},
		{state: "NaN"},
		{state: "Inf"},
	}
	for _, tt := range tests {
		v, err := parseState("car.odometer", tt.state)
		if tt.ok {
			if err != nil {
				t.Fatalf("parseState(%q) error: %v", tt.state, err)
			}
			if v != tt.want {
				t.Fatalf("parseState(%q) = %v, want %v", tt.state, v, tt.want)
			}
			continue
		}
		if !errors.Is(err, odometer.ErrUnavailable) {
			t.Fatalf("parseState(%q) error = %v, want ErrUnavailable", tt.state, err)
		}
	}
}
