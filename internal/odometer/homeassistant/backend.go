package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"upkeep/internal/config"
	"upkeep/internal/odometer"
)

// stateResponse is the slice of the states payload this backend reads
type stateResponse struct {
	EntityID string `json:"entity_id"`
	State    string `json:"state"`
}

// Backend implements the odometer.Backend interface against the REST
// API of a Home Assistant instance, reading entity states such as a car
// integration's odometer sensor
type Backend struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a new Home Assistant backend
func New(cfg config.HomeAssistantConfig) *Backend {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	return &Backend{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// Name returns the backend identifier
func (b *Backend) Name() string {
	return "homeassistant"
}

// IsEnabled returns whether a Home Assistant instance is configured
func (b *Backend) IsEnabled() bool {
	return b.baseURL != "" && b.token != ""
}

// CurrentValue fetches the current state of an entity and converts it
// to a reading
func (b *Backend) CurrentValue(ctx context.Context, sourceID string) (float64, error) {
	if !b.IsEnabled() {
		return 0, fmt.Errorf("%w: home assistant not configured", odometer.ErrUnavailable)
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/states/%s", b.baseURL, url.PathEscape(sourceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("building state request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.token)

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching state of %s: %w", sourceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("%w: entity %s not found", odometer.ErrUnavailable, sourceID)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching state of %s: unexpected status %s", sourceID, resp.Status)
	}

	var state stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return 0, fmt.Errorf("decoding state of %s: %w", sourceID, err)
	}

	return parseState(sourceID, state.State)
}

// parseState converts an entity state into a reading. Home Assistant
// reports offline entities as the literal strings "unknown" or
// "unavailable"; both count as no reading, as does any non-numeric
// state.
func parseState(sourceID, state string) (float64, error) {
	switch state {
	case "", "unknown", "unavailable":
		return 0, fmt.Errorf("%w: %s reports %q", odometer.ErrUnavailable, sourceID, state)
	}

	v, err := strconv.ParseFloat(state, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s state %q is not a finite number", odometer.ErrUnavailable, sourceID, state)
	}
	return v, nil
}

// Register the Home Assistant backend
func init() {
	odometer.Register("homeassistant", func(cfg config.OdometerConfig) odometer.Backend {
		return New(cfg.HomeAssistant)
	})
}
