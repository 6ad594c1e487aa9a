package solar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/daylight-sync/internal/config"
	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	"github.com/oshokin/daylight-sync/internal/logger"
)

// clockLayout is the 12-hour time-of-day format reported by the solar service.
const clockLayout = "3:04:05 PM"

// statusOK is the only acceptable status value in the solar service response.
const statusOK = "OK"

var (
	// errBadHTTPStatus is returned when the solar service replies non-2xx.
	errBadHTTPStatus = errors.New("unexpected HTTP status")
	// errBadRemoteStatus is returned when the response status field is not OK.
	errBadRemoteStatus = errors.New("solar service reported failure")
)

// Resolver classifies the current moment as day or night for a coordinate
// using a sunrise-sunset.org-style HTTP endpoint.
type Resolver struct {
	// endpoint is the solar event service URL.
	endpoint string
	// client performs HTTP requests with the configured timeout.
	client *http.Client
	// now supplies the reference instant, overridable for tests.
	now func() time.Time
}

// Option configures resolver behaviour.
type Option func(*Resolver)

// WithNow overrides the reference clock used for classification.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// response mirrors the solar service schema. The service also reports solar
// noon and twilight bounds; only sunrise and sunset are consumed.
type response struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// NewResolver creates a resolver for the provided endpoint.
// Empty arguments fall back to the package defaults.
func NewResolver(endpoint string, timeout time.Duration, opts ...Option) *Resolver {
	if endpoint == "" {
		endpoint = config.DefaultSolarURL
	}

	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	resolver := &Resolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(resolver)
	}

	return resolver
}

// Resolve fetches today's solar events for the coordinate and classifies
// the current moment as Up or Down.
func (r *Resolver) Resolve(ctx context.Context, coordinate domain.Coordinate) (domain.State, error) {
	doc, err := r.fetch(ctx, coordinate)
	if err != nil {
		return domain.Up, err
	}

	now := r.now()

	sunrise, err := toLocalInstant(doc.Results.Sunrise, now)
	if err != nil {
		return domain.Up, fmt.Errorf("parse sunrise: %w", err)
	}

	sunset, err := toLocalInstant(doc.Results.Sunset, now)
	if err != nil {
		return domain.Up, fmt.Errorf("parse sunset: %w", err)
	}

	state := Classify(now, sunrise, sunset)

	logger.DebugKV(ctx, "Classified solar state",
		"sunrise", sunrise.Format(time.RFC3339),
		"sunset", sunset.Format(time.RFC3339),
		"now", now.Format(time.RFC3339),
		"state", state.String())

	return state, nil
}

// Classify returns Up when now falls inside the half-open interval
// [sunrise, sunset) and Down otherwise.
func Classify(now, sunrise, sunset time.Time) domain.State {
	if !now.Before(sunrise) && now.Before(sunset) {
		return domain.Up
	}

	return domain.Down
}

// fetch requests solar events for the coordinate and validates the envelope.
func (r *Resolver) fetch(ctx context.Context, coordinate domain.Coordinate) (*response, error) {
	endpoint, err := url.Parse(r.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse solar endpoint: %w", err)
	}

	query := endpoint.Query()
	query.Set("lat", strconv.FormatFloat(coordinate.Lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(coordinate.Lon, 'f', -1, 64))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build solar request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch solar events: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", endpoint, resp.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read solar response: %w", err)
	}

	var doc response
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode solar response: %w", err)
	}

	if doc.Status != statusOK {
		return nil, fmt.Errorf("status %q: %w", doc.Status, errBadRemoteStatus)
	}

	return &doc, nil
}

// toLocalInstant parses a 12-hour clock string and anchors it to the
// reference instant's calendar date. The wall-clock time is interpreted as
// UTC first and then converted to the reference zone; this mirrors how the
// upstream service reports times and must not be "fixed" to a naive local
// interpretation.
func toLocalInstant(clock string, reference time.Time) (time.Time, error) {
	parsed, err := time.Parse(clockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("time of day %q: %w", clock, err)
	}

	year, month, day := reference.Date()
	instant := time.Date(year, month, day,
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)

	return instant.In(reference.Location()), nil
}
