package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/daylight-sync/internal/config"
	domain "github.com/oshokin/daylight-sync/internal/domain/sun"
	"github.com/oshokin/daylight-sync/internal/logger"
)

// Locator resolves the caller's approximate coordinate from network context.
type Locator struct {
	// endpoint is the geolocation service URL.
	endpoint string
	// client performs HTTP requests with the configured timeout.
	client *http.Client
}

// response mirrors the schema of the ipinfo.io-style geolocation service.
// Only Loc feeds the core logic; the locale fields are logged for diagnostics.
type response struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`
}

// errBadHTTPStatus is returned when the geolocation service replies non-2xx.
var errBadHTTPStatus = errors.New("unexpected HTTP status")

// NewLocator creates a locator for the provided endpoint.
// Empty arguments fall back to the package defaults.
func NewLocator(endpoint string, timeout time.Duration) *Locator {
	if endpoint == "" {
		endpoint = config.DefaultGeolocationURL
	}

	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &Locator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Locate fetches the geolocation document and parses its "lat,lon" field.
func (l *Locator) Locate(ctx context.Context) (domain.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, http.NoBody)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("build geolocation request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("fetch geolocation: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, fmt.Errorf("%s, %s: %w", l.endpoint, resp.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("read geolocation response: %w", err)
	}

	var doc response
	if err = json.Unmarshal(data, &doc); err != nil {
		return domain.Coordinate{}, fmt.Errorf("decode geolocation response: %w", err)
	}

	coordinate, err := domain.ParseCoordinate(doc.Loc)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse geolocation position: %w", err)
	}

	logger.DebugKV(ctx, "Resolved position",
		"city", doc.City,
		"region", doc.Region,
		"country", doc.Country,
		"timezone", doc.Timezone)

	return coordinate, nil
}
