package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLocate verifies coordinate extraction from a well-formed response.
func TestLocate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"ip": "203.0.113.7",
			"city": "Stockholm",
			"region": "Stockholm",
			"country": "SE",
			"loc": "59.3293,18.0686",
			"timezone": "Europe/Stockholm"
		}`))
	}))
	defer server.Close()

	coordinate, err := NewLocator(server.URL, time.Second).Locate(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 59.3293, coordinate.Lat, 1e-9)
	require.InDelta(t, 18.0686, coordinate.Lon, 1e-9)
}

// TestLocateBadStatus ensures non-2xx replies surface as errors.
func TestLocateBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewLocator(server.URL, time.Second).Locate(context.Background())
	require.ErrorIs(t, err, errBadHTTPStatus)
}

// TestLocateMalformedDocument ensures bad JSON and bad loc layouts are parse failures.
func TestLocateMalformedDocument(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"truncated json": `{"loc": "59.3`,
		"missing loc":    `{"ip": "203.0.113.7"}`,
		"one component":  `{"loc": "59.3293"}`,
		"non numeric":    `{"loc": "north,east"}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		_, err := NewLocator(server.URL, time.Second).Locate(context.Background())
		require.Error(t, err, name)

		server.Close()
	}
}
