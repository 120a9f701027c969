package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electronjoe/exifmap/internal/photo"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Nominatim {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNominatim(Options{
		Endpoint:  srv.URL + "/reverse",
		UserAgent: "exifmap/test",
		Rate:      1000,
		Timeout:   5 * time.Second,
	})
}

func TestReverse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "exifmap/test", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		assert.Equal(t, "40.7128", q.Get("lat"))
		assert.Equal(t, "-74.006", q.Get("lon"))
		assert.Equal(t, "jsonv2", q.Get("format"))
		assert.Equal(t, "1", q.Get("addressdetails"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"display_name": "City Hall, Manhattan, New York, United States",
			"address": {"city": "New York", "state": "New York", "country": "United States"}
		}`))
	})

	place, err := client.Reverse(context.Background(), photo.Coordinate{Lat: 40.7128, Long: -74.006})
	require.NoError(t, err)
	assert.Equal(t, "City Hall, Manhattan, New York, United States", place.DisplayName)
	assert.Equal(t, "New York", place.Address.Locality())
	assert.Equal(t, "United States", place.Address.Country)
}

func TestReverseNothingFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Unable to geocode"}`))
	})

	_, err := client.Reverse(context.Background(), photo.Coordinate{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Contains(t, err.Error(), "Unable to geocode")
}

func TestReverseStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusForbidden, KindRateLimit},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindInvalidRequest},
		{http.StatusBadGateway, KindUnavailable},
		{http.StatusTeapot, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.Reverse(context.Background(), photo.Coordinate{Lat: 1, Long: 2})
			var geoErr *Error
			require.ErrorAs(t, err, &geoErr)
			assert.Equal(t, tt.kind, geoErr.Kind)
			assert.Equal(t, tt.status, geoErr.Status)
		})
	}
}

func TestReverseMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	_, err := client.Reverse(context.Background(), photo.Coordinate{Lat: 1, Long: 2})
	assert.True(t, IsKind(err, KindUnknown))
}

func TestReverseNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client := NewNominatim(Options{Endpoint: endpoint, Rate: 1000, Timeout: time.Second})
	_, err := client.Reverse(context.Background(), photo.Coordinate{Lat: 1, Long: 2})
	assert.True(t, IsKind(err, KindNetwork))
}

func TestReverseCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Reverse(ctx, photo.Coordinate{Lat: 1, Long: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPlaceName(t *testing.T) {
	assert.Equal(t, "Zion National Park, Utah", Place{DisplayName: "Zion National Park, Utah", Address: Address{State: "Utah"}}.Name())
	assert.Equal(t, "Springdale", Place{Address: Address{Town: "Springdale"}}.Name())
	assert.Empty(t, Place{}.Name())
}

func TestLocality(t *testing.T) {
	assert.Equal(t, "Springdale", Address{Town: "Springdale", State: "Utah"}.Locality())
	assert.Equal(t, "Utah", Address{State: "Utah"}.Locality())
	assert.Empty(t, Address{Country: "Nowhere"}.Locality())
}
