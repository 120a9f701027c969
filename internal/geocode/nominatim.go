// Package geocode resolves photo coordinates into human readable places
// using a Nominatim compatible reverse geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/electronjoe/exifmap/internal/photo"
)

// Address holds the parts of a Nominatim address we surface.
type Address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	County  string `json:"county"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Locality returns the most specific populated place name.
func (a Address) Locality() string {
	for _, s := range []string{a.City, a.Town, a.Village, a.County, a.State} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Place is a reverse geocoding result.
type Place struct {
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
	// Error is set by Nominatim, with a 200 status, when nothing is found.
	Error string `json:"error"`
}

// Name is the display name, or the locality when the service sent none.
func (p Place) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Address.Locality()
}

// Options configures a Nominatim client.
type Options struct {
	Endpoint  string
	UserAgent string
	// Rate is the maximum number of requests per second.
	Rate    float64
	Timeout time.Duration
	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper
}

// Nominatim is a rate limited reverse geocoding client.
type Nominatim struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatim creates a client for opts.Endpoint.
func NewNominatim(opts Options) *Nominatim {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Nominatim{
		endpoint: opts.Endpoint,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &userAgentRoundTripper{
				Transport: transport,
				UserAgent: opts.UserAgent,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(opts.Rate), 1),
	}
}

// Reverse looks up the place at c, waiting for the rate limiter first.
func (n *Nominatim) Reverse(ctx context.Context, c photo.Coordinate) (*Place, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode: waiting for rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.Long, 'f', -1, 64))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: err}
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	var place Place
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return nil, &Error{Kind: KindUnknown, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if place.Error != "" {
		return nil, &Error{Kind: KindNotFound, Status: resp.StatusCode, Err: errors.New(place.Error)}
	}
	return &place, nil
}

// userAgentRoundTripper sets the User-Agent header Nominatim's usage policy
// requires on every request.
type userAgentRoundTripper struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *userAgentRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.UserAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.UserAgent)
	}
	return t.Transport.RoundTrip(req)
}
