package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

const (
	// DefaultBaseURL is the US Census one-line address geocoder.
	DefaultBaseURL = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	// DefaultBenchmark selects the current public address ranges.
	DefaultBenchmark = "Public_AR_Current"
)

// Client implements domain.Geocoder using the US Census geocoding API.
type Client struct {
	baseURL    string
	benchmark  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Census geocoding client. A nil limiter disables
// outbound rate limiting.
func NewClient(baseURL, benchmark string, timeout time.Duration, limiter *rate.Limiter, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	return &Client{
		baseURL:   baseURL,
		benchmark: benchmark,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// Geocode converts a one-line address to coordinates using the first match.
func (c *Client) Geocode(ctx context.Context, address domain.Address) (domain.Coordinates, error) {
	if err := address.Validate(); err != nil {
		return domain.Coordinates{}, err
	}

	params := url.Values{
		"address":   {string(address)},
		"benchmark": {c.benchmark},
		"format":    {"json"},
	}

	var body response
	if err := c.get(ctx, c.baseURL+"?"+params.Encode(), &body); err != nil {
		return domain.Coordinates{}, err
	}

	if body.Result == nil {
		return domain.Coordinates{}, fmt.Errorf("census response has no result object: %w", domain.ErrInvalidResponse)
	}
	if len(body.Result.AddressMatches) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no address match for %q: %w", address, domain.ErrNotFound)
	}

	m := body.Result.AddressMatches[0]
	if m.Coordinates == nil {
		return domain.Coordinates{}, fmt.Errorf("census match has no coordinates: %w", domain.ErrInvalidResponse)
	}
	coords := domain.Coordinates{Lat: m.Coordinates.Y, Lon: m.Coordinates.X}
	if err := coords.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("census returned %s: %w", coords, domain.ErrInvalidResponse)
	}

	c.logger.Debug("address geocoded",
		"matched_address", m.MatchedAddress,
		"matches", len(body.Result.AddressMatches),
		"coordinates", coords.String(),
	)
	return coords, nil
}

func (c *Client) get(ctx context.Context, fullURL string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("census rate limit wait: %w: %w", domain.ErrServiceUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w: %w", domain.ErrServiceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("census geocode request: %w: %w", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("census API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrServiceUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", domain.ErrInvalidResponse, err)
	}
	return nil
}

// Census API response types.

type response struct {
	Result *result `json:"result"`
}

type result struct {
	AddressMatches []addressMatch `json:"addressMatches"`
}

type addressMatch struct {
	MatchedAddress string `json:"matchedAddress"`
	Coordinates    *point `json:"coordinates"`
}

type point struct {
	X float64 `json:"x"` // lon
	Y float64 `json:"y"` // lat
}
