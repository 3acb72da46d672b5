package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

// DefaultBaseURL is the EPA community water system service area layer.
const DefaultBaseURL = "https://services.arcgis.com/cJ9YHowT8TU7DUyn/arcgis/rest/services/Water_System_Boundaries/FeatureServer/0/query"

// ServiceSpatialReference is the WKID input points are declared in. Points
// are already WGS-84 so no reprojection happens; the declaration only tells
// the service how to read them.
const ServiceSpatialReference = domain.WGS84

const outFields = "PWSID,PWS_Name,Primacy_Agency"

// Client implements domain.UtilityResolver against an ArcGIS FeatureServer
// layer of water system service area polygons.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an ArcGIS spatial query client. A nil limiter disables
// outbound rate limiting.
func NewClient(baseURL string, timeout time.Duration, limiter *rate.Limiter, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// servicePoint is a point in the service's axis order (x = lon, y = lat).
type servicePoint struct {
	X, Y float64
}

func toServicePoint(c domain.Coordinates) servicePoint {
	return servicePoint{X: c.Lon, Y: c.Lat}
}

func (p servicePoint) geometry() string {
	return strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64)
}

// ResolveUtility returns the water system whose service area intersects at.
// When several areas overlap the point, the first feature the service
// returns is used and the candidate count is recorded on the match.
func (c *Client) ResolveUtility(ctx context.Context, at domain.Coordinates) (domain.UtilityMatch, error) {
	if err := at.Validate(); err != nil {
		return domain.UtilityMatch{}, err
	}

	pt := toServicePoint(at)
	params := url.Values{
		"where":          {"1=1"},
		"geometry":       {pt.geometry()},
		"geometryType":   {"esriGeometryPoint"},
		"inSR":           {strconv.Itoa(ServiceSpatialReference)},
		"spatialRel":     {"esriSpatialRelIntersects"},
		"outFields":      {outFields},
		"returnGeometry": {"false"},
		"f":              {"json"},
	}

	var body response
	if err := c.get(ctx, c.baseURL+"?"+params.Encode(), &body); err != nil {
		return domain.UtilityMatch{}, err
	}

	if body.Error != nil {
		return domain.UtilityMatch{}, fmt.Errorf("arcgis error %d: %s: %w", body.Error.Code, body.Error.Message, domain.ErrServiceUnavailable)
	}
	if body.Features == nil {
		return domain.UtilityMatch{}, fmt.Errorf("arcgis response has no features array: %w", domain.ErrInvalidResponse)
	}
	if len(body.Features) == 0 {
		return domain.UtilityMatch{}, fmt.Errorf("no service area contains %s: %w", at, domain.ErrNoUtilityFound)
	}

	first := body.Features[0].Attributes
	if strings.TrimSpace(first.PWSID) == "" {
		return domain.UtilityMatch{}, fmt.Errorf("arcgis feature has no PWSID: %w", domain.ErrInvalidResponse)
	}

	match := domain.UtilityMatch{
		SystemID:         strings.TrimSpace(first.PWSID),
		Name:             strings.TrimSpace(first.Name),
		RegulatingAgency: strings.TrimSpace(first.PrimacyAgency),
		Candidates:       len(body.Features),
	}
	if match.Ambiguous() {
		ids := make([]string, 0, len(body.Features))
		for _, f := range body.Features {
			ids = append(ids, f.Attributes.PWSID)
		}
		c.logger.Warn("overlapping service areas, using first",
			"coordinates", at.String(),
			"system_id", match.SystemID,
			"candidates", ids,
		)
	}
	return match, nil
}

func (c *Client) get(ctx context.Context, fullURL string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("arcgis rate limit wait: %w: %w", domain.ErrServiceUnavailable, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w: %w", domain.ErrServiceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("arcgis query request: %w: %w", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("arcgis API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrServiceUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", domain.ErrInvalidResponse, err)
	}
	return nil
}

// ArcGIS query response types.

type response struct {
	Features []feature     `json:"features"`
	Error    *serviceError `json:"error"`
}

type feature struct {
	Attributes attributes `json:"attributes"`
}

type attributes struct {
	PWSID         string `json:"PWSID"`
	Name          string `json:"PWS_Name"`
	PrimacyAgency string `json:"Primacy_Agency"`
}

type serviceError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
