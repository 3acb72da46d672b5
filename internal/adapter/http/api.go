package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

type verdictResponse struct {
	ResolutionID string              `json:"resolution_id"`
	Coordinates  domain.Coordinates  `json:"coordinates"`
	Utility      domain.UtilityMatch `json:"utility"`
	Tier         domain.Tier         `json:"tier"`
	Verdict      string              `json:"verdict"`
	Summary      string              `json:"summary"`
	AsOf         string              `json:"as_of"`
}

type violationResponse struct {
	Description string  `json:"description"`
	PeriodStart string  `json:"period_start,omitempty"`
	PeriodEnd   *string `json:"period_end"`
	Status      string  `json:"status"`
	HealthBased bool    `json:"health_based"`
}

type violationsResponse struct {
	SystemID   string              `json:"pwsid"`
	Violations []violationResponse `json:"violations"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Kind  string `json:"kind"`
}

// handleVerdict resolves ?address=... or ?lat=..&lon=.. to a verdict. The
// request context is passed through, so a client disconnect cancels any
// in-flight stage call.
func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	v, err := s.resolver.Resolve(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verdictResponse{
		ResolutionID: v.ResolutionID,
		Coordinates:  v.Coordinates,
		Utility:      v.Utility,
		Tier:         v.Tier,
		Verdict:      v.Tier.Verdict(),
		Summary:      v.Tier.Summary(),
		AsOf:         v.AsOf.Format(time.DateOnly),
	})
}

func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("pwsid"))

	records, err := s.resolver.Violations(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := violationsResponse{SystemID: id, Violations: make([]violationResponse, 0, len(records))}
	for _, rec := range records {
		vr := violationResponse{
			Description: rec.Description,
			Status:      string(rec.Status),
			HealthBased: rec.HealthBased,
		}
		if !rec.PeriodStart.IsZero() {
			vr.PeriodStart = rec.PeriodStart.Format(time.DateOnly)
		}
		if rec.PeriodEnd != nil {
			end := rec.PeriodEnd.Format(time.DateOnly)
			vr.PeriodEnd = &end
		}
		resp.Violations = append(resp.Violations, vr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseInput(r *http.Request) (domain.Input, error) {
	q := r.URL.Query()
	address := q.Get("address")
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")

	switch {
	case address != "" && (latRaw != "" || lonRaw != ""):
		return nil, domain.NewStageError(domain.StageGeocode,
			fmt.Errorf("give either address or lat/lon, not both: %w", domain.ErrInvalidInput))
	case address != "":
		return domain.Address(address), nil
	case latRaw == "" && lonRaw == "":
		return nil, domain.NewStageError(domain.StageGeocode,
			fmt.Errorf("address or lat/lon is required: %w", domain.ErrInvalidInput))
	}

	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lon, errLon := strconv.ParseFloat(lonRaw, 64)
	if err := errors.Join(errLat, errLon); err != nil {
		return nil, domain.NewStageError(domain.StageSpatial,
			fmt.Errorf("lat and lon must be numbers: %w", domain.ErrInvalidInput))
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("verdict request failed", "stage", string(domain.StageOf(err)), "kind", string(kind), "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Stage: string(domain.StageOf(err)),
		Kind:  string(kind),
	})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrInvalidInput:
		return http.StatusBadRequest
	case domain.ErrNotFound, domain.ErrNoUtilityFound:
		return http.StatusNotFound
	case domain.ErrServiceUnavailable, domain.ErrInvalidResponse:
		return http.StatusBadGateway
	case domain.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
