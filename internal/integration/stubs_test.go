//go:build integration

package integration_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

type stubGeocoder struct {
	calls atomic.Int32
	at    domain.Coordinates
}

func (g *stubGeocoder) Geocode(context.Context, domain.Address) (domain.Coordinates, error) {
	g.calls.Add(1)
	return g.at, nil
}

type stubResolver struct {
	calls atomic.Int32
	match domain.UtilityMatch
}

func (r *stubResolver) ResolveUtility(context.Context, domain.Coordinates) (domain.UtilityMatch, error) {
	r.calls.Add(1)
	return r.match, nil
}

// cleanStore has no records for any system.
type cleanStore struct{}

func (cleanStore) ViolationsFor(context.Context, string, int) ([]domain.ViolationRecord, error) {
	return nil, nil
}

func (cleanStore) HasOpenHealthViolation(context.Context, string) (bool, error) { return false, nil }

func (cleanStore) HasViolationEndedSince(context.Context, string, time.Time) (bool, error) {
	return false, nil
}
