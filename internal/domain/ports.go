package domain

import (
	"context"
	"time"
)

// Geocoder converts a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address Address) (Coordinates, error)
}

// UtilityResolver finds the water system whose service area contains a point.
type UtilityResolver interface {
	ResolveUtility(ctx context.Context, at Coordinates) (UtilityMatch, error)
}

// ComplianceStore is read-only access to the violation dataset.
type ComplianceStore interface {
	// ViolationsFor lists up to limit records for the system, newest
	// compliance period first.
	ViolationsFor(ctx context.Context, systemID string, limit int) ([]ViolationRecord, error)

	// HasOpenHealthViolation reports whether any health-based record is open
	// or has an unresolved status.
	HasOpenHealthViolation(ctx context.Context, systemID string) (bool, error)

	// HasViolationEndedSince reports whether any record's compliance period
	// ended on or after cutoff.
	HasViolationEndedSince(ctx context.Context, systemID string, cutoff time.Time) (bool, error)
}
