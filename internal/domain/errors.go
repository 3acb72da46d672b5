package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a stage failed. Kinds are comparable errors so
// callers can test with errors.Is(err, domain.ErrNotFound).
type ErrorKind string

func (k ErrorKind) Error() string { return string(k) }

const (
	// ErrInvalidInput: malformed address or coordinates, rejected before any call.
	ErrInvalidInput ErrorKind = "invalid_input"
	// ErrNotFound: the geocoder returned no address match.
	ErrNotFound ErrorKind = "not_found"
	// ErrNoUtilityFound: no service area contains the point.
	ErrNoUtilityFound ErrorKind = "no_utility_found"
	// ErrServiceUnavailable: transport failure, timeout, or non-success status.
	ErrServiceUnavailable ErrorKind = "service_unavailable"
	// ErrInvalidResponse: the external service answered with an unexpected shape.
	ErrInvalidResponse ErrorKind = "invalid_response"
	// ErrStoreUnavailable: the compliance dataset could not be opened or queried.
	ErrStoreUnavailable ErrorKind = "store_unavailable"
)

// Stage names a step of the resolution pipeline.
type Stage string

const (
	StageGeocode  Stage = "geocode"
	StageSpatial  Stage = "spatial"
	StageClassify Stage = "classify"
)

// StageError is the failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Kind  ErrorKind
	Err   error
}

// NewStageError tags err with the stage that produced it. The kind is taken
// from err's chain; context expiry and unclassified errors are reported as
// ErrServiceUnavailable.
func NewStageError(stage Stage, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return &StageError{Stage: stage, Kind: KindOf(err), Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Err, e.Kind}
}

// KindOf extracts the ErrorKind carried by err.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return ErrServiceUnavailable
}

// StageOf returns the failing stage, or "" if err is not a StageError.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
