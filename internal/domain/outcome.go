package domain

import (
	"errors"
	"time"
)

// Verdict is a successful resolution: the serving utility and its tier.
type Verdict struct {
	ResolutionID string       `json:"resolution_id"`
	Coordinates  Coordinates  `json:"coordinates"`
	Utility      UtilityMatch `json:"utility"`
	Tier         Tier         `json:"tier"`
	AsOf         time.Time    `json:"as_of"`
}

// State is the lifecycle position of one resolution attempt.
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the presentation-side view of a resolution. Exactly one of
// Verdict and Failure is set for the Success and Failure states; neither is
// set while Loading.
type Outcome struct {
	State   State
	Verdict *Verdict
	Failure *StageError
}

// Loading is the outcome of a resolution that has not finished.
func Loading() Outcome {
	return Outcome{State: StateLoading}
}

// OutcomeOf folds a Resolve result into an Outcome.
func OutcomeOf(v Verdict, err error) Outcome {
	if err == nil {
		return Outcome{State: StateSuccess, Verdict: &v}
	}
	var se *StageError
	if !errors.As(err, &se) {
		se = &StageError{Kind: KindOf(err), Err: err}
	}
	return Outcome{State: StateFailure, Failure: se}
}
