package pipeline

import "github.com/couchcryptid/water-safety-service/internal/domain"

// EventKind marks a stage transition.
type EventKind int

const (
	StageStarted EventKind = iota
	StageSucceeded
	StageFailed
)

func (k EventKind) String() string {
	switch k {
	case StageStarted:
		return "started"
	case StageSucceeded:
		return "succeeded"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports progress of one stage of one resolution. Between a
// StageStarted and its matching terminal event the resolution is loading.
type Event struct {
	ResolutionID string
	Stage        domain.Stage
	Kind         EventKind
	Cached       bool               // result served from the stage cache
	Err          *domain.StageError // set on StageFailed
}

// Observer receives stage events synchronously on the resolving goroutine.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	OnStage(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnStage(e Event) { f(e) }
