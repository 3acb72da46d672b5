package domain

import "time"

// VerdictEvent is published after every successful resolution. It carries
// the resolved point rather than the caller's address text.
type VerdictEvent struct {
	ResolutionID string       `json:"resolution_id"`
	InputKind    string       `json:"input_kind"` // address | coordinates
	Coordinates  Coordinates  `json:"coordinates"`
	Utility      UtilityMatch `json:"utility"`
	Tier         Tier         `json:"tier"`
	Verdict      string       `json:"verdict"`
	AsOf         string       `json:"as_of"` // YYYY-MM-DD
	ResolvedAt   time.Time    `json:"resolved_at"`
}

// NewVerdictEvent builds the event for v.
func NewVerdictEvent(v Verdict, in Input, resolvedAt time.Time) VerdictEvent {
	kind := "coordinates"
	if _, ok := in.(Address); ok {
		kind = "address"
	}
	return VerdictEvent{
		ResolutionID: v.ResolutionID,
		InputKind:    kind,
		Coordinates:  v.Coordinates,
		Utility:      v.Utility,
		Tier:         v.Tier,
		Verdict:      v.Tier.Verdict(),
		AsOf:         DateOf(v.AsOf).Format(time.DateOnly),
		ResolvedAt:   resolvedAt.UTC(),
	}
}
