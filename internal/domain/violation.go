package domain

import "time"

// ViolationStatus is the SDWIS VIOLATION_STATUS value.
type ViolationStatus string

const (
	StatusUnaddressed ViolationStatus = "Unaddressed"
	StatusAddressed   ViolationStatus = "Addressed"
	StatusResolved    ViolationStatus = "Resolved"
	StatusArchived    ViolationStatus = "Archived"
)

// Unresolved reports whether the status leaves the violation outstanding.
func (s ViolationStatus) Unresolved() bool {
	return s == StatusUnaddressed || s == StatusAddressed
}

// ViolationRecord is one row of the compliance dataset.
type ViolationRecord struct {
	Description string          `json:"description"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   *time.Time      `json:"period_end,omitempty"` // nil while still open
	Status      ViolationStatus `json:"status"`
	HealthBased bool            `json:"health_based"`
}

// Open reports whether the compliance period has no end date.
func (r ViolationRecord) Open() bool {
	return r.PeriodEnd == nil
}
