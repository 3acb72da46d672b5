package domain

import "time"

// EvaluateRecords applies the tier rules to an in-memory record set. It is
// the reference for what a ComplianceStore's existence checks must agree with.
func EvaluateRecords(records []ViolationRecord, asOf time.Time) Tier {
	for i := range records {
		if isRedRecord(records[i]) {
			return TierRed
		}
	}
	cutoff := LookbackStart(asOf)
	for i := range records {
		if endedSince(records[i], cutoff) {
			return TierAmber
		}
	}
	return TierGreen
}

func isRedRecord(r ViolationRecord) bool {
	return r.HealthBased && (r.Open() || r.Status.Unresolved())
}

func endedSince(r ViolationRecord, cutoff time.Time) bool {
	if r.PeriodEnd == nil {
		return false
	}
	return !DateOf(*r.PeriodEnd).Before(cutoff)
}
