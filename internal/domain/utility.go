package domain

// UtilityMatch identifies the public water system serving a location.
type UtilityMatch struct {
	SystemID         string `json:"pwsid"`
	Name             string `json:"name"`
	RegulatingAgency string `json:"regulating_agency"`

	// Candidates is the number of service areas that intersected the point.
	// Values above 1 mean the first returned area was picked from overlapping
	// boundaries.
	Candidates int `json:"candidates"`
}

// Ambiguous reports whether the match was chosen among overlapping areas.
func (u UtilityMatch) Ambiguous() bool {
	return u.Candidates > 1
}
