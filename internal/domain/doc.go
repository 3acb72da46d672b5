// Package domain models public drinking-water systems, their regulatory
// violation history, and the safety verdict derived from that history.
//
// # Data Sources
//
// Addresses are matched by the US Census Bureau geocoder
// (geocoding.geo.census.gov, "onelineaddress" endpoint). Service-area
// boundaries come from the EPA Community Water System Service Area layer
// published as an ArcGIS FeatureServer. Violation records are an extract of
// the EPA SDWIS/ECHO table SDWA_VIOLATIONS_ENFORCEMENT, shipped as a
// read-only database alongside the service.
//
// # SDWIS Conventions
//
// PWSID:
//
//	Two-letter state or region code followed by seven digits, e.g. "IL1234567".
//	Stable across releases; used as the only join key between the boundary
//	layer and the violation table.
//
// Compliance period:
//
//	NON_COMPL_PER_BEGIN_DATE / NON_COMPL_PER_END_DATE, ISO dates.
//	A NULL (or empty) end date means the violation has not been closed.
//
// Violation status:
//
//	"Unaddressed"  no formal enforcement action yet
//	"Addressed"    enforcement action taken, not yet returned to compliance
//	"Resolved"     returned to compliance or rescinded
//	"Archived"     older than the reporting window
//	Unknown values are carried through unchanged.
//
// Health-based indicator:
//
//	IS_HEALTH_BASED_IND = 'Y' for MCL, MRDL and treatment technique
//	violations. Monitoring, reporting and public-notice violations are 'N'.
//
// # Safety Tiers
//
// Evaluated in priority order, first match wins:
//
//	RED    any health-based violation that is still open, or whose status is
//	       Unaddressed or Addressed
//	AMBER  any violation (health-based or not) whose compliance period ended
//	       on or after asOf minus three years
//	GREEN  everything else, including systems with no records at all
//
// A system absent from the dataset and a system with a clean record both
// classify GREEN. See [EvaluateRecords].
package domain
