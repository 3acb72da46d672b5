package domain

import (
	"fmt"
	"strings"
)

// Tier is the three-level safety verdict. Values are ordered so that a
// higher Tier is always the more severe one.
type Tier int

const (
	TierGreen Tier = iota
	TierAmber
	TierRed
)

var tierNames = [...]string{"GREEN", "AMBER", "RED"}

func (t Tier) String() string {
	if t < TierGreen || t > TierRed {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Verdict is the short label shown next to a utility name.
func (t Tier) Verdict() string {
	switch t {
	case TierGreen:
		return "Safe"
	case TierAmber:
		return "Caution"
	case TierRed:
		return "Do Not Drink"
	default:
		return ""
	}
}

// Summary is the one-sentence explanation of the tier.
func (t Tier) Summary() string {
	switch t {
	case TierGreen:
		return "This water system currently has no health-based violations and meets EPA safety standards."
	case TierAmber:
		return "This water system has had some violations in recent years but no current health-based violations."
	case TierRed:
		return "This water system currently has active health-based violations that may pose health risks."
	default:
		return ""
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	if t < TierGreen || t > TierRed {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(tierNames[t]), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier accepts the tier names case-insensitively.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return TierGreen, fmt.Errorf("unknown tier %q", s)
}
