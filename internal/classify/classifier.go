// Package classify derives a safety tier for a water system from its
// compliance history.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

// Classifier evaluates the tier rules against a ComplianceStore. Rules are
// checked in severity order and evaluation stops at the first match, so the
// lookback query is never issued for a RED system.
type Classifier struct {
	store  domain.ComplianceStore
	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates a classifier. A nil clock falls back to the real clock.
func New(store domain.ComplianceStore, clock clockwork.Clock, logger *slog.Logger) *Classifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Classifier{store: store, clock: clock, logger: logger}
}

// Classify returns the tier of systemID as of the calendar date of asOf.
// An empty system ID has no compliance history and is GREEN.
func (c *Classifier) Classify(ctx context.Context, systemID string, asOf time.Time) (domain.Tier, error) {
	if systemID == "" {
		c.logger.Debug("empty system id classified without lookup")
		return domain.TierGreen, nil
	}
	asOf = domain.DateOf(asOf)

	red, err := c.store.HasOpenHealthViolation(ctx, systemID)
	if err != nil {
		return domain.TierGreen, fmt.Errorf("check open health violations: %w", err)
	}
	if red {
		c.logged(systemID, asOf, domain.TierRed)
		return domain.TierRed, nil
	}

	cutoff := domain.LookbackStart(asOf)
	amber, err := c.store.HasViolationEndedSince(ctx, systemID, cutoff)
	if err != nil {
		return domain.TierGreen, fmt.Errorf("check violations ended since %s: %w", cutoff.Format(time.DateOnly), err)
	}
	if amber {
		c.logged(systemID, asOf, domain.TierAmber)
		return domain.TierAmber, nil
	}

	c.logged(systemID, asOf, domain.TierGreen)
	return domain.TierGreen, nil
}

// ClassifyNow classifies as of today on the classifier's clock.
func (c *Classifier) ClassifyNow(ctx context.Context, systemID string) (domain.Tier, error) {
	return c.Classify(ctx, systemID, c.clock.Now())
}

// Today is the date ClassifyNow would use.
func (c *Classifier) Today() time.Time {
	return domain.DateOf(c.clock.Now())
}

func (c *Classifier) logged(systemID string, asOf time.Time, tier domain.Tier) {
	c.logger.Debug("system classified",
		"system_id", systemID,
		"as_of", asOf.Format(time.DateOnly),
		"tier", tier.String(),
	)
}
