package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/water-safety-service/internal/cache"
	"github.com/couchcryptid/water-safety-service/internal/domain"
	"github.com/couchcryptid/water-safety-service/internal/observability"
)

const tracerName = "github.com/couchcryptid/water-safety-service/internal/pipeline"

// Classifier derives a tier for a system as of a date.
type Classifier interface {
	Classify(ctx context.Context, systemID string, asOf time.Time) (domain.Tier, error)
}

// Publisher receives verdict events after successful resolutions.
type Publisher interface {
	PublishVerdict(ctx context.Context, event domain.VerdictEvent) error
}

// Pipeline resolves an address or point to a utility and its safety tier.
// Stages run in sequence; separate resolutions may run concurrently and share
// only the stage cache.
type Pipeline struct {
	geocoder   domain.Geocoder
	resolver   domain.UtilityResolver
	classifier Classifier
	store      domain.ComplianceStore

	cache     cache.Cache
	cacheTTL  time.Duration
	clock     clockwork.Clock
	publisher Publisher
	observers []Observer
	pageSize  int

	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache sets the stage cache. The default stores nothing.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// WithClock sets the clock used to date resolutions.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithPublisher enables best-effort verdict publishing.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithObserver registers a stage event observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observers = append(p.observers, o) }
}

// WithPageSize bounds the violation listing.
func WithPageSize(n int) Option {
	return func(p *Pipeline) { p.pageSize = n }
}

// New creates a Pipeline over the given stages.
func New(
	geocoder domain.Geocoder,
	resolver domain.UtilityResolver,
	classifier Classifier,
	store domain.ComplianceStore,
	logger *slog.Logger,
	metrics *observability.Metrics,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		geocoder:   geocoder,
		resolver:   resolver,
		classifier: classifier,
		store:      store,
		cache:      cache.Nop{},
		clock:      clockwork.NewRealClock(),
		pageSize:   50,
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve runs every stage for in. On failure the returned error is a
// *domain.StageError and no partial result is returned.
func (p *Pipeline) Resolve(ctx context.Context, in domain.Input) (domain.Verdict, error) {
	id := uuid.NewString()
	ctx, span := p.tracer.Start(ctx, "resolve", trace.WithAttributes(attribute.String("resolution_id", id)))
	defer span.End()

	p.metrics.ResolutionsInFlight.Inc()
	defer p.metrics.ResolutionsInFlight.Dec()

	v, err := p.resolve(ctx, id, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		p.logger.Info("resolution failed",
			"resolution_id", id,
			"stage", string(domain.StageOf(err)),
			"kind", string(domain.KindOf(err)),
			"error", err,
		)
		return domain.Verdict{}, err
	}

	span.SetAttributes(
		attribute.String("system_id", v.Utility.SystemID),
		attribute.String("tier", v.Tier.String()),
	)
	p.metrics.Verdicts.WithLabelValues(v.Tier.String()).Inc()
	p.logger.Info("resolution complete",
		"resolution_id", id,
		"system_id", v.Utility.SystemID,
		"tier", v.Tier.String(),
	)
	p.publish(ctx, v, in)
	return v, nil
}

func (p *Pipeline) resolve(ctx context.Context, id string, in domain.Input) (domain.Verdict, error) {
	var at domain.Coordinates
	switch in := in.(type) {
	case domain.Address:
		coords, err := p.geocode(ctx, id, in)
		if err != nil {
			return domain.Verdict{}, err
		}
		at = coords
	case domain.Coordinates:
		at = in
	default:
		return domain.Verdict{}, p.reject(id, domain.StageGeocode,
			fmt.Errorf("unsupported input %T: %w", in, domain.ErrInvalidInput))
	}

	match, err := p.resolveUtility(ctx, id, at)
	if err != nil {
		return domain.Verdict{}, err
	}

	asOf := domain.DateOf(p.clock.Now())
	tier, err := p.classify(ctx, id, match.SystemID, asOf)
	if err != nil {
		return domain.Verdict{}, err
	}

	return domain.Verdict{
		ResolutionID: id,
		Coordinates:  at,
		Utility:      match,
		Tier:         tier,
		AsOf:         asOf,
	}, nil
}

// Geocode runs only the geocoding stage.
func (p *Pipeline) Geocode(ctx context.Context, address domain.Address) (domain.Coordinates, error) {
	return p.geocode(ctx, uuid.NewString(), address)
}

// ResolveUtility runs only the spatial stage.
func (p *Pipeline) ResolveUtility(ctx context.Context, at domain.Coordinates) (domain.UtilityMatch, error) {
	return p.resolveUtility(ctx, uuid.NewString(), at)
}

// Classify runs only the classification stage.
func (p *Pipeline) Classify(ctx context.Context, systemID string, asOf time.Time) (domain.Tier, error) {
	return p.classify(ctx, uuid.NewString(), systemID, domain.DateOf(asOf))
}

// Violations lists the system's most recent compliance records. The listing
// is read straight from the store and never cached.
func (p *Pipeline) Violations(ctx context.Context, systemID string) ([]domain.ViolationRecord, error) {
	if systemID == "" {
		return nil, domain.NewStageError(domain.StageClassify, fmt.Errorf("system id is required: %w", domain.ErrInvalidInput))
	}
	records, err := p.store.ViolationsFor(ctx, systemID, p.pageSize)
	if err != nil {
		return nil, domain.NewStageError(domain.StageClassify, err)
	}
	return records, nil
}

// CheckReadiness reports whether the compliance store can be reached.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if pinger, ok := p.store.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (p *Pipeline) geocode(ctx context.Context, id string, address domain.Address) (domain.Coordinates, error) {
	if err := address.Validate(); err != nil {
		return domain.Coordinates{}, p.reject(id, domain.StageGeocode, err)
	}
	return runStage(ctx, p, id, domain.StageGeocode, string(address),
		func(ctx context.Context) (domain.Coordinates, error) {
			return p.geocoder.Geocode(ctx, address)
		})
}

func (p *Pipeline) resolveUtility(ctx context.Context, id string, at domain.Coordinates) (domain.UtilityMatch, error) {
	if err := at.Validate(); err != nil {
		return domain.UtilityMatch{}, p.reject(id, domain.StageSpatial, err)
	}
	return runStage(ctx, p, id, domain.StageSpatial, at.Key(),
		func(ctx context.Context) (domain.UtilityMatch, error) {
			match, err := p.resolver.ResolveUtility(ctx, at)
			if err == nil && match.Ambiguous() {
				p.metrics.AmbiguousMatches.Inc()
			}
			return match, err
		})
}

func (p *Pipeline) classify(ctx context.Context, id, systemID string, asOf time.Time) (domain.Tier, error) {
	if systemID == "" {
		// No history to look up, so nothing worth caching.
		return p.classifier.Classify(ctx, systemID, asOf)
	}
	key := systemID + "@" + asOf.Format(time.DateOnly)
	return runStage(ctx, p, id, domain.StageClassify, key,
		func(ctx context.Context) (domain.Tier, error) {
			return p.classifier.Classify(ctx, systemID, asOf)
		})
}

// publish sends the verdict event. Failures are logged and counted but never
// fail the resolution.
func (p *Pipeline) publish(ctx context.Context, v domain.Verdict, in domain.Input) {
	if p.publisher == nil {
		return
	}
	event := domain.NewVerdictEvent(v, in, p.clock.Now())
	if err := p.publisher.PublishVerdict(ctx, event); err != nil {
		p.metrics.VerdictsPublished.WithLabelValues("error").Inc()
		p.logger.Warn("publish verdict failed",
			"resolution_id", v.ResolutionID,
			"system_id", v.Utility.SystemID,
			"error", err,
		)
		return
	}
	p.metrics.VerdictsPublished.WithLabelValues("success").Inc()
}
