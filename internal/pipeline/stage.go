package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/couchcryptid/water-safety-service/internal/cache"
	"github.com/couchcryptid/water-safety-service/internal/domain"
)

// runStage executes one stage through the stage cache. Only successes are
// cached, and nothing is written once ctx is done, so a retry after a
// failure or cancellation always re-runs the stage.
func runStage[T any](
	ctx context.Context,
	p *Pipeline,
	id string,
	stage domain.Stage,
	inputKey string,
	fn func(context.Context) (T, error),
) (T, error) {
	ctx, span := p.tracer.Start(ctx, "stage."+string(stage))
	defer span.End()
	span.SetAttributes(attribute.String("stage", string(stage)))

	p.notify(Event{ResolutionID: id, Stage: stage, Kind: StageStarted})

	key := cache.Key(string(stage), inputKey)
	if v, ok := lookup[T](ctx, p, stage, key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		p.notify(Event{ResolutionID: id, Stage: stage, Kind: StageSucceeded, Cached: true})
		return v, nil
	}

	start := time.Now()
	v, err := fn(ctx)
	p.metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())

	if err != nil {
		var zero T
		se := domain.NewStageError(stage, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(se.Kind))
		p.metrics.StageRequests.WithLabelValues(string(stage), "error").Inc()
		p.notify(Event{ResolutionID: id, Stage: stage, Kind: StageFailed, Err: se})
		return zero, se
	}

	p.metrics.StageRequests.WithLabelValues(string(stage), "success").Inc()
	if ctx.Err() == nil {
		remember(ctx, p, stage, key, v)
	}
	p.notify(Event{ResolutionID: id, Stage: stage, Kind: StageSucceeded})
	return v, nil
}

func lookup[T any](ctx context.Context, p *Pipeline, stage domain.Stage, key string) (T, bool) {
	var v T
	raw, found, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("stage cache read failed", "stage", string(stage), "error", err)
	}
	if err != nil || !found {
		p.metrics.StageCache.WithLabelValues(string(stage), "miss").Inc()
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		p.logger.Warn("discarding undecodable cache entry", "stage", string(stage), "error", err)
		_ = p.cache.Delete(ctx, key)
		p.metrics.StageCache.WithLabelValues(string(stage), "miss").Inc()
		return v, false
	}
	p.metrics.StageCache.WithLabelValues(string(stage), "hit").Inc()
	return v, true
}

func remember[T any](ctx context.Context, p *Pipeline, stage domain.Stage, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("encode cache entry failed", "stage", string(stage), "error", err)
		return
	}
	if err := p.cache.Set(ctx, key, raw, p.cacheTTL); err != nil {
		p.logger.Warn("stage cache write failed", "stage", string(stage), "error", err)
	}
}

// reject fails a stage on input validation, before any call is made.
func (p *Pipeline) reject(id string, stage domain.Stage, err error) *domain.StageError {
	se := domain.NewStageError(stage, err)
	p.metrics.StageRequests.WithLabelValues(string(stage), "error").Inc()
	p.notify(Event{ResolutionID: id, Stage: stage, Kind: StageFailed, Err: se})
	return se
}

func (p *Pipeline) notify(e Event) {
	for _, o := range p.observers {
		o.OnStage(e)
	}
}
