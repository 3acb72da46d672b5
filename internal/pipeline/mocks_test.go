package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/water-safety-service/internal/domain"
)

// --- mocks ---

type mockGeocoder struct {
	calls   atomic.Int32
	results map[domain.Address]domain.Coordinates
	errs    []error // consumed in order before results are used
	mu      sync.Mutex
	hook    func(ctx context.Context)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address domain.Address) (domain.Coordinates, error) {
	m.calls.Add(1)
	if m.hook != nil {
		m.hook(ctx)
	}
	m.mu.Lock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		m.mu.Unlock()
		return domain.Coordinates{}, err
	}
	m.mu.Unlock()
	c, ok := m.results[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("no match: %w", domain.ErrNotFound)
	}
	return c, nil
}

type mockResolver struct {
	calls   atomic.Int32
	matches []domain.UtilityMatch
	err     error
}

func (m *mockResolver) ResolveUtility(_ context.Context, _ domain.Coordinates) (domain.UtilityMatch, error) {
	m.calls.Add(1)
	if m.err != nil {
		return domain.UtilityMatch{}, m.err
	}
	if len(m.matches) == 0 {
		return domain.UtilityMatch{}, fmt.Errorf("no service area: %w", domain.ErrNoUtilityFound)
	}
	match := m.matches[0]
	match.Candidates = len(m.matches)
	return match, nil
}

// mockStore counts every call so tests can assert the classifier was never
// reached.
type mockStore struct {
	calls   atomic.Int32
	records map[string][]domain.ViolationRecord
	err     error
}

func (m *mockStore) ViolationsFor(_ context.Context, id string, limit int) ([]domain.ViolationRecord, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	recs := m.records[id]
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *mockStore) HasOpenHealthViolation(_ context.Context, id string) (bool, error) {
	m.calls.Add(1)
	if m.err != nil {
		return false, m.err
	}
	return len(onlyHealthOpen(m.records[id])) > 0, nil
}

func (m *mockStore) HasViolationEndedSince(_ context.Context, id string, cutoff time.Time) (bool, error) {
	m.calls.Add(1)
	if m.err != nil {
		return false, m.err
	}
	for _, r := range m.records[id] {
		if r.PeriodEnd != nil && !r.PeriodEnd.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) Ping(context.Context) error {
	return m.err
}

func onlyHealthOpen(recs []domain.ViolationRecord) []domain.ViolationRecord {
	var out []domain.ViolationRecord
	for _, r := range recs {
		if r.HealthBased && (r.Open() || r.Status.Unresolved()) {
			out = append(out, r)
		}
	}
	return out
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.VerdictEvent
	err    error
}

func (m *mockPublisher) PublishVerdict(_ context.Context, e domain.VerdictEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(stage domain.Stage, kind fmt.Stringer, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := string(stage) + ":" + kind.String()
	if cached {
		s += "(cached)"
	}
	r.events = append(r.events, s)
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
