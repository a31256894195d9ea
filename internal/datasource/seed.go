package datasource

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Latency is the simulated round trip of each operation.
type Latency struct {
	List   time.Duration
	Get    time.Duration
	Create time.Duration
	Update time.Duration
}

// Scaled multiplies every duration by f. A zero factor disables latency.
func (l Latency) Scaled(f float64) Latency {
	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	return Latency{
		List:   scale(l.List),
		Get:    scale(l.Get),
		Create: scale(l.Create),
		Update: scale(l.Update),
	}
}

// Config holds the knobs shared by every seed source.
type Config struct {
	// LatencyScale multiplies each latency. Zero means no waiting.
	LatencyScale float64
	// FailureRate is the probability in [0,1] that a call fails with ErrUnavailable.
	FailureRate float64
}

// SeedOption customizes a Seed.
type SeedOption func(*seedSettings)

type seedSettings struct {
	prepend bool
}

// Prepend makes Create put new items first instead of last.
func Prepend() SeedOption {
	return func(s *seedSettings) { s.prepend = true }
}

// Seed is an in-memory Source with simulated latency.
type Seed[T Entity] struct {
	name     string
	mu       sync.RWMutex
	items    []T
	latency  Latency
	failRate float64
	forced   error
	settings seedSettings
	calls    atomic.Int64
	logger   logrus.FieldLogger
}

// NewSeed creates a source holding a copy of items.
func NewSeed[T Entity](name string, items []T, latency Latency, cfg Config, logger logrus.FieldLogger, opts ...SeedOption) *Seed[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Seed[T]{
		name:     name,
		latency:  latency.Scaled(cfg.LatencyScale),
		failRate: cfg.FailureRate,
		logger:   logger.WithField("source", name),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	s.items = make([]T, 0, len(items))
	for _, item := range items {
		s.items = append(s.items, clone(item))
	}
	return s
}

// clone deep-copies values that know how to; everything else is copied by value.
func clone[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

// Calls reports how many operations reached the source.
func (s *Seed[T]) Calls() int64 {
	return s.calls.Load()
}

// SetFailure makes every following call fail with err until cleared with nil.
func (s *Seed[T]) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = err
}

func (s *Seed[T]) begin(ctx context.Context, op string, d time.Duration) error {
	s.calls.Add(1)
	if err := Delay(ctx, d); err != nil {
		return err
	}

	s.mu.RLock()
	forced := s.forced
	s.mu.RUnlock()
	if forced != nil {
		return forced
	}
	if s.failRate > 0 && rand.Float64() < s.failRate {
		s.logger.WithField("op", op).Debug("Injected failure")
		return fmt.Errorf("%s %s: %w", s.name, op, ErrUnavailable)
	}
	return nil
}

// List returns a copy of the whole collection.
func (s *Seed[T]) List(ctx context.Context) ([]T, error) {
	if err := s.begin(ctx, "list", s.latency.List); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, clone(item))
	}
	return out, nil
}

// Get returns the item with the given id.
func (s *Seed[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := s.begin(ctx, "get", s.latency.Get); err != nil {
		return zero, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return clone(s.items[i]), nil
	}
	return zero, fmt.Errorf("%s %q: %w", s.name, id, ErrNotFound)
}

// Create stores a new item. The id must be set and unused.
func (s *Seed[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.begin(ctx, "create", s.latency.Create); err != nil {
		return zero, err
	}
	id := item.EntityID()
	if id == "" {
		return zero, fmt.Errorf("%s: %w", s.name, ErrMissingID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) >= 0 {
		return zero, fmt.Errorf("%s %q: %w", s.name, id, ErrDuplicateID)
	}
	if s.settings.prepend {
		s.items = slices.Insert(s.items, 0, clone(item))
	} else {
		s.items = append(s.items, clone(item))
	}
	return clone(item), nil
}

// Update replaces the stored item that has the same id.
func (s *Seed[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.begin(ctx, "update", s.latency.Update); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(item.EntityID())
	if i < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.name, item.EntityID(), ErrNotFound)
	}
	s.items[i] = clone(item)
	return clone(item), nil
}

func (s *Seed[T]) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(item T) bool { return item.EntityID() == id })
}
