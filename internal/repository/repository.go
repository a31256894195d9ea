package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/notify"
	"github.com/ukydev/vehiclemate/internal/store"
)

var (
	ErrOffline = errors.New("not available while offline")
	ErrNoCache = errors.New("no cached data available")
)

// Origin tells where the data of a Result came from.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginCache  Origin = "cache"
)

// Result wraps the data of a repository call with how it was obtained.
type Result[T any] struct {
	Data   T      `json:"data"`
	Origin Origin `json:"origin"`
	// Stale is set when a live fetch failed and the cached copy was served.
	Stale bool `json:"stale,omitempty"`
	// Queued is set when a write was kept locally to be sent later.
	Queued bool   `json:"queued,omitempty"`
	Notice string `json:"notice,omitempty"`
}

// Options configures a Repository.
type Options struct {
	// Name is the plural noun used in user-facing messages, e.g. "garages".
	Name string
	// Key is the store key of the cached collection.
	Key string
	// OutboxKey, when set, lets Create queue items while offline.
	OutboxKey string
	// Prepend puts created items first in the cache.
	Prepend bool
}

// Repository reads through a Source, caching successful results in the
// store and falling back to the cache when offline or when the source fails.
type Repository[T datasource.Entity] struct {
	source   datasource.Source[T]
	store    *store.Store
	status   connectivity.Status
	notifier notify.Notifier
	opts     Options
	logger   logrus.FieldLogger

	// mu serializes read-modify-write cycles on the cache and outbox.
	mu sync.Mutex
}

// New creates a repository.
func New[T datasource.Entity](source datasource.Source[T], st *store.Store, status connectivity.Status, notifier notify.Notifier, opts Options, logger logrus.FieldLogger) *Repository[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Repository[T]{
		source:   source,
		store:    st,
		status:   status,
		notifier: notifier,
		opts:     opts,
		logger:   logger.WithField("collection", opts.Name),
	}
}

func (r *Repository[T]) notify(level notify.Level, message string) string {
	if r.notifier != nil {
		r.notifier.Notify(level, message)
	}
	return message
}

func (r *Repository[T]) loadCache() ([]T, bool) {
	var items []T
	if !r.store.LoadValue(r.opts.Key, &items) {
		return []T{}, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

// Cached returns the cached collection without touching the source.
func (r *Repository[T]) Cached() []T {
	return store.LoadCollection[T](r.store, r.opts.Key)
}

// List returns the whole collection.
func (r *Repository[T]) List(ctx context.Context) (Result[[]T], error) {
	if r.status.Offline() {
		return Result[[]T]{Data: r.Cached(), Origin: OriginCache}, nil
	}

	items, err := r.source.List(ctx)
	if err == nil {
		if items == nil {
			items = []T{}
		}
		r.mu.Lock()
		items = r.withPendingLocked(items)
		store.SaveCollection(r.store, r.opts.Key, items)
		r.mu.Unlock()
		return Result[[]T]{Data: items, Origin: OriginRemote}, nil
	}
	if ctx.Err() != nil {
		return Result[[]T]{}, err
	}

	r.logger.WithError(err).Warn("Fetch failed, trying cache")
	if cached, ok := r.loadCache(); ok {
		notice := r.notify(notify.LevelWarning, fmt.Sprintf("Failed to load %s. Showing cached data.", r.opts.Name))
		return Result[[]T]{Data: cached, Origin: OriginCache, Stale: true, Notice: notice}, nil
	}
	r.notify(notify.LevelError, fmt.Sprintf("Failed to load %s. Please try again.", r.opts.Name))
	return Result[[]T]{}, fmt.Errorf("list %s: %w: %w", r.opts.Name, ErrNoCache, err)
}

// Get returns a single item. A missing item is reported with
// datasource.ErrNotFound and never falls back to the cache.
func (r *Repository[T]) Get(ctx context.Context, id string) (Result[T], error) {
	if r.status.Offline() {
		if item, ok := r.findCached(id); ok {
			return Result[T]{Data: item, Origin: OriginCache}, nil
		}
		return Result[T]{}, fmt.Errorf("%s %q: %w", r.opts.Name, id, datasource.ErrNotFound)
	}

	item, err := r.source.Get(ctx, id)
	if err == nil {
		r.upsertCache(item)
		return Result[T]{Data: item, Origin: OriginRemote}, nil
	}
	if errors.Is(err, datasource.ErrNotFound) {
		if queued, ok := r.findPending(id); ok {
			return Result[T]{Data: queued, Origin: OriginCache, Queued: true}, nil
		}
		return Result[T]{}, err
	}
	if ctx.Err() != nil {
		return Result[T]{}, err
	}

	r.logger.WithError(err).WithField("id", id).Warn("Fetch failed, trying cache")
	if cached, ok := r.findCached(id); ok {
		notice := r.notify(notify.LevelWarning, fmt.Sprintf("Failed to load %s. Showing cached data.", r.opts.Name))
		return Result[T]{Data: cached, Origin: OriginCache, Stale: true, Notice: notice}, nil
	}
	r.notify(notify.LevelError, fmt.Sprintf("Failed to load %s. Please try again.", r.opts.Name))
	return Result[T]{}, fmt.Errorf("get %s %q: %w: %w", r.opts.Name, id, ErrNoCache, err)
}

// Create stores a new item. While offline it is cached and queued when
// the repository has an outbox, and rejected otherwise.
func (r *Repository[T]) Create(ctx context.Context, item T) (Result[T], error) {
	if r.status.Offline() {
		if r.opts.OutboxKey == "" {
			notice := r.notify(notify.LevelError, fmt.Sprintf("You're offline. New %s can't be saved right now.", r.opts.Name))
			return Result[T]{Notice: notice}, ErrOffline
		}
		r.mu.Lock()
		r.insertCacheLocked(item)
		store.AppendToCollection(r.store, r.opts.OutboxKey, item)
		r.mu.Unlock()

		notice := r.notify(notify.LevelInfo, fmt.Sprintf("Saved offline. Pending %s will be sent when you're back online.", r.opts.Name))
		return Result[T]{Data: item, Origin: OriginCache, Queued: true, Notice: notice}, nil
	}

	created, err := r.source.Create(ctx, item)
	if err != nil {
		if ctx.Err() == nil {
			r.notify(notify.LevelError, fmt.Sprintf("Failed to save %s. Please try again.", r.opts.Name))
		}
		return Result[T]{}, err
	}
	r.mu.Lock()
	r.insertCacheLocked(created)
	r.mu.Unlock()
	return Result[T]{Data: created, Origin: OriginRemote}, nil
}

// Update replaces an existing item. It needs the source, so it fails offline.
func (r *Repository[T]) Update(ctx context.Context, item T) (Result[T], error) {
	if r.status.Offline() {
		return Result[T]{}, ErrOffline
	}
	updated, err := r.source.Update(ctx, item)
	if err != nil {
		return Result[T]{}, err
	}
	r.upsertCache(updated)
	return Result[T]{Data: updated, Origin: OriginRemote}, nil
}

// Pending returns the items queued while offline.
func (r *Repository[T]) Pending() []T {
	if r.opts.OutboxKey == "" {
		return []T{}
	}
	return store.LoadCollection[T](r.store, r.opts.OutboxKey)
}

// Sync sends queued items to the source, oldest first. It stops at the first
// failure and keeps the rest queued. Items the source already has are dropped.
func (r *Repository[T]) Sync(ctx context.Context) (int, error) {
	if r.opts.OutboxKey == "" {
		return 0, nil
	}
	if r.status.Offline() {
		return 0, ErrOffline
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	queued := store.LoadCollection[T](r.store, r.opts.OutboxKey)
	if len(queued) == 0 {
		return 0, nil
	}

	sent := 0
	var syncErr error
	for _, item := range queued {
		if _, err := r.source.Create(ctx, item); err != nil && !errors.Is(err, datasource.ErrDuplicateID) {
			syncErr = fmt.Errorf("sync %s %q: %w", r.opts.Name, item.EntityID(), err)
			break
		}
		sent++
	}
	store.SaveCollection(r.store, r.opts.OutboxKey, queued[sent:])

	entry := r.logger.WithFields(logrus.Fields{"synced": sent, "remaining": len(queued) - sent})
	if syncErr != nil {
		entry.WithError(syncErr).Warn("Outbox sync incomplete")
	} else {
		entry.Info("Outbox synced")
	}
	if sent > 0 {
		r.notify(notify.LevelSuccess, fmt.Sprintf("Synced %d pending %s", sent, r.opts.Name))
	}
	return sent, syncErr
}

func (r *Repository[T]) findCached(id string) (T, bool) {
	var zero T
	items := r.Cached()
	i := slices.IndexFunc(items, func(item T) bool { return item.EntityID() == id })
	if i < 0 {
		return zero, false
	}
	return items[i], true
}

func (r *Repository[T]) findPending(id string) (T, bool) {
	var zero T
	items := r.Pending()
	i := slices.IndexFunc(items, func(item T) bool { return item.EntityID() == id })
	if i < 0 {
		return zero, false
	}
	return items[i], true
}

// withPendingLocked adds queued items the source does not know yet, so
// offline writes stay visible until they are synced.
func (r *Repository[T]) withPendingLocked(items []T) []T {
	for _, queued := range r.Pending() {
		if slices.ContainsFunc(items, func(v T) bool { return v.EntityID() == queued.EntityID() }) {
			continue
		}
		if r.opts.Prepend {
			items = slices.Insert(items, 0, queued)
		} else {
			items = append(items, queued)
		}
	}
	return items
}

func (r *Repository[T]) upsertCache(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.Cached()
	i := slices.IndexFunc(items, func(v T) bool { return v.EntityID() == item.EntityID() })
	if i >= 0 {
		items[i] = item
	} else {
		items = append(items, item)
	}
	store.SaveCollection(r.store, r.opts.Key, items)
}

func (r *Repository[T]) insertCacheLocked(item T) {
	items := r.Cached()
	if r.opts.Prepend {
		items = slices.Insert(items, 0, item)
	} else {
		items = append(items, item)
	}
	store.SaveCollection(r.store, r.opts.Key, items)
}

// MapResult converts the data of a result and keeps how it was obtained.
func MapResult[T, U any](r Result[T], f func(T) U) Result[U] {
	return Result[U]{
		Data:   f(r.Data),
		Origin: r.Origin,
		Stale:  r.Stale,
		Queued: r.Queued,
		Notice: r.Notice,
	}
}
