package datasource

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("data source unavailable")
	ErrDuplicateID = errors.New("duplicate id")
	ErrMissingID   = errors.New("missing id")
)

// Entity is anything a Source can store: it must carry its own id.
type Entity interface {
	EntityID() string
}

// Source is where the authoritative copy of a collection lives. The seed
// implementation and the Mongo one are interchangeable behind it.
type Source[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
}

// Delay waits for d or until ctx is done, whichever comes first.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
