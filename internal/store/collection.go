package store

import (
	"context"
	"fmt"
	"sync"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
)

// Notifier receives user-facing messages, e.g. when a refresh fails.
type Notifier interface {
	Notify(ctx context.Context, level domain.NotificationLevel, message string)
}

// Snapshots persists successful collection contents for warm starts.
type Snapshots interface {
	Load(ctx context.Context, name string, dest any) (bool, error)
	Save(ctx context.Context, name string, value any) error
}

type fetchFunc[T any] func(ctx context.Context, token string) ([]T, error)

// Collection is one cached list with its loading and error flags.
type Collection[T any] struct {
	name      string
	failure   string
	fetch     fetchFunc[T]
	notifier  Notifier
	snapshots Snapshots

	mu         sync.RWMutex
	items      []T
	loading    bool
	err        error
	generation uint64
}

func newCollection[T any](name, failure string, fetch fetchFunc[T], notifier Notifier, snapshots Snapshots) *Collection[T] {
	return &Collection[T]{
		name:      name,
		failure:   failure,
		fetch:     fetch,
		notifier:  notifier,
		snapshots: snapshots,
	}
}

// Name identifies the collection in logs, snapshots and the HTTP API.
func (c *Collection[T]) Name() string {
	return c.name
}

// List returns a copy of the cached items.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the error of the last completed refresh, nil after a success.
func (c *Collection[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Refresh fetches the list again. On failure the previous items are kept,
// the error flag is set and one error notification is emitted. A response
// that arrives after a newer refresh was started is discarded.
func (c *Collection[T]) Refresh(ctx context.Context, token string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	items, err := c.fetch(ctx, token)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		logger.DebugContext(ctx, "Discarding stale refresh", "collection", c.name, "generation", gen)
		return err
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.mu.Unlock()
		logger.ErrorContext(ctx, "Failed to refresh collection", "collection", c.name, "error", err)
		if c.notifier != nil {
			c.notifier.Notify(ctx, domain.NotificationError, c.failure)
		}
		return fmt.Errorf("failed to refresh %s: %w", c.name, err)
	}
	if items == nil {
		items = []T{}
	}
	c.items = items
	c.mu.Unlock()

	if c.snapshots != nil {
		if err := c.snapshots.Save(ctx, c.name, items); err != nil {
			logger.WarnContext(ctx, "Failed to save snapshot", "collection", c.name, "error", err)
		}
	}
	return nil
}

// seed fills an empty collection from its last snapshot.
func (c *Collection[T]) seed(ctx context.Context) {
	if c.snapshots == nil {
		return
	}
	var items []T
	found, err := c.snapshots.Load(ctx, c.name, &items)
	if err != nil {
		logger.WarnContext(ctx, "Failed to load snapshot", "collection", c.name, "error", err)
		return
	}
	if !found {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		c.items = items
	}
}

// Clear drops the cached items and flags. In-flight refreshes are invalidated.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.items = nil
	c.loading = false
	c.err = nil
}

// Status is the serializable state of a collection.
type Status struct {
	Count   int    `json:"count"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func (c *Collection[T]) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Status{Count: len(c.items), Loading: c.loading}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}
