// ABOUTME: Per-collection in-memory snapshots of server listings for the current session
// ABOUTME: Snapshots are replaced atomically; the last refresh to complete wins

package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Key names a cached collection.
type Key string

// Collections shared by the panel services.
const (
	Accounts        Key = "accounts"
	DelegationRules Key = "delegationRules"
	Templates       Key = "templates"
)

// Loader issues the listing for a collection. It returns false when the call
// failed; the failure has already been reported to the user.
type Loader[T any] func(ctx context.Context) ([]T, bool)

// Option configures a Collection.
type Option func(*options)

type options struct {
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// WithTTL expires a snapshot ttl after it was stored. Zero keeps it for the
// whole session.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithLogger sets the logger used for refresh tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Collection holds the most recent successful listing for one key.
type Collection[T any] struct {
	key  Key
	load Loader[T]
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	items    []T
	storedAt time.Time
	valid    bool

	logger *slog.Logger
}

// NewCollection creates an empty collection backed by load.
func NewCollection[T any](key Key, load Loader[T], opts ...Option) *Collection[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Collection[T]{
		key:    key,
		load:   load,
		ttl:    o.ttl,
		now:    o.now,
		logger: o.logger.With("component", "cache", "key", string(key)),
	}
}

// Key returns the collection key.
func (c *Collection[T]) Key() Key {
	return c.key
}

// Get returns a copy of the current snapshot without touching the network.
// The bool is false when there is no usable snapshot.
func (c *Collection[T]) Get() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.freshLocked() {
		return nil, false
	}
	return clone(c.items), true
}

// Load returns the snapshot, refreshing first when it is missing, invalidated
// or expired.
func (c *Collection[T]) Load(ctx context.Context) ([]T, bool) {
	if items, ok := c.Get(); ok {
		return items, true
	}
	return c.Refresh(ctx)
}

// Refresh re-issues the listing and replaces the snapshot. On failure the
// previous snapshot is kept and (nil, false) is returned.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, bool) {
	items, ok := c.load(ctx)
	if !ok {
		c.logger.Debug("refresh failed, keeping snapshot")
		return nil, false
	}

	stored := clone(items)
	if stored == nil {
		stored = []T{}
	}

	c.mu.Lock()
	c.items = stored
	c.storedAt = c.now()
	c.valid = true
	c.mu.Unlock()

	c.logger.Debug("snapshot replaced", "count", len(stored))
	return clone(stored), true
}

// Invalidate drops the snapshot so the next Load refreshes.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.valid = false
	c.logger.Debug("snapshot invalidated")
}

// Must be called with mu held.
func (c *Collection[T]) freshLocked() bool {
	if !c.valid {
		return false
	}
	if c.ttl > 0 && c.now().Sub(c.storedAt) >= c.ttl {
		return false
	}
	return true
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Invalidator is anything that can drop its snapshot.
type Invalidator interface {
	Invalidate()
}

// Registry maps keys to collections so mutations can invalidate by key
// without holding a reference to every collection.
type Registry struct {
	mu          sync.RWMutex
	collections map[Key]Invalidator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{collections: make(map[Key]Invalidator)}
}

// Register adds or replaces the collection for key.
func (r *Registry) Register(key Key, c Invalidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[key] = c
}

// Invalidate drops the snapshots of the given keys. Unknown keys are ignored.
func (r *Registry) Invalidate(keys ...Key) {
	if r == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range keys {
		if c, ok := r.collections[k]; ok {
			c.Invalidate()
		}
	}
}

// Keys returns the registered keys.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]Key, 0, len(r.collections))
	for k := range r.collections {
		keys = append(keys, k)
	}
	return keys
}
