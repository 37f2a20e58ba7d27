// Package directory is the time-bounded cache fronting the upstream route and
// stop directories.
//
// The cache holds exactly one entry per resource class. A live entry is served
// under a read lock with no network access; an expired or missing entry is
// reloaded from upstream and replaced only when the reload succeeds, so a
// failing upstream never erases what was last fetched.
//
// There is no single-flight de-duplication: concurrent callers that observe
// the same expired entry each call upstream. With a TTL measured in hours this
// costs a handful of duplicate requests per expiry.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkordes/transit-bot/internal/domain"
)

// DefaultTTL is how long a fetched directory stays fresh.
const DefaultTTL = 3 * time.Hour

// Resource names one of the cached upstream collections.
type Resource string

const (
	ResourceRoutes Resource = "routes"
	ResourceStops  Resource = "stops"
)

// Loader fetches full directories from upstream. *transit.Client satisfies it.
type Loader interface {
	Routes(ctx context.Context) ([]domain.Route, error)
	Stops(ctx context.Context) ([]domain.Stop, error)
}

// entry is a cached collection and the instant it stops being fresh.
type entry struct {
	payload   any
	items     int
	expiresAt time.Time
}

// counters are per-resource statistics reported by Stats.
// The map holding them is fixed at construction, so only the values change.
type counters struct {
	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// Cache is a TTL cache over the route and stop directories.
// It is safe for concurrent use by all chats.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger

	mu      sync.RWMutex
	entries map[Resource]entry
	stats   map[Resource]*counters
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, letting tests move past the TTL.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for reload events.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New constructs a Cache that reloads from loader once entries are older than ttl.
// A non-positive ttl falls back to DefaultTTL.
func New(loader Loader, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		loader:  loader,
		ttl:     ttl,
		now:     time.Now,
		log:     slog.Default(),
		entries: make(map[Resource]entry),
		stats: map[Resource]*counters{
			ResourceRoutes: {},
			ResourceStops:  {},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Routes returns the route directory in upstream order.
// Returns an error wrapping domain.ErrUpstreamUnavailable when no fresh entry
// exists and the reload fails.
func (c *Cache) Routes(ctx context.Context) ([]domain.Route, error) {
	routes, err := fetch(ctx, c, ResourceRoutes, c.loader.Routes)
	if err != nil {
		return nil, fmt.Errorf("directory.Cache.Routes: %w", err)
	}
	return routes, nil
}

// Stops returns the stop directory in upstream order.
func (c *Cache) Stops(ctx context.Context) ([]domain.Stop, error) {
	stops, err := fetch(ctx, c, ResourceStops, c.loader.Stops)
	if err != nil {
		return nil, fmt.Errorf("directory.Cache.Stops: %w", err)
	}
	return stops, nil
}

// Route looks up a route by ID. ok is false when the directory has no such route.
func (c *Cache) Route(ctx context.Context, id int) (domain.Route, bool, error) {
	routes, err := c.Routes(ctx)
	if err != nil {
		return domain.Route{}, false, err
	}
	for _, r := range routes {
		if r.ID == id {
			return r, true, nil
		}
	}
	return domain.Route{}, false, nil
}

// Stop looks up a stop by ID. ok is false when the directory has no such stop.
func (c *Cache) Stop(ctx context.Context, id int) (domain.Stop, bool, error) {
	stops, err := c.Stops(ctx)
	if err != nil {
		return domain.Stop{}, false, err
	}
	for _, s := range stops {
		if s.ID == id {
			return s, true, nil
		}
	}
	return domain.Stop{}, false, nil
}

// fetch is the shared read-through path for both resources.
// The payload is stored as-is; callers must not mutate returned slices.
func fetch[T any](ctx context.Context, c *Cache, key Resource, load func(context.Context) ([]T, error)) ([]T, error) {
	now := c.now()

	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if found && now.Before(e.expiresAt) {
		c.stats[key].hits.Add(1)
		return e.payload.([]T), nil
	}

	c.stats[key].misses.Add(1)
	start := time.Now()
	items, err := load(ctx)
	if err != nil {
		c.stats[key].failures.Add(1)
		c.log.WarnContext(ctx, "directory reload failed",
			"resource", string(key),
			"had_stale_entry", found,
			"error", err,
		)
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{payload: items, items: len(items), expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	c.log.InfoContext(ctx, "directory reloaded",
		"resource", string(key),
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}

// ResourceStats describes one cached resource.
type ResourceStats struct {
	Resource  Resource  `json:"resource"`
	Cached    bool      `json:"cached"`
	Fresh     bool      `json:"fresh"`
	Items     int       `json:"items"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Hits      int64     `json:"hits"`
	Misses    int64     `json:"misses"`
	Failures  int64     `json:"failures"`
}

// Stats returns a snapshot of both resources, routes first.
func (c *Cache) Stats() []ResourceStats {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ResourceStats, 0, 2)
	for _, key := range []Resource{ResourceRoutes, ResourceStops} {
		s := c.stats[key]
		rs := ResourceStats{
			Resource: key,
			Hits:     s.hits.Load(),
			Misses:   s.misses.Load(),
			Failures: s.failures.Load(),
		}
		if e, ok := c.entries[key]; ok {
			rs.Cached = true
			rs.Fresh = now.Before(e.expiresAt)
			rs.Items = e.items
			rs.ExpiresAt = e.expiresAt
		}
		out = append(out, rs)
	}
	return out
}
