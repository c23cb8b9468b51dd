package limits

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
)

// DefaultTTL bounds how stale a cached threshold snapshot may be.
const DefaultTTL = 5 * time.Minute

// Cache is a single-slot, TTL-expiring snapshot of the base and options
// threshold rows. It is the only shared mutable state in the pricing core; it
// is a pure performance layer, never a source of truth, so invalidation does
// not need to be atomic with the database write.
//
// Get fetches through on miss; Current never blocks and is safe to call from
// render paths — it returns the cached snapshot or the fallback defaults and
// warms the cache in the background. Concurrent misses share one in-flight
// store round trip via singleflight.
type Cache struct {
	repo   Repository
	logger *slog.Logger
	ttl    time.Duration
	group  singleflight.Group

	mu        sync.RWMutex
	value     policy.LimitSet
	fetchedAt time.Time

	custMu        sync.RWMutex
	custValue     policy.Limits
	custFetchedAt time.Time
}

// NewCache constructs a Cache over repo with the given TTL (DefaultTTL when
// ttl <= 0).
func NewCache(repo Repository, logger *slog.Logger, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{repo: repo, logger: logger, ttl: ttl}
}

// Get returns the current threshold snapshot, fetching from the repository on
// a miss or stale entry. Fetch failures and missing rows degrade to the
// fallback defaults; Get never returns an error.
func (c *Cache) Get(ctx context.Context) policy.LimitSet {
	c.mu.RLock()
	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		value := c.value
		c.mu.RUnlock()
		return value
	}
	c.mu.RUnlock()

	return c.fetchShared(ctx)
}

// Current implements policy.LimitsProvider. It returns the cached snapshot
// when fresh, otherwise the fallback defaults, and fires an asynchronous fetch
// so the next call observes fresh data. It never performs I/O inline.
func (c *Cache) Current() policy.LimitSet {
	c.mu.RLock()
	fresh := !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl
	value := c.value
	c.mu.RUnlock()

	if fresh {
		return value
	}

	go c.warm()
	return DefaultSet()
}

// CustomizationLimits returns the customization threshold row, cached with
// the same TTL as the base/options snapshot. Missing rows and fetch failures
// degrade to the fallback defaults.
func (c *Cache) CustomizationLimits(ctx context.Context) policy.Limits {
	c.custMu.RLock()
	if !c.custFetchedAt.IsZero() && time.Since(c.custFetchedAt) < c.ttl {
		value := c.custValue
		c.custMu.RUnlock()
		return value
	}
	c.custMu.RUnlock()

	v, _, _ := c.group.Do("customization", func() (any, error) {
		return c.fetchCustomization(ctx), nil
	})
	return v.(policy.Limits)
}

// Invalidate clears the cached snapshot so the next read re-fetches. Callers
// mutating discount_limits_config must invoke this after the write.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.custMu.Lock()
	c.custFetchedAt = time.Time{}
	c.custMu.Unlock()
	c.mu.Unlock()
}

func (c *Cache) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.fetchShared(ctx)
}

// fetchShared collapses concurrent stale reads and background warms into a
// single repository fetch.
func (c *Cache) fetchShared(ctx context.Context) policy.LimitSet {
	v, _, _ := c.group.Do("thresholds", func() (any, error) {
		return c.fetch(ctx), nil
	})
	return v.(policy.LimitSet)
}

func (c *Cache) fetch(ctx context.Context) policy.LimitSet {
	set := DefaultSet()

	base, err := c.repo.GetByType(ctx, LimitTypeBase)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("discount limits fetch failed, using defaults",
				slog.String("limit_type", string(LimitTypeBase)), slog.Any("error", err))
		}
		return set
	}
	options, err := c.repo.GetByType(ctx, LimitTypeOptions)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("discount limits fetch failed, using defaults",
				slog.String("limit_type", string(LimitTypeOptions)), slog.Any("error", err))
		}
		return set
	}

	set = policy.LimitSet{Base: base.Limits(), Options: options.Limits()}

	c.mu.Lock()
	c.value = set
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return set
}

func (c *Cache) fetchCustomization(ctx context.Context) policy.Limits {
	cfg, err := c.repo.GetByType(ctx, LimitTypeCustomization)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("discount limits fetch failed, using defaults",
				slog.String("limit_type", string(LimitTypeCustomization)), slog.Any("error", err))
		}
		return DefaultCustomization
	}

	value := cfg.Limits()
	c.custMu.Lock()
	c.custValue = value
	c.custFetchedAt = time.Now()
	c.custMu.Unlock()
	return value
}
