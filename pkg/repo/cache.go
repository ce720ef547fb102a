package repo

import (
	"context"
	"sync"
	"time"

	"github.com/foomo/promptserver/content"
	"github.com/foomo/promptserver/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a loaded document is served without
// asking the backend again.
const DefaultCacheTTL = 5 * time.Minute

type (
	// Cache is a time bounded, process local cache around Repo.LoadLatest.
	// Invalidate must be called right after a successful publish so the
	// next Get observes the just written snapshot: no read-after-write
	// staleness across a publish performed by this process.
	Cache struct {
		l         *zap.Logger
		repo      *Repo
		ttl       time.Duration
		now       func() time.Time
		group     singleflight.Group
		mu        sync.RWMutex
		doc       *content.Document
		fetchedAt time.Time
	}
	CacheOption func(*Cache)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func CacheWithTTL(v time.Duration) CacheOption {
	return func(o *Cache) {
		o.ttl = v
	}
}

// CacheWithNow overrides the clock used for entry expiry.
func CacheWithNow(v func() time.Time) CacheOption {
	return func(o *Cache) {
		o.now = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewCache(l *zap.Logger, repo *Repo, opts ...CacheOption) *Cache {
	inst := &Cache{
		l:    l.Named("cache"),
		repo: repo,
		ttl:  DefaultCacheTTL,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Get returns the cached document while the entry is younger than the TTL
// and refetches from the repository otherwise. Concurrent refreshes are
// collapsed onto a single backend load.
func (c *Cache) Get(ctx context.Context) (*content.Document, error) {
	c.mu.RLock()
	doc, fetchedAt := c.doc, c.fetchedAt
	c.mu.RUnlock()

	if doc != nil && c.now().Sub(fetchedAt) < c.ttl {
		metrics.CacheHitCounter.WithLabelValues().Inc()
		return doc, nil
	}

	metrics.CacheMissCounter.WithLabelValues().Inc()
	v, err, _ := c.group.Do("load-latest", func() (interface{}, error) {
		loaded, err := c.repo.LoadLatest(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.doc = loaded
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		// a failed refresh is not cached, the next Get retries
		return nil, err
	}
	return v.(*content.Document), nil
}

// Invalidate forces the next Get to bypass the cache regardless of age.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = nil
	c.fetchedAt = time.Time{}
	c.l.Debug("cache invalidated")
}
