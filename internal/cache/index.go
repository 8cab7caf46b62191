package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quill/internal/middleware"

	"golang.org/x/sync/singleflight"
)

// IndexKey is the only key the index cache uses: the anonymous first page.
const IndexKey = "index:anonymous:1"

// DefaultIndexTTL is how long a rendered index page stays fresh.
const DefaultIndexTTL = 20 * time.Second

// IndexCache holds the anonymous rendering of the first index page.
// Every Clear starts a new generation; a render that began in an earlier
// generation is returned to its callers but never stored.
type IndexCache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group

	mu         sync.Mutex
	generation uint64
}

// NewIndexCache wraps store. A zero ttl disables caching.
func NewIndexCache(store Store, ttl time.Duration) *IndexCache {
	return &IndexCache{store: store, ttl: ttl}
}

// Enabled reports whether cached pages are served at all.
func (c *IndexCache) Enabled() bool {
	return c != nil && c.store != nil && c.ttl > 0
}

// Fetch returns the cached page if fresh. Otherwise render runs once for all
// concurrent callers and its output is stored.
func (c *IndexCache) Fetch(ctx context.Context, render func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if !c.Enabled() {
		return render(ctx)
	}

	body, ok, err := c.store.Get(ctx, IndexKey)
	switch {
	case err != nil:
		middleware.IndexCacheRequests.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "index cache read failed", slog.String("error", err.Error()))
	case ok:
		middleware.IndexCacheRequests.WithLabelValues("hit").Inc()
		return body, nil
	default:
		middleware.IndexCacheRequests.WithLabelValues("miss").Inc()
	}

	v, err, _ := c.group.Do(IndexKey, func() (interface{}, error) {
		gen := c.currentGeneration()
		body, err := render(ctx)
		if err != nil {
			return nil, err
		}
		c.storeIfCurrent(context.WithoutCancel(ctx), gen, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *IndexCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// storeIfCurrent writes body unless a Clear happened since gen was read.
func (c *IndexCache) storeIfCurrent(ctx context.Context, gen uint64, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if err := c.store.Set(ctx, IndexKey, body, c.ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "index cache write failed", slog.String("error", err.Error()))
	}
}

// Clear drops the cached page so the next anonymous read sees committed state.
// Renders still in flight are not stored.
func (c *IndexCache) Clear(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.group.Forget(IndexKey)
	return c.store.Clear(ctx)
}
