package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// IndexCacheRequests counts index page cache lookups by result (hit, miss, error).
	IndexCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_index_cache_requests_total",
		Help: "Index page cache lookups by result",
	}, []string{"result"})

	// PostsCreated counts committed posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_posts_created_total",
		Help: "Total number of posts created",
	})

	// FollowChanges counts follow graph mutations by action (follow, unfollow).
	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_follow_changes_total",
		Help: "Follow graph mutations by action",
	}, []string{"action"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide Fiber Prometheus middleware, creating it on first use.
// HTTP metrics share the default registry with the application counters so
// one scrape of /metrics returns both.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.NewWithDefaultRegistry(serviceName)
	})
	return prom
}

// MetricsMiddleware records HTTP request metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return p.Middleware(c)
	}
}
