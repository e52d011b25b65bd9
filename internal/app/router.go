package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gehenna/gehenna/handlers"
	"github.com/gehenna/gehenna/internal/config"
	"github.com/gehenna/gehenna/internal/gateway"
	"github.com/gehenna/gehenna/internal/names/handler"
	"github.com/gehenna/gehenna/internal/names/service"
	"github.com/gehenna/gehenna/pkg/middleware"
)

// RegistryDeps are the runtime collaborators of the registry router.
// Snapshotter, Redis and Gatherer are optional.
type RegistryDeps struct {
	Service     service.Service
	Snapshotter *service.Snapshotter
	Redis       *redis.Client
	Gatherer    prometheus.Gatherer
}

// newEngine applies the middleware chain shared by both processes. Recovery
// sits inside RequestLogger and Metrics so panicking requests are still logged
// and counted as 500s.
func newEngine(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	return r
}

func mountMetrics(r *gin.Engine, g prometheus.Gatherer) {
	if g == nil {
		return
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}

// NewRegistryRouter builds the registry HTTP API.
func NewRegistryRouter(cfg *config.Config, deps RegistryDeps) *gin.Engine {
	r := newEngine(cfg, deps.Redis)
	r.Use(middleware.ErrorHandler(handler.StatusFor, cfg.Server.Debug))

	handler.RegisterNameRoutes(r, deps.Service)
	if deps.Snapshotter != nil {
		handler.RegisterSnapshotRoute(r, deps.Snapshotter)
	}
	handlers.RegisterSwagger(r)
	mountMetrics(r, deps.Gatherer)
	return r
}

// NewGatewayRouter builds the presentation gateway.
func NewGatewayRouter(cfg *config.Config, fetcher gateway.NameFetcher, g prometheus.Gatherer) *gin.Engine {
	r := newEngine(cfg, nil)
	gateway.RegisterGatewayRoutes(r, fetcher)
	mountMetrics(r, g)
	return r
}
