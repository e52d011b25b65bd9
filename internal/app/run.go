package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/gehenna/gehenna/internal/config"
	"github.com/gehenna/gehenna/internal/database"
	"github.com/gehenna/gehenna/internal/gateway"
	"github.com/gehenna/gehenna/internal/names/service"
	"github.com/gehenna/gehenna/internal/storage"
	"github.com/gehenna/gehenna/pkg/logger"
	"github.com/gehenna/gehenna/pkg/metrics"
)

const mongoStartupAttempts = 5

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	return reg
}

func setGinMode(cfg *config.Config) {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// RunRegistry serves the name registry until ctx is cancelled. An unreachable
// store does not stop startup; requests report 503 until it comes back.
func RunRegistry(ctx context.Context, cfg *config.Config) error {
	setGinMode(cfg)
	logger.Log(logger.LevelInfo).
		Str("addr", cfg.Server.Addr()).
		Str("database", cfg.MongoDB.Database).
		Str("collection", cfg.MongoDB.Collection).
		Bool("redis", cfg.RedisAddr() != "").
		Bool("minio", cfg.MinIO.Endpoint != "").
		Msg("registry starting")

	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := database.WaitForMongo(ctx, client, cfg.MongoDB.Timeout, mongoStartupAttempts); err != nil {
		logger.Warnf("starting without MongoDB at %s: %v", cfg.MongoDB.URI, err)
	} else {
		logger.Infof("connected to MongoDB")
	}

	col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
	svc := service.NewMongoService(ctx, col, cfg.MongoDB.Timeout, service.Options{MaxResults: cfg.MongoDB.MaxResults})

	var rdb *redis.Client
	if addr := cfg.RedisAddr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis ping failed (%s): %v", addr, err)
		}
	}

	var snap *service.Snapshotter
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("snapshots disabled: %v", err)
		} else {
			snap = service.NewSnapshotter(svc, store)
		}
	}

	router := NewRegistryRouter(cfg, RegistryDeps{
		Service:     svc,
		Snapshotter: snap,
		Redis:       rdb,
		Gatherer:    newMetricsRegistry(),
	})
	return serve(ctx, cfg.Server, router, "registry")
}

// RunGateway serves the presentation gateway until ctx is cancelled.
func RunGateway(ctx context.Context, cfg *config.Config) error {
	setGinMode(cfg)
	logger.Log(logger.LevelInfo).
		Str("addr", cfg.Server.Addr()).
		Str("backend_url", cfg.Gateway.BackendURL).
		Dur("timeout", cfg.Gateway.Timeout).
		Msg("gateway starting")

	client := gateway.NewClient(cfg.Gateway.BackendURL, cfg.Gateway.Timeout)
	router := NewGatewayRouter(cfg, client, newMetricsRegistry())
	return serve(ctx, cfg.Server, router, "gateway")
}

func serve(ctx context.Context, sc config.ServerConfig, h http.Handler, name string) error {
	ln, err := net.Listen("tcp", sc.Addr())
	if err != nil {
		logger.Errorf("%s cannot listen on %s: %v", name, sc.Addr(), err)
		return err
	}
	server := &http.Server{
		Handler:           h,
		ReadTimeout:       sc.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      sc.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log(logger.LevelInfo).Str("service", name).Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Log(logger.LevelInfo).Str("service", name).Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			logger.Errorf("%s forced to shut down: %v", name, err)
			return err
		}
		return nil
	case err := <-errCh:
		logger.Errorf("%s HTTP server failed: %v", name, err)
		return err
	}
}
