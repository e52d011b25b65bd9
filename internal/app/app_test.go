package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gehenna/gehenna/internal/config"
	"github.com/gehenna/gehenna/internal/names"
	"github.com/gehenna/gehenna/internal/names/service"
	"github.com/gehenna/gehenna/pkg/logger"
	"github.com/gehenna/gehenna/pkg/metrics"
	"github.com/gehenna/gehenna/pkg/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            "0",
			Host:            "127.0.0.1",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		MongoDB: config.MongoDBConfig{Timeout: time.Second, MaxResults: 1000},
		Gateway: config.GatewayConfig{BackendURL: "http://127.0.0.1:1", Timeout: time.Second},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func call(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRegistryRouter_EndToEnd(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	r := NewRegistryRouter(testConfig(), RegistryDeps{Service: service.NewMemoryService(), Gatherer: reg})

	w := call(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/api/add/John").Code)
	require.Equal(t, http.StatusConflict, call(r, http.MethodPost, "/api/add/John").Code)
	require.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/api/add/J0hn").Code)

	w = call(r, http.MethodGet, "/api/get")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `["John"]`, w.Body.String())

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/swagger/doc.json").Code)

	w = call(r, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gehenna_name_operations_total")
	assert.Contains(t, w.Body.String(), "gehenna_http_requests_total")

	// no snapshot route without object storage
	require.Equal(t, http.StatusNotFound, call(r, http.MethodPost, "/api/snapshot").Code)
}

func TestRegistryRouter_ErrorBodies(t *testing.T) {
	cfg := testConfig()
	r := NewRegistryRouter(cfg, RegistryDeps{Service: service.NewMemoryService()})
	w := call(r, http.MethodDelete, "/api/delete/Nobody")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"'Nobody' not found"}`, w.Body.String())

	cfg.Server.Debug = true
	r = NewRegistryRouter(cfg, RegistryDeps{Service: service.NewMemoryService()})
	w = call(r, http.MethodDelete, "/api/delete/Nobody")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"detail"`)
}

func TestRegistryRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	r := NewRegistryRouter(cfg, RegistryDeps{Service: service.NewMemoryService()})

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/get").Code)
	require.Equal(t, http.StatusTooManyRequests, call(r, http.MethodGet, "/api/get").Code)
}

func TestRegistryRouter_RedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, UseRedis: true, RPS: 1, Burst: 0, WindowSeconds: 60}
	r := NewRegistryRouter(cfg, RegistryDeps{Service: service.NewMemoryService(), Redis: rdb})

	codes := []int{}
	for i := 0; i < 70; i++ {
		codes = append(codes, call(r, http.MethodGet, "/").Code)
	}
	require.Contains(t, codes, http.StatusTooManyRequests)
}

type stubFetcher struct{ list []string }

func (s stubFetcher) FetchNames(ctx context.Context) ([]string, error) {
	if s.list == nil {
		return nil, names.ErrUpstreamUnavailable
	}
	return s.list, nil
}

func TestGatewayRouter(t *testing.T) {
	r := NewGatewayRouter(testConfig(), stubFetcher{list: []string{"Jane"}}, nil)
	w := call(r, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane")

	r = NewGatewayRouter(testConfig(), stubFetcher{}, nil)
	w = call(r, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No entries found")

	require.JSONEq(t, `{"status":"ok"}`, call(r, http.MethodGet, "/health").Body.String())
	require.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/metrics").Code)
}

func TestRunGateway_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunGateway(ctx, testConfig()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("gateway did not shut down")
	}
}

func TestRunGateway_ListenError(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	cfg := testConfig()
	cfg.Server.Port = "-1"
	require.Error(t, RunGateway(context.Background(), cfg))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), "gateway cannot listen")
}

func TestEngine_PanicsAreLoggedAndCounted(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	r := newEngine(testConfig(), nil)
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/boom", "500")
	before := testutil.ToFloat64(counter)

	w := call(r, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "kaboom")

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	out := buf.String()
	assert.Contains(t, out, `"message":"recovered from panic"`)
	assert.Contains(t, out, `"message":"request"`)
	assert.Contains(t, out, `"status":500`)
}

func TestEngine_UnknownRouteIsJSON(t *testing.T) {
	r := NewRegistryRouter(testConfig(), RegistryDeps{Service: service.NewMemoryService()})
	for _, tc := range []struct{ method, path string }{
		{http.MethodDelete, "/api/delete/"},
		{http.MethodGet, "/api/nope"},
		{http.MethodPost, "/api/snapshot"},
	} {
		w := call(r, tc.method, tc.path)
		require.Equal(t, http.StatusNotFound, w.Code, tc.path)
		require.Contains(t, w.Header().Get("Content-Type"), "application/json", tc.path)
		require.JSONEq(t, `{"error":"Route not found"}`, w.Body.String(), tc.path)
	}

	g := NewGatewayRouter(testConfig(), stubFetcher{list: []string{}}, nil)
	w := call(g, http.MethodGet, "/missing")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}

func TestRunRegistry_InvalidMongoURI(t *testing.T) {
	cfg := testConfig()
	cfg.MongoDB.URI = "not-a-mongo-uri"
	require.Error(t, RunRegistry(context.Background(), cfg))
}
