package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(RegistryPort)
	require.NoError(t, err)

	require.Equal(t, "8002", cfg.Server.Port)
	require.Equal(t, "0.0.0.0:8002", cfg.Server.Addr())
	require.False(t, cfg.Server.Debug)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	require.Equal(t, "gehenna", cfg.MongoDB.Database)
	require.Equal(t, "names", cfg.MongoDB.Collection)
	require.Equal(t, 5*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, int64(1000), cfg.MongoDB.MaxResults)
	require.Equal(t, "http://localhost:8002", cfg.Gateway.BackendURL)
	require.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	require.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	require.Empty(t, cfg.RedisAddr())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("MONGO_URL", "mongodb://db.internal:27018/?replicaSet=rs0")
	t.Setenv("MONGO_DATABASE", "gehenna_test")
	t.Setenv("MONGO_MAX_RESULTS", "25")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("BACKEND_URL", "http://backend:8002/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := LoadConfig(GatewayPort)
	require.NoError(t, err)

	require.Equal(t, "9000", cfg.Server.Port)
	require.True(t, cfg.Server.Debug)
	require.Equal(t, "mongodb://db.internal:27018/?replicaSet=rs0", cfg.MongoDB.URI)
	require.Equal(t, "gehenna_test", cfg.MongoDB.Database)
	require.Equal(t, int64(25), cfg.MongoDB.MaxResults)
	require.Equal(t, "cache:6379", cfg.RedisAddr())
	require.Equal(t, "http://backend:8002", cfg.Gateway.BackendURL)
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_MongoURIAlias(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://legacy:27017")
	cfg, err := LoadConfig(RegistryPort)
	require.NoError(t, err)
	require.Equal(t, "mongodb://legacy:27017", cfg.MongoDB.URI)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("BACKEND_URL", "not a url")
	_, err := LoadConfig(GatewayPort)
	require.Error(t, err)
}

func TestLoadConfig_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "0")
	_, err := LoadConfig(RegistryPort)
	require.Error(t, err)
}

func TestNormalizeMongoURI(t *testing.T) {
	cases := map[string]string{
		"":                          "mongodb://localhost:27017",
		"localhost":                 "mongodb://localhost:27017",
		"mongo":                     "mongodb://mongo:27017",
		"mongo:27018":               "mongodb://mongo:27018",
		"mongodb://u:p@h:1/db":      "mongodb://u:p@h:1/db",
		"mongodb+srv://cluster.x/y": "mongodb+srv://cluster.x/y",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeMongoURI(in), "input %q", in)
	}
}
