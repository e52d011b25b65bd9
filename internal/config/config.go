package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	RegistryPort = "8002"
	GatewayPort  = "8001"
)

// Config holds application configuration for both the registry and the gateway.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Gateway   GatewayConfig
	CORS      CORSConfig
	MinIO     MinIOConfig
	LogLevel  string
}

type ServerConfig struct {
	Port            string
	Host            string
	Debug           bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
	MaxResults int64
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type GatewayConfig struct {
	BackendURL string
	Timeout    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}

// LoadConfig loads configuration from environment variables and an optional .env
// file. defaultPort is used when PORT is unset (RegistryPort or GatewayPort).
func LoadConfig(defaultPort string) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", defaultPort)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_DATABASE", "gehenna")
	v.SetDefault("MONGO_COLLECTION", "names")
	v.SetDefault("MONGO_TIMEOUT", 5)
	v.SetDefault("MONGO_MAX_RESULTS", 1000)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("BACKEND_URL", "http://localhost:"+RegistryPort)
	v.SetDefault("GATEWAY_TIMEOUT", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MINIO_BUCKET", "gehenna")

	// MONGODB_URI is accepted as an alias of MONGO_URL
	mongoURL := v.GetString("MONGO_URL")
	if mongoURL == "" {
		mongoURL = v.GetString("MONGODB_URI")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			Host:            v.GetString("HOST"),
			Debug:           v.GetBool("DEBUG"),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:        NormalizeMongoURI(mongoURL),
			Database:   v.GetString("MONGO_DATABASE"),
			Collection: v.GetString("MONGO_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGO_TIMEOUT")) * time.Second,
			MaxResults: v.GetInt64("MONGO_MAX_RESULTS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Gateway: GatewayConfig{
			BackendURL: strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
			Timeout:    time.Duration(v.GetInt("GATEWAY_TIMEOUT")) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("config: PORT must not be empty")
	}
	if c.MongoDB.Timeout <= 0 {
		return fmt.Errorf("config: MONGO_TIMEOUT must be positive")
	}
	if c.MongoDB.MaxResults <= 0 {
		return fmt.Errorf("config: MONGO_MAX_RESULTS must be positive")
	}
	if c.MongoDB.Database == "" || c.MongoDB.Collection == "" {
		return fmt.Errorf("config: MONGO_DATABASE and MONGO_COLLECTION are required")
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("config: GATEWAY_TIMEOUT must be positive")
	}
	u, err := url.Parse(c.Gateway.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: BACKEND_URL %q is not an absolute URL", c.Gateway.BackendURL)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 0) {
		return fmt.Errorf("config: RATE_LIMIT_RPS must be positive and RATE_LIMIT_BURST non-negative")
	}
	return nil
}

// NormalizeMongoURI turns a bare host ("localhost", "mongo:27018") into a
// mongodb:// URI on the standard port. Full URIs are returned unchanged.
func NormalizeMongoURI(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		s = "localhost"
	}
	if strings.HasPrefix(s, "mongodb://") || strings.HasPrefix(s, "mongodb+srv://") {
		return s
	}
	if !strings.Contains(s, ":") {
		s += ":27017"
	}
	return "mongodb://" + s
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
