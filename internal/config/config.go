package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Server
	Port           int      `env:"PORT" envDefault:"8000"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"development"`
	AppName        string   `env:"APP_NAME" envDefault:"AI Content Assistant"`
	APIPrefix      string   `env:"API_PREFIX" envDefault:"/api/v1"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Auth
	JWTSecret          string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	AccessTokenMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"20971520"` // 20MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"`
	DBURL         string `env:"DB_URL"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Events
	EventsProvider string `env:"EVENTS_PROVIDER" envDefault:"none"` // "none" or "nats"
	NATSURL        string `env:"NATS_URL"`

	// LLM
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" or "compatible"
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	LLMBaseURL  string `env:"LLM_BASE_URL"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMTimeout  int    `env:"LLM_TIMEOUT" envDefault:"60"` // seconds

	// Pipeline
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"8000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"200"`
	FetchTimeout int `env:"FETCH_TIMEOUT" envDefault:"30"` // seconds
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	cfg.APIPrefix = "/" + strings.Trim(cfg.APIPrefix, "/")
	return cfg
}

func (c Config) IsDevelopment() bool { return c.Environment == "development" }

func (c Config) TokenTTL() time.Duration { return time.Duration(c.AccessTokenMinutes) * time.Minute }

func (c Config) CacheDuration() time.Duration { return time.Duration(c.CacheTTL) * time.Second }

func (c Config) LLMTimeoutDuration() time.Duration { return time.Duration(c.LLMTimeout) * time.Second }

func (c Config) FetchTimeoutDuration() time.Duration { return time.Duration(c.FetchTimeout) * time.Second }
