package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"content-assistant/internal/assistant"
	"content-assistant/internal/auth"
	"content-assistant/internal/cache"
	"content-assistant/internal/chunker"
	"content-assistant/internal/config"
	"content-assistant/internal/document"
	"content-assistant/internal/events"
	"content-assistant/internal/llm"
	"content-assistant/internal/logger"
	"content-assistant/internal/metrics"
	"content-assistant/internal/store"
)

// Deps bundles the runtime dependencies of the API server.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Store     store.Store
	Cache     cache.Cache
	Events    events.Publisher
	Assistant *assistant.Service
	Tokens    *auth.Issuer
	Metrics   *metrics.Metrics
}

// Close releases connections held by the dependencies.
func (d Deps) Close() {
	closers := map[string]func() error{}
	if d.Events != nil {
		closers["events"] = d.Events.Close
	}
	if d.Cache != nil {
		closers["cache"] = d.Cache.Close
	}
	if d.Store != nil {
		closers["store"] = d.Store.Close
	}
	for name, closeFn := range closers {
		if err := closeFn(); err != nil {
			d.Log.Warn("close failed", "component", name, "err", err)
		}
	}
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return config.Load(), nil
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	deps, err := assemble(cfg, log, metrics.New(), st)
	if err != nil {
		return Deps{}, err
	}
	if cfg.IsDevelopment() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := SeedDevUser(ctx, st, log); err != nil {
			log.Warn("failed to seed development user", "err", err)
		}
	}
	return deps, nil
}

// assemble builds the remaining components around an open store. On failure
// everything opened so far, the store included, is closed.
func assemble(cfg config.Config, log *slog.Logger, m *metrics.Metrics, st store.Store) (Deps, error) {
	deps := Deps{Config: cfg, Log: log, Store: st, Metrics: m}
	fail := func(err error) (Deps, error) {
		deps.Close()
		return Deps{}, err
	}

	deps.Cache = buildCache(cfg, log)
	ev, err := buildEvents(cfg, log)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize events: %w", err))
	}
	deps.Events = ev
	svc, err := NewAssistant(cfg, log, m)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize assistant: %w", err))
	}
	deps.Assistant = svc
	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		return fail(fmt.Errorf("failed to initialize tokens: %w", err))
	}
	deps.Tokens = tokens
	return deps, nil
}

// NewAssistant wires the completion backend, document parser and web
// fetcher into a pipeline service.
func NewAssistant(cfg config.Config, log *slog.Logger, m *metrics.Metrics) (*assistant.Service, error) {
	completer, provider, err := buildLLM(cfg, log)
	if err != nil {
		return nil, err
	}
	var obs llm.Observer
	var rec assistant.Recorder
	if m != nil {
		obs, rec = m, m
	}
	return assistant.NewService(
		llm.Instrumented(provider, completer, obs),
		document.NewPDFParser(),
		assistant.WithChunkOptions(chunker.Options{MaxSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}),
		assistant.WithFetcher(document.NewURLFetcher(cfg.FetchTimeoutDuration())),
		assistant.WithLogger(log),
		assistant.WithRecorder(rec),
	), nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

// buildCache never fails: an unreachable Redis degrades to no caching.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis result cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheDuration())
		return c
	case "none", "":
		return cache.NewNoOpCache()
	default:
		log.Warn("unknown CACHE_PROVIDER, caching disabled", "provider", cfg.CacheProvider)
		return cache.NewNoOpCache()
	}
}

func buildEvents(cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsProvider {
	case "nats":
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when EVENTS_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("publishing events to NATS")
		return events.NewNATS(log, nc), nil
	case "none", "":
		return events.NoOp{}, nil
	default:
		return nil, fmt.Errorf("invalid EVENTS_PROVIDER: %s (valid options: none, nats)", cfg.EventsProvider)
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Completer, string, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel), cfg.LLMTimeoutDuration())
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, "openai", nil
	case "compatible":
		client, err := llm.NewLangChainClient(cfg.LLMBaseURL, cfg.OpenAIKey, cfg.LLMModel, cfg.LLMTimeoutDuration())
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize compatible LLM client: %w", err)
		}
		log.Info("using OpenAI-compatible LLM client", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
		return client, "compatible", nil
	default:
		return nil, "", fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, compatible)", cfg.LLMProvider)
	}
}
