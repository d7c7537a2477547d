package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8000},
		{"LogLevel", cfg.LogLevel, "info"},
		{"Environment", cfg.Environment, "development"},
		{"APIPrefix", cfg.APIPrefix, "/api/v1"},
		{"AccessTokenMinutes", cfg.AccessTokenMinutes, 60},
		{"MaxUploadSize", cfg.MaxUploadSize, int64(20 * 1024 * 1024)},
		{"StoreProvider", cfg.StoreProvider, "postgres"},
		{"CacheProvider", cfg.CacheProvider, "none"},
		{"EventsProvider", cfg.EventsProvider, "none"},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"LLMModel", cfg.LLMModel, "gpt-4o"},
		{"ChunkSize", cfg.ChunkSize, 8000},
		{"ChunkOverlap", cfg.ChunkOverlap, 200},
		{"TokenTTL", cfg.TokenTTL(), time.Hour},
		{"LLMTimeout", cfg.LLMTimeoutDuration(), time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}

	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected default origins %v", cfg.AllowedOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("API_PREFIX", "api/v2/")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CACHE_TTL", "120")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.APIPrefix != "/api/v2" {
		t.Errorf("expected normalized prefix /api/v2, got %s", cfg.APIPrefix)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production environment")
	}
	if cfg.CacheDuration() != 2*time.Minute {
		t.Errorf("expected 2m cache ttl, got %s", cfg.CacheDuration())
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "compatible")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1")

	cfg := Load()

	if cfg.LLMProvider != "compatible" {
		t.Errorf("expected LLM provider 'compatible', got %s", cfg.LLMProvider)
	}
	if cfg.LLMBaseURL != "http://localhost:11434/v1" {
		t.Errorf("unexpected base url %s", cfg.LLMBaseURL)
	}
}
