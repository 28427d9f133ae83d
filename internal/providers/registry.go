package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNotConfigured is returned when no generation provider is usable.
var ErrNotConfigured = errors.New("generation provider not configured")

// Config selects and configures the generation provider.
// It mirrors config.GenerationConfig with the API key already resolved.
type Config struct {
	Provider string // "openai", "gemini" or "mock"
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Registry holds the active LLM client. It supports config-driven
// instantiation and hot-reload, and provides thread-safe access.
type Registry struct {
	mu     sync.RWMutex
	client LLMClient
	cfg    Config
	err    error
	logger *slog.Logger
}

// NewRegistry creates a registry serving a fixed client. Used by tests.
func NewRegistry(client LLMClient) *Registry {
	return &Registry{client: client, logger: slog.Default()}
}

// NewRegistryFromConfig creates a registry with the provider from cfg.
// A provider that cannot be built is remembered and reported by Active.
func NewRegistryFromConfig(ctx context.Context, cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger}
	r.Reload(ctx, cfg)
	return r
}

// Reload rebuilds the client when the configuration changed.
func (r *Registry) Reload(ctx context.Context, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil && r.cfg == cfg {
		return
	}
	client, err := NewClient(ctx, cfg)
	r.cfg = cfg
	r.client = client
	r.err = err
	if err != nil {
		r.logger.Warn("generation provider unavailable", "provider", cfg.Provider, "error", err)
		return
	}
	r.logger.Info("registered LLM client", "name", client.Name(), "model", cfg.Model)
}

// Active returns the current client.
func (r *Registry) Active() (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.client == nil {
		if r.err != nil {
			return nil, r.err
		}
		return nil, ErrNotConfigured
	}
	return r.client, nil
}

// NewClient builds the client named by cfg.Provider.
func NewClient(ctx context.Context, cfg Config) (LLMClient, error) {
	switch cfg.Provider {
	case "", OpenAIClientName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai api_key is empty", ErrNotConfigured)
		}
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	case GeminiClientName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: gemini api_key is empty", ErrNotConfigured)
		}
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case MockClientName:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, cfg.Provider)
	}
}
