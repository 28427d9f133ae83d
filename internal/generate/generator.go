package generate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/crisrod14/destinosAI/internal/llmcall"
	"github.com/crisrod14/destinosAI/internal/prompts"
	"github.com/crisrod14/destinosAI/internal/prompts/destino"
	"github.com/crisrod14/destinosAI/internal/providers"
	"github.com/crisrod14/destinosAI/internal/schema"
)

// ErrUnavailable wraps every failure of the generation collaborator.
var ErrUnavailable = errors.New("generation service unavailable")

// Settings are the per-call generation parameters.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // per attempt
	MaxRetries  int           // extra attempts for transient failures
	RetryDelay  time.Duration
}

// DefaultSettings returns the parameters the content team tuned the
// prompt against.
func DefaultSettings() Settings {
	return Settings{
		Model:       "gpt-4",
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     30 * time.Second,
		MaxRetries:  2,
		RetryDelay:  time.Second,
	}
}

// Result is a generated record plus operator warnings.
type Result struct {
	Record    schema.Record `json:"record"`
	Warnings  []string      `json:"warnings,omitempty"`
	RequestID string        `json:"request_id"`
	Attempts  int           `json:"attempts"`
	Parsed    int           `json:"parsed_fields"`
}

// Generator writes destination records with a language model.
type Generator struct {
	providers *providers.Registry
	prompts   *prompts.Resolver
	recorder  *llmcall.Recorder
	sanitize  *bluemonday.Policy
	logger    *slog.Logger

	mu       sync.RWMutex
	settings Settings
}

// Config holds Generator dependencies.
type Config struct {
	Providers *providers.Registry
	Prompts   *prompts.Resolver // nil uses embedded prompts only
	Recorder  *llmcall.Recorder // nil disables call recording
	Settings  Settings
	Logger    *slog.Logger
}

// New creates a Generator.
func New(cfg Config) *Generator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Prompts == nil {
		cfg.Prompts = prompts.NewResolver("", cfg.Logger)
	}
	if _, ok := cfg.Prompts.GetEmbedded(destino.UserPromptKey); !ok {
		destino.RegisterPrompts(cfg.Prompts)
	}
	return &Generator{
		providers: cfg.Providers,
		prompts:   cfg.Prompts,
		recorder:  cfg.Recorder,
		sanitize:  bluemonday.StrictPolicy(),
		logger:    cfg.Logger,
		settings:  withDefaults(cfg.Settings),
	}
}

func withDefaults(s Settings) Settings {
	d := DefaultSettings()
	if s.Model == "" {
		s.Model = d.Model
	}
	if s.Temperature <= 0 {
		s.Temperature = d.Temperature
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = d.MaxTokens
	}
	if s.Timeout <= 0 {
		s.Timeout = d.Timeout
	}
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.RetryDelay <= 0 {
		s.RetryDelay = d.RetryDelay
	}
	return s
}

// SetSettings replaces the generation parameters. Safe to call while a
// generation runs; the new values apply to the next call.
func (g *Generator) SetSettings(s Settings) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settings = withDefaults(s)
}

// Settings returns the current generation parameters.
func (g *Generator) Settings() Settings {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.settings
}

// Generate asks the model for a record for location. A failed call returns
// an error wrapping ErrUnavailable; missing fields are not an error and
// are reported in Result.Warnings instead.
func (g *Generator) Generate(ctx context.Context, location string) (*Result, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}
	settings := g.Settings()

	client, err := g.providers.Active()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	rendered, err := destino.Build(g.prompts, location)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	temp := settings.Temperature
	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: rendered.System},
			{Role: "user", Content: rendered.User},
		},
		Model:       settings.Model,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
		RequestID:   requestID,
	}

	logger := g.logger.With("location", location, "request_id", requestID, "provider", client.Name())
	logger.Info("generating destination content", "model", settings.Model)

	var result *providers.ChatResult
	attempts := 0
	err = retry.Do(
		func() error {
			attempts++
			callCtx, cancel := context.WithTimeout(ctx, settings.Timeout)
			defer cancel()

			res, err := client.Chat(callCtx, req)
			if res == nil {
				res = &providers.ChatResult{
					Provider:  client.Name(),
					ModelUsed: settings.Model,
					RequestID: requestID,
				}
				if err != nil {
					res.ErrorType = providers.ErrorType(err)
					res.ErrorMessage = err.Error()
				}
			}
			res.RequestID = fmt.Sprintf("%s-%d", requestID, attempts)
			g.recorder.Record(ctx, res, llmcall.RecordOptions{
				Location:    location,
				Attempt:     attempts,
				PromptKey:   destino.UserPromptKey,
				PromptHash:  rendered.UserHash,
				Temperature: &temp,
			})
			if err != nil {
				logger.Warn("generation attempt failed", "attempt", attempts, "error", err)
				return err
			}
			result = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(settings.MaxRetries+1)),
		retry.Delay(settings.RetryDelay),
		retry.DelayType(retryAfterDelay),
		retry.RetryIf(providers.IsTransient),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	parsed := Parse(result.Content)
	values := make(map[string]string, len(parsed)+1)
	for name, v := range parsed {
		values[name] = g.clean(v)
	}
	values[schema.LocationField] = location

	record := schema.Normalize(values, location)
	out := &Result{
		Record:    record,
		Warnings:  record.EmptyMandatory(),
		RequestID: requestID,
		Attempts:  attempts,
		Parsed:    len(parsed),
	}
	if len(out.Warnings) > 0 {
		logger.Warn("generated record has empty mandatory fields", "fields", out.Warnings)
	}
	logger.Info("generated destination content",
		"parsed_fields", len(parsed),
		"attempts", attempts,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens)
	return out, nil
}

// clean strips markup from generated copy and restores the characters
// the sanitizer escaped.
func (g *Generator) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(g.sanitize.Sanitize(v)))
}

// retryAfterDelay honors a provider Retry-After hint and falls back to
// exponential backoff.
func retryAfterDelay(n uint, err error, config *retry.Config) time.Duration {
	if rle, ok := providers.IsRateLimitError(err); ok && rle.RetryAfter > 0 {
		return rle.RetryAfter
	}
	return retry.BackOffDelay(n, err, config)
}
