package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	GeminiClientName = "gemini"

	geminiDefaultModel = "gemini-2.5-flash"
)

// GeminiConfig configures a Gemini client.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string // Optional (tests)
	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
}

// GeminiClient implements LLMClient using the Google GenAI SDK.
type GeminiClient struct {
	model  string
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = geminiDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{model: cfg.Model, client: client}, nil
}

// Name returns the client identifier.
func (c *GeminiClient) Name() string {
	return GeminiClientName
}

// Model returns the configured default model.
func (c *GeminiClient) Model() string {
	return c.model
}

// Chat sends the request as a single GenerateContent call. System messages
// become the system instruction; the other messages are joined into one
// user turn.
func (c *GeminiClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	model := req.Model
	if model == "" {
		model = c.model
	}

	result := &ChatResult{
		Provider:  GeminiClientName,
		ModelUsed: model,
		RequestID: req.RequestID,
	}

	var system, user []string
	for _, m := range req.Messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		user = append(user, m.Content)
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(strings.Join(user, "\n\n")), config)
	result.ExecutionTime = time.Since(start)
	if err != nil {
		err = mapGeminiError(err)
		result.ErrorType = ErrorType(err)
		result.ErrorMessage = err.Error()
		return result, err
	}

	text := resp.Text()
	if text == "" {
		result.ErrorType = ErrorType(ErrEmptyResponse)
		result.ErrorMessage = ErrEmptyResponse.Error()
		return result, ErrEmptyResponse
	}

	result.Success = true
	result.Content = text
	if u := resp.UsageMetadata; u != nil {
		result.PromptTokens = int(u.PromptTokenCount)
		result.CompletionTokens = int(u.CandidatesTokenCount)
		result.TotalTokens = int(u.TotalTokenCount)
	}
	return result, nil
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return err
		}
		apiErr = *ptr
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    fmt.Sprintf("Gemini rate limited: %s", apiErr.Message),
			StatusCode: apiErr.Code,
		}
	}
	return &StatusError{
		Provider:   GeminiClientName,
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
	}
}
