// Package llmcall provides generation call recording and querying for
// traceability. Every model call is recorded with its prompt hash, raw
// response and token counts so a bad parse can be inspected later.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/crisrod14/destinosAI/internal/providers"
)

// Call represents a recorded generation call.
type Call struct {
	// Unique identifier
	ID string `json:"id" yaml:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	LatencyMs int       `json:"latency_ms" yaml:"latency_ms"`

	// Context references
	Location string `json:"location" yaml:"location"`
	Attempt  int    `json:"attempt" yaml:"attempt"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key" yaml:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty" yaml:"prompt_hash,omitempty"` // hash of the exact template used

	// Model info
	Provider    string   `json:"provider" yaml:"provider"`
	Model       string   `json:"model" yaml:"model"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`

	// Response
	Response string `json:"response,omitempty" yaml:"response,omitempty"`

	// Status
	Success   bool   `json:"success" yaml:"success"`
	ErrorType string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RecordOptions provides context for recording a call.
type RecordOptions struct {
	Location string
	Attempt  int

	// Prompt identification (required for traceability)
	PromptKey  string
	PromptHash string

	// Request parameters (pointer to distinguish "not set" from "set to 0")
	Temperature *float64
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           result.RequestID,
		Timestamp:    time.Now().UTC(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		Location:     opts.Location,
		Attempt:      opts.Attempt,
		PromptKey:    opts.PromptKey,
		PromptHash:   opts.PromptHash,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Temperature:  opts.Temperature,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Success:      result.Success,
	}
	if call.ID == "" {
		call.ID = uuid.New().String()
	}
	if !result.Success {
		call.ErrorType = result.ErrorType
		call.Error = result.ErrorMessage
	}
	return call
}
