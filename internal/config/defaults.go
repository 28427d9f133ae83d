package config

import (
	"errors"
	"fmt"
	"sort"
	"unicode"
)

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// ErrInvalidKey is returned when a config key contains invalid characters.
var ErrInvalidKey = errors.New("invalid config key")

// Entry is one documented configuration key.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns every configuration key with its default value.
// The manager registers these with viper so each key can be overridden by
// a DESTINOS_ environment variable.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		{
			Key:         "log_level",
			Value:       d.LogLevel,
			Description: "Log level: debug, info, warn or error",
		},

		// ===================
		// Generation
		// ===================
		{
			Key:         "generation.provider",
			Value:       d.Generation.Provider,
			Description: "Generation provider: openai, gemini or mock",
		},
		{
			Key:         "generation.model",
			Value:       d.Generation.Model,
			Description: "Model name sent to the provider",
		},
		{
			Key:         "generation.api_key",
			Value:       d.Generation.APIKey,
			Description: "Provider API key (uses environment variable)",
		},
		{
			Key:         "generation.base_url",
			Value:       d.Generation.BaseURL,
			Description: "Optional API base URL override",
		},
		{
			Key:         "generation.temperature",
			Value:       d.Generation.Temperature,
			Description: "Sampling temperature; 0 uses the default 0.7",
		},
		{
			Key:         "generation.max_tokens",
			Value:       d.Generation.MaxTokens,
			Description: "Maximum tokens in the generated response",
		},
		{
			Key:         "generation.timeout_seconds",
			Value:       d.Generation.TimeoutSeconds,
			Description: "Timeout for each generation attempt",
		},
		{
			Key:         "generation.max_retries",
			Value:       d.Generation.MaxRetries,
			Description: "Extra attempts after a transient generation failure",
		},
		{
			Key:         "generation.prompts_dir",
			Value:       d.Generation.PromptsDir,
			Description: "Directory with prompt overrides (default: {home}/prompts)",
		},

		// ===================
		// Sheets mirror
		// ===================
		{
			Key:         "sheets.enabled",
			Value:       d.Sheets.Enabled,
			Description: "Mirror the record set to Google Sheets",
		},
		{
			Key:         "sheets.spreadsheet_id",
			Value:       d.Sheets.SpreadsheetID,
			Description: "Spreadsheet identifier (uses environment variable)",
		},
		{
			Key:         "sheets.sheet_name",
			Value:       d.Sheets.SheetName,
			Description: "Tab the records are written to and read from",
		},
		{
			Key:         "sheets.credentials_file",
			Value:       d.Sheets.CredentialsFile,
			Description: "OAuth client or service account JSON (default: {home}/credentials.json)",
		},
		{
			Key:         "sheets.token_file",
			Value:       d.Sheets.TokenFile,
			Description: "Cached OAuth token (default: {home}/token.json)",
		},
		{
			Key:         "sheets.timeout_seconds",
			Value:       d.Sheets.TimeoutSeconds,
			Description: "Timeout for each Sheets API call",
		},

		// ===================
		// Store and server
		// ===================
		{
			Key:         "store.path",
			Value:       d.Store.Path,
			Description: "SQLite database file (default: {home}/destinos.db)",
		},
		{
			Key:         "server.host",
			Value:       d.Server.Host,
			Description: "Address the HTTP server binds to",
		},
		{
			Key:         "server.port",
			Value:       d.Server.Port,
			Description: "Port the HTTP server listens on",
		},
	}
}

// GetDefault returns the default value for key.
func GetDefault(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	for _, e := range DefaultEntries() {
		if e.Key == key {
			return e.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDefault, key)
}

// Keys returns every known key, sorted.
func Keys() []string {
	entries := DefaultEntries()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys
}

// ValidateKey checks if a config key contains only allowed characters.
// Valid keys contain: letters, digits, dots, underscores, and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	if key[0] == '.' || key[len(key)-1] == '.' {
		return fmt.Errorf("%w: key cannot start or end with a dot", ErrInvalidKey)
	}
	return nil
}
