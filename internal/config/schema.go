package config

// Config holds destinos configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LogLevel   string        `mapstructure:"log_level" yaml:"log_level"` // debug, info, warn, error
	Generation GenerationCfg `mapstructure:"generation" yaml:"generation"`
	Sheets     SheetsCfg     `mapstructure:"sheets" yaml:"sheets"`
	Store      StoreCfg      `mapstructure:"store" yaml:"store"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server"`
}

// GenerationCfg configures the language model used to write records.
type GenerationCfg struct {
	Provider       string  `mapstructure:"provider" yaml:"provider"` // "openai", "gemini", "mock"
	Model          string  `mapstructure:"model" yaml:"model"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // per attempt
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`
	PromptsDir     string  `mapstructure:"prompts_dir" yaml:"prompts_dir"` // empty: {home}/prompts
}

// SheetsCfg configures the Google Sheets mirror.
type SheetsCfg struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id"` // supports ${ENV_VAR} syntax
	SheetName       string `mapstructure:"sheet_name" yaml:"sheet_name"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"` // empty: {home}/credentials.json
	TokenFile       string `mapstructure:"token_file" yaml:"token_file"`             // empty: {home}/token.json
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// StoreCfg configures the local database.
type StoreCfg struct {
	// Path is the SQLite file (default: {home}/destinos.db)
	Path string `mapstructure:"path" yaml:"path"`
}

// ServerCfg configures `destinos serve`.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Generation: GenerationCfg{
			Provider:       "openai",
			Model:          "gpt-4",
			APIKey:         "${OPENAI_API_KEY}",
			Temperature:    0.7,
			MaxTokens:      2000,
			TimeoutSeconds: 30,
			MaxRetries:     2,
		},
		Sheets: SheetsCfg{
			Enabled:        true,
			SpreadsheetID:  "${GOOGLE_DRIVE_FILE_ID}",
			SheetName:      "Destinos",
			TimeoutSeconds: 30,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}
