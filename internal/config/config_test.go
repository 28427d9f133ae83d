package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Generation.APIKey != "${OPENAI_API_KEY}" {
		t.Error("expected OpenAI API key placeholder")
	}
	if cfg.Sheets.SheetName != "Destinos" {
		t.Errorf("expected sheet Destinos, got %s", cfg.Sheets.SheetName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})

	t.Run("expands inside a longer value", func(t *testing.T) {
		t.Setenv("TEST_HOST", "example.com")
		if got := ResolveEnvVars("https://${TEST_HOST}/v1"); got != "https://example.com/v1" {
			t.Errorf("got %s", got)
		}
	})
}

func TestToProviderConfig(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-123")

	cfg := DefaultConfig()
	cfg.Generation.APIKey = "${TEST_OPENAI_KEY}"

	pc := cfg.ToProviderConfig()
	if pc.APIKey != "sk-123" {
		t.Errorf("expected resolved key, got %s", pc.APIKey)
	}
	if pc.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", pc.Timeout)
	}

	s := cfg.ToGenerationSettings()
	if s.Model != "gpt-4" || s.MaxTokens != 2000 || s.Temperature != 0.7 || s.MaxRetries != 2 {
		t.Errorf("unexpected settings %+v", s)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
generation:
  model: gpt-4o
sheets:
  enabled: false
`)
		mgr, err := NewManager(configFile, "")
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Generation.Model != "gpt-4o" {
			t.Errorf("expected gpt-4o, got %s", cfg.Generation.Model)
		}
		if cfg.Sheets.Enabled {
			t.Error("expected sheets disabled")
		}
		// Unset keys keep their defaults.
		if cfg.Generation.MaxTokens != 2000 {
			t.Errorf("expected default max_tokens, got %d", cfg.Generation.MaxTokens)
		}
		if mgr.ConfigFileUsed() != configFile {
			t.Errorf("ConfigFileUsed() = %s", mgr.ConfigFileUsed())
		}
	})

	t.Run("runs without a config file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().Server.Port != "8080" {
			t.Errorf("expected default port, got %s", mgr.Get().Server.Port)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		configFile := writeConfig(t, "generation:\n  model: gpt-4o\n")
		t.Setenv("DESTINOS_GENERATION_MODEL", "gpt-4.1")

		mgr, err := NewManager(configFile, "")
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if got := mgr.Get().Generation.Model; got != "gpt-4.1" {
			t.Errorf("expected env override, got %s", got)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		for _, content := range []string{
			"log_level: loud\n",
			"generation:\n  provider: cohere\n",
			"generation:\n  temperature: 3\n",
			"server:\n  port: http\n",
		} {
			if _, err := NewManager(writeConfig(t, content), ""); err == nil {
				t.Errorf("expected error for %q", content)
			}
		}
	})
}

func TestManager_Value(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "server:\n  port: \"9090\"\n"), "")
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	v, err := mgr.Value("server.port")
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != "9090" {
		t.Errorf("server.port = %v", v)
	}
	if _, err := mgr.Value("bad key"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := mgr.Value("nope.nothing"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey for unknown key, got %v", err)
	}
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"), "")
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"), "")
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.Generation.Model
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, "generation:\n  model: initial-model\n")

	mgr, err := NewManager(configFile, "")
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	mgr.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if got := mgr.Get().Generation.Model; got != "initial-model" {
		t.Errorf("initial value mismatch: got %s", got)
	}

	var callbackCount atomic.Int32
	var lastValue atomic.Value

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(cfg.Generation.Model)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("generation:\n  model: updated-model\n"), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if got := mgr.Get().Generation.Model; got != "updated-model" {
		t.Errorf("config not updated: got %s", got)
	}
	if v := lastValue.Load(); v != "updated-model" {
		t.Errorf("callback received wrong value: got %v", v)
	}
}

func TestDefaultEntries(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range DefaultEntries() {
		if err := ValidateKey(e.Key); err != nil {
			t.Errorf("invalid key %q: %v", e.Key, err)
		}
		if seen[e.Key] {
			t.Errorf("duplicate key %q", e.Key)
		}
		seen[e.Key] = true
		if e.Description == "" {
			t.Errorf("key %q has no description", e.Key)
		}
	}

	v, err := GetDefault("generation.max_retries")
	if err != nil || v != 2 {
		t.Errorf("GetDefault(generation.max_retries) = %v, %v", v, err)
	}
	if _, err := GetDefault("generation.unknown"); !errors.Is(err, ErrNoDefault) {
		t.Errorf("expected ErrNoDefault, got %v", err)
	}
	if len(Keys()) != len(DefaultEntries()) {
		t.Error("Keys() and DefaultEntries() disagree")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"generation.model", false},
		{"sheets.spreadsheet_id", false},
		{"", true},
		{".leading", true},
		{"trailing.", true},
		{"has space", true},
		{"semi;colon", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path, "")
	if err != nil {
		t.Fatalf("written default does not load: %v", err)
	}
	if got := mgr.Get().Generation.Provider; got != "openai" {
		t.Errorf("provider = %s", got)
	}
}
