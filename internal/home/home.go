package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the destinos home directory.
	DefaultDirName = ".destinos"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// DBFileName is the local store.
	DBFileName = "destinos.db"

	// CredentialsFileName is the Google OAuth client or service account file.
	CredentialsFileName = "credentials.json"

	// TokenFileName is the cached OAuth user token.
	TokenFileName = "token.json"

	// PromptsDirName holds prompt template overrides.
	PromptsDirName = "prompts"
)

// Dir represents the destinos home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.destinos).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// DBPath returns the path to the SQLite database.
func (d *Dir) DBPath() string {
	return filepath.Join(d.path, DBFileName)
}

// CredentialsPath returns the path to the Google credentials file.
func (d *Dir) CredentialsPath() string {
	return filepath.Join(d.path, CredentialsFileName)
}

// TokenPath returns the path to the cached OAuth token.
func (d *Dir) TokenPath() string {
	return filepath.Join(d.path, TokenFileName)
}

// PromptsDir returns the directory for prompt overrides.
func (d *Dir) PromptsDir() string {
	return filepath.Join(d.path, PromptsDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create prompts directory (this also creates the parent)
	if err := os.MkdirAll(d.PromptsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create prompts directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
