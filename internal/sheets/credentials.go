package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ErrNoToken is returned when an OAuth client file has no cached token.
// The consent flow that produces the token runs outside this program.
var ErrNoToken = errors.New("no cached OAuth token; authorize the sheet first")

// CredentialProvider supplies tokens for the Sheets API.
type CredentialProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// FileCredentials reads credentials from disk. CredentialsFile is either
// a service account key or an OAuth client secret; for the latter the
// user token is read from TokenFile and written back whenever it is
// refreshed.
type FileCredentials struct {
	CredentialsFile string
	TokenFile       string
}

type credentialsType struct {
	Type string `json:"type"`
}

// TokenSource implements CredentialProvider.
func (c FileCredentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", c.CredentialsFile, err)
	}

	var kind credentialsType
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", c.CredentialsFile, err)
	}
	if kind.Type == "service_account" {
		cfg, err := google.JWTConfigFromJSON(data, sheetsapi.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account: %w", err)
		}
		return cfg.TokenSource(ctx), nil
	}

	cfg, err := google.ConfigFromJSON(data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	tok, err := readToken(c.TokenFile)
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		base: cfg.TokenSource(ctx, tok),
		path: c.TokenFile,
		last: tok,
	}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, ErrNoToken
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w (%s)", ErrNoToken, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read token %s: %w", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", path, err)
	}
	return &tok, nil
}

// WriteToken stores a token as JSON with user-only permissions.
func WriteToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token %s: %w", path, err)
	}
	return nil
}

// persistingSource writes refreshed tokens back to disk.
type persistingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		if err := WriteToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok
	}
	return tok, nil
}

// StaticCredentials serves a fixed token source.
type StaticCredentials struct {
	Source oauth2.TokenSource
}

// TokenSource implements CredentialProvider.
func (c StaticCredentials) TokenSource(context.Context) (oauth2.TokenSource, error) {
	if c.Source == nil {
		return nil, ErrNoToken
	}
	return c.Source, nil
}
