// Package prompts provides prompt management with embedded defaults and
// operator overrides.
//
// Embedded .tmpl files in code are the source of truth for defaults. An
// operator may drop a file named <key>.tmpl into the override directory
// (normally ~/.destinos/prompts) to replace a default without rebuilding.
//
// Resolution order for a key:
//  1. Override file, if present
//  2. Embedded default
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: destino.user
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the result of resolving a prompt key.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`
	Hash       string   `json:"hash" yaml:"hash"`
	Source     string   `json:"source,omitempty" yaml:"source,omitempty"` // override file path
}

// Summary describes a registered prompt without its text.
type Summary struct {
	Key         string   `json:"key" yaml:"key"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Hash        string   `json:"hash" yaml:"hash"`
	IsOverride  bool     `json:"is_override" yaml:"is_override"`
}
