// Package destino holds the prompts used to write destination copy.
package destino

import (
	_ "embed"
	"fmt"

	"github.com/crisrod14/destinosAI/internal/prompts"
	"github.com/crisrod14/destinosAI/internal/schema"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

// Prompt keys
const (
	SystemPromptKey = "destino.system"
	UserPromptKey   = "destino.user"
)

// UserData is the template data of the user prompt.
type UserData struct {
	Location string
	// Groups holds the generated fields, one slice per schema section.
	Groups [][]schema.Field
}

// NewUserData collects the generated fields of the registry by section.
func NewUserData(location string) UserData {
	var groups [][]schema.Field
	for _, s := range schema.Sections() {
		var group []schema.Field
		for _, f := range schema.SectionFields(s) {
			if f.Generated() {
				group = append(group, f)
			}
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return UserData{Location: location, Groups: groups}
}

// Rendered is a rendered prompt pair plus the hashes of the templates used.
type Rendered struct {
	System     string
	User       string
	SystemHash string
	UserHash   string
}

// Build resolves and renders both prompts for location.
func Build(r *prompts.Resolver, location string) (*Rendered, error) {
	sys, err := r.Resolve(SystemPromptKey)
	if err != nil {
		return nil, err
	}
	user, err := r.Resolve(UserPromptKey)
	if err != nil {
		return nil, err
	}
	data := NewUserData(location)
	sysText, err := prompts.Render(sys, data)
	if err != nil {
		return nil, fmt.Errorf("destino prompt: %w", err)
	}
	userText, err := prompts.Render(user, data)
	if err != nil {
		return nil, fmt.Errorf("destino prompt: %w", err)
	}
	return &Rendered{
		System:     sysText,
		User:       userText,
		SystemHash: sys.Hash,
		UserHash:   user.Hash,
	}, nil
}

// RegisterPrompts registers the destination prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Destination copy system prompt",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Destination copy user prompt; lists every generated field with its hint",
	})
}
