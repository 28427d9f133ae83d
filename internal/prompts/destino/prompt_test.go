package destino

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crisrod14/destinosAI/internal/prompts"
	"github.com/crisrod14/destinosAI/internal/schema"
)

func TestBuildListsEveryGeneratedField(t *testing.T) {
	r := prompts.NewResolver("", nil)
	RegisterPrompts(r)

	out, err := Build(r, "ARICA")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(out.User, "Genera contenido para la ciudad de ARICA.") {
		t.Errorf("user prompt does not name the location:\n%s", out.User)
	}
	for _, f := range schema.GeneratedFields() {
		line := f.Name + ": [" + f.Prompt + "]"
		if !strings.Contains(out.User, line) {
			t.Errorf("user prompt missing %q", line)
		}
	}
	if strings.Contains(out.User, "IMG_CONOCE_LA_CIUDAD_DE:") {
		t.Error("user prompt should not request image fields")
	}
	if !strings.HasPrefix(out.System, "Eres un experto") {
		t.Errorf("system prompt = %q", out.System)
	}
	if out.UserHash != prompts.HashText(userPromptTmpl) {
		t.Error("user hash does not match embedded template")
	}
}

func TestBuildUsesOverride(t *testing.T) {
	dir := t.TempDir()
	override := "Escribe sobre {{.Location}}."
	if err := os.WriteFile(filepath.Join(dir, UserPromptKey+".tmpl"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	r := prompts.NewResolver(dir, nil)
	RegisterPrompts(r)

	out, err := Build(r, "CALAMA")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if out.User != "Escribe sobre CALAMA." {
		t.Errorf("User = %q", out.User)
	}
	if out.UserHash != prompts.HashText(override) {
		t.Error("override hash not reported")
	}

	var overridden int
	for _, s := range r.List() {
		if s.IsOverride {
			overridden++
		}
	}
	if overridden != 1 {
		t.Errorf("List() reports %d overrides, want 1", overridden)
	}
}

func TestNewUserDataGroupsBySection(t *testing.T) {
	data := NewUserData("ARICA")
	total := 0
	for _, g := range data.Groups {
		if len(g) == 0 {
			t.Error("empty group")
		}
		for _, f := range g {
			if f.Section != g[0].Section {
				t.Errorf("group mixes sections %q and %q", f.Section, g[0].Section)
			}
		}
		total += len(g)
	}
	if total != len(schema.GeneratedFields()) {
		t.Errorf("groups hold %d fields, want %d", total, len(schema.GeneratedFields()))
	}
}
