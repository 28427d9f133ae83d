package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crisrod14/destinosAI/internal/providers"
	"github.com/crisrod14/destinosAI/internal/schema"
)

const aricaResponse = `Aquí tienes el contenido:

DESCRIP_CONOCE_LA_CIUDAD_DE: Arica, la <b>ciudad de la eterna primavera</b>,
se ubica en el extremo norte de Chile.

SUBTITLE_ACERCA_DEL_AEROPUERTO: Aeropuerto Chacalluta
DESCRIP_ACERCA_DEL_AEROPUERTO: A 18 km del centro & con buses.
DESCRIP_QUE_HACER_EN: Playas, Morro de Arica y "Cuevas de Anzota".
DESCRIP_CUANDO_IR_A: Todo el año.
DESCRIP_DATOS_IMPORTANTES: Moneda CLP.`

func newTestGenerator(client providers.LLMClient, s Settings) *Generator {
	return New(Config{
		Providers: providers.NewRegistry(client),
		Settings:  s,
	})
}

func fastSettings() Settings {
	s := DefaultSettings()
	s.RetryDelay = time.Millisecond
	s.Timeout = 5 * time.Second
	return s
}

func TestGenerateBuildsNormalizedRecord(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = aricaResponse
	g := newTestGenerator(mock, fastSettings())

	res, err := g.Generate(context.Background(), " ARICA ")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	r := res.Record
	if r.Location() != "ARICA" {
		t.Errorf("Location = %q", r.Location())
	}
	if got := r.Get("DESCRIP_CONOCE_LA_CIUDAD_DE"); got != "Arica, la ciudad de la eterna primavera, se ubica en el extremo norte de Chile." {
		t.Errorf("DESCRIP_CONOCE_LA_CIUDAD_DE = %q", got)
	}
	if got := r.Get("DESCRIP_ACERCA_DEL_AEROPUERTO"); got != "A 18 km del centro & con buses." {
		t.Errorf("sanitizer mangled entities: %q", got)
	}
	if got := r.Get("DESCRIP_QUE_HACER_EN"); !strings.Contains(got, `"Cuevas de Anzota"`) {
		t.Errorf("quotes not preserved: %q", got)
	}
	if got := r.Get("NAV_QUE_HACER_EN"); got != "ARICA" {
		t.Errorf("NAV_QUE_HACER_EN default = %q", got)
	}
	if got := r.Get("IMG_QUE_HACER_EN"); got != schema.ImagePlaceholder {
		t.Errorf("IMG_QUE_HACER_EN default = %q", got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if res.Attempts != 1 || res.Parsed != 6 {
		t.Errorf("Attempts = %d, Parsed = %d", res.Attempts, res.Parsed)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Model != "gpt-4" || reqs[0].MaxTokens != 2000 || reqs[0].Temperature != 0.7 {
		t.Errorf("unexpected request parameters: %+v", reqs[0])
	}
	if !strings.Contains(reqs[0].Messages[1].Content, "la ciudad de ARICA") {
		t.Error("user prompt does not mention the location")
	}
}

func TestGenerateCannotOverrideLocation(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "LOCATION: OTRA\nDESCRIP_CUANDO_IR_A: Verano"
	g := newTestGenerator(mock, fastSettings())

	res, err := g.Generate(context.Background(), "IQUIQUE")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Record.Location() != "IQUIQUE" {
		t.Errorf("Location = %q", res.Record.Location())
	}
}

func TestGenerateWarnsOnEmptyMandatoryFields(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "Lo siento, no puedo ayudar con eso."
	g := newTestGenerator(mock, fastSettings())

	res, err := g.Generate(context.Background(), "CALAMA")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(res.Warnings) != len(schema.MandatoryFields()) {
		t.Errorf("Warnings = %v", res.Warnings)
	}
	if res.Parsed != 0 {
		t.Errorf("Parsed = %d", res.Parsed)
	}
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = aricaResponse
	mock.FailTimes = 2
	mock.Err = &providers.StatusError{Provider: "mock", StatusCode: 503}
	g := newTestGenerator(mock, fastSettings())

	res, err := g.Generate(context.Background(), "ARICA")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
}

func TestGenerateFailure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int64
	}{
		{"permanent", &providers.StatusError{Provider: "mock", StatusCode: 401}, 1},
		{"transient exhausted", &providers.StatusError{Provider: "mock", StatusCode: 500}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.ShouldFail = true
			mock.Err = tt.err
			g := newTestGenerator(mock, fastSettings())

			_, err := g.Generate(context.Background(), "ARICA")
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
			var se *providers.StatusError
			if !errors.As(err, &se) {
				t.Errorf("cause lost: %v", err)
			}
			if mock.RequestCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.RequestCount(), tt.wantCalls)
			}
		})
	}
}

func TestGenerateWithoutProvider(t *testing.T) {
	g := New(Config{Providers: providers.NewRegistry(nil)})
	_, err := g.Generate(context.Background(), "ARICA")
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, providers.ErrNotConfigured) {
		t.Fatalf("expected ErrUnavailable wrapping ErrNotConfigured, got %v", err)
	}
}

func TestGenerateRejectsEmptyLocation(t *testing.T) {
	g := newTestGenerator(providers.NewMockClient(), fastSettings())
	if _, err := g.Generate(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty location")
	}
}

func TestSetSettings(t *testing.T) {
	g := newTestGenerator(providers.NewMockClient(), Settings{})
	if g.Settings().Model != "gpt-4" {
		t.Errorf("default model = %q", g.Settings().Model)
	}
	g.SetSettings(Settings{Model: "gpt-4o", MaxRetries: -1})
	s := g.Settings()
	if s.Model != "gpt-4o" || s.MaxRetries != 0 || s.MaxTokens != 2000 {
		t.Errorf("unexpected settings: %+v", s)
	}
}
