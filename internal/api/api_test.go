package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

type plain struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

type rendered struct{ plain }

func (r rendered) RenderText() string { return "name=" + r.Name }

func TestOutputTo(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		data   any
		want   string
	}{
		{"json", OutputFormatJSON, plain{"ARICA", 2}, "{\n  \"name\": \"ARICA\",\n  \"count\": 2\n}\n"},
		{"yaml", OutputFormatYAML, plain{"ARICA", 2}, "name: ARICA\ncount: 2\n"},
		{"text renderer", OutputFormatText, rendered{plain{"ARICA", 2}}, "name=ARICA\n"},
		{"text falls back to yaml", OutputFormatText, plain{"ARICA", 2}, "name: ARICA\ncount: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputTo(&buf, tt.format, tt.data); err != nil {
				t.Fatalf("OutputTo() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("OutputTo() = %q, want %q", got, tt.want)
			}
		})
	}

	if err := OutputTo(&bytes.Buffer{}, "xml", plain{}); err == nil {
		t.Error("OutputTo() with unknown format should fail")
	}
}

func TestSetOutputFormat(t *testing.T) {
	defer SetOutputFormat(string(DefaultOutput))

	for in, want := range map[string]OutputFormat{
		"json":   OutputFormatJSON,
		" YAML ": OutputFormatYAML,
		"text":   OutputFormatText,
		"":       DefaultOutput,
	} {
		if err := SetOutputFormat(in); err != nil {
			t.Fatalf("SetOutputFormat(%q) error = %v", in, err)
		}
		if got := GetOutputFormat(); got != want {
			t.Errorf("SetOutputFormat(%q) -> %q, want %q", in, got, want)
		}
	}

	SetOutputFormat("json")
	if err := SetOutputFormat("xml"); err == nil {
		t.Error("SetOutputFormat(xml) should fail")
	}
	if got := GetOutputFormat(); got != OutputFormatJSON {
		t.Errorf("rejected format changed the output to %q", got)
	}
}

func TestOutputWritesToStdout(t *testing.T) {
	var buf bytes.Buffer
	stdout = &buf
	defer func() { stdout = os.Stdout }()
	defer SetOutputFormat(string(DefaultOutput))

	SetOutputFormat("text")
	if err := Output(rendered{plain{"ARICA", 1}}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "name=ARICA\n" {
		t.Errorf("Output() = %q", got)
	}
}

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/ok":
			json.NewEncoder(w).Encode(plain{Name: "ARICA", Count: 1})
		case r.Method == http.MethodPost && r.URL.Path == "/echo":
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var in plain
			json.NewDecoder(r.Body).Decode(&in)
			in.Count++
			json.NewEncoder(w).Encode(in)
		case r.URL.Path == "/missing":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "destination not found: ARICA"})
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	var got plain
	if err := c.Get(ctx, "/ok", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "ARICA" || got.Count != 1 {
		t.Errorf("Get() = %+v", got)
	}

	if err := c.Post(ctx, "/echo", plain{Name: "IQUIQUE", Count: 1}, &got); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got.Name != "IQUIQUE" || got.Count != 2 {
		t.Errorf("Post() = %+v", got)
	}

	var se *StatusError
	err := c.Delete(ctx, "/missing", nil)
	if !errors.As(err, &se) || se.Code != http.StatusNotFound || se.Message != "destination not found: ARICA" {
		t.Errorf("Delete() error = %v", err)
	}

	err = c.Put(ctx, "/other", plain{}, nil)
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway || !strings.Contains(se.Message, "upstream down") {
		t.Errorf("Put() error = %v", err)
	}
}

type fakeEndpoint struct {
	method, path string
	init         bool
}

func (e fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return e.method, e.path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (e fakeEndpoint) RequiresInit() bool { return e.init }

func (e fakeEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{Use: strings.TrimPrefix(e.path, "/")}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		fakeEndpoint{method: "GET", path: "/open"},
		fakeEndpoint{method: "GET", path: "/gated", init: true},
	)
	if err := r.Register(fakeEndpoint{method: "GET", path: "/open"}); err == nil {
		t.Error("Register() with a duplicate pattern should fail")
	}
	if got, want := strings.Join(r.Patterns(), ","), "GET /open,GET /gated"; got != want {
		t.Errorf("Patterns() = %q, want %q", got, want)
	}

	mux := http.NewServeMux()
	r.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	for path, want := range map[string]int{
		"/open":  http.StatusNoContent,
		"/gated": http.StatusServiceUnavailable,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, want)
		}
	}

	parent := &cobra.Command{Use: "api"}
	r.AddCommands(parent, func() string { return "" })
	if n := len(parent.Commands()); n != 2 {
		t.Errorf("AddCommands() added %d commands, want 2", n)
	}
}
