package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/crisrod14/destinosAI/internal/schema"
)

// fakeSheet serves the three values endpoints the mirror uses.
type fakeSheet struct {
	mu      sync.Mutex
	values  [][]any
	clears  int
	updates int
	status  int
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": f.status, "message": "denied"},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		f.clears++
		f.values = nil
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-1"})
	case r.Method == http.MethodPut:
		f.updates++
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.values = body.Values
		cells := 0
		for _, row := range body.Values {
			cells += len(row)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"updatedRows":  len(body.Values),
			"updatedCells": cells,
		})
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"values": f.values})
	default:
		http.NotFound(w, r)
	}
}

func newTestMirror(t *testing.T, f *fakeSheet) *Mirror {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	m, err := New(context.Background(), Config{
		SpreadsheetID: "sheet-1",
		Options: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithoutAuthentication(),
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "A"},
		{26, "Z"},
		{27, "AA"},
		{44, "AR"},
		{52, "AZ"},
		{703, "AAA"},
	}
	for _, tt := range tests {
		if got := ColumnName(tt.n); got != tt.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRowsHeader(t *testing.T) {
	rows := Rows([]schema.Record{schema.New("ARICA")})
	if len(rows) != 2 {
		t.Fatalf("Rows() = %d rows, want 2", len(rows))
	}
	if len(rows[0]) != schema.Len() {
		t.Fatalf("header has %d cells, want %d", len(rows[0]), schema.Len())
	}
	for i, name := range schema.Names() {
		if rows[0][i] != name {
			t.Errorf("header[%d] = %v, want %s", i, rows[0][i], name)
		}
	}
}

func TestRecordsFromRows(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := RecordsFromRows(nil); len(got) != 0 {
			t.Errorf("RecordsFromRows(nil) = %v", got)
		}
	})

	t.Run("short rows, skipped rows and duplicates", func(t *testing.T) {
		values := [][]any{
			{"LOCATION", "NAV_BAR", "UNKNOWN"},
			{"ARICA", "Bar uno", "x"},
			{""},
			{"  "},
			{"IQUIQUE"},
			{"ARICA", "Bar dos"},
		}
		got := RecordsFromRows(values)
		if len(got) != 2 {
			t.Fatalf("got %d records, want 2", len(got))
		}
		if got[0].Location() != "ARICA" || got[1].Location() != "IQUIQUE" {
			t.Errorf("order = %s, %s", got[0].Location(), got[1].Location())
		}
		if v := got[0].Get("NAV_BAR"); v != "Bar dos" {
			t.Errorf("ARICA NAV_BAR = %q, want last row to win", v)
		}
		if v := got[1].Get("NAV_BAR"); v != "" {
			t.Errorf("IQUIQUE NAV_BAR = %q, want empty", v)
		}
		// Columns missing from the header fall back to defaults.
		if v := got[1].Get("NAV_QUE_HACER_EN"); v != "IQUIQUE" {
			t.Errorf("NAV_QUE_HACER_EN = %q, want IQUIQUE", v)
		}
	})
}

func TestMirrorPushPull(t *testing.T) {
	f := &fakeSheet{}
	m := newTestMirror(t, f)
	ctx := context.Background()

	arica := schema.New("ARICA").With("NAV_BAR", "Bar uno")
	records := []schema.Record{arica, schema.New("IQUIQUE")}

	res, err := m.Push(ctx, records)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if res.Rows != 2 {
		t.Errorf("Rows = %d, want 2", res.Rows)
	}
	if want := 3 * schema.Len(); res.Cells != want {
		t.Errorf("Cells = %d, want %d", res.Cells, want)
	}
	if f.clears != 1 || f.updates != 1 {
		t.Errorf("clears=%d updates=%d, want 1 and 1", f.clears, f.updates)
	}

	got, err := m.Pull(ctx)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Pull() = %d records, want 2", len(got))
	}
	for i := range records {
		if !got[i].Equal(records[i]) {
			t.Errorf("record %d differs after round trip", i)
		}
	}
}

func TestMirrorPushEmptySet(t *testing.T) {
	f := &fakeSheet{}
	m := newTestMirror(t, f)

	res, err := m.Push(context.Background(), nil)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if res.Rows != 0 || res.Cells != schema.Len() {
		t.Errorf("Push(nil) = %+v, want header only", res)
	}
}

func TestMirrorErrors(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		f := &fakeSheet{status: status}
		m := newTestMirror(t, f)

		if _, err := m.Push(context.Background(), []schema.Record{schema.New("ARICA")}); !errors.Is(err, ErrUnavailable) {
			t.Errorf("status %d: Push() error = %v, want ErrUnavailable", status, err)
		}
		if _, err := m.Pull(context.Background()); !errors.Is(err, ErrUnavailable) {
			t.Errorf("status %d: Pull() error = %v, want ErrUnavailable", status, err)
		}
	}
}

func TestNewRequiresConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("New() without spreadsheet id error = %v", err)
	}
	if _, err := New(ctx, Config{SpreadsheetID: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("New() without credentials error = %v", err)
	}
	bad := StaticCredentials{}
	if _, err := New(ctx, Config{SpreadsheetID: "x", Credentials: bad}); !errors.Is(err, ErrNoToken) {
		t.Errorf("New() with empty static credentials error = %v", err)
	}
}

func TestFileCredentials(t *testing.T) {
	dir := t.TempDir()
	client := `{"installed":{"client_id":"id","client_secret":"secret",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
		`"token_uri":"https://oauth2.googleapis.com/token",` +
		`"redirect_uris":["http://localhost"]}}`
	credPath := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(credPath, []byte(client), 0o600); err != nil {
		t.Fatal(err)
	}
	tokenPath := filepath.Join(dir, "token.json")

	creds := FileCredentials{CredentialsFile: credPath, TokenFile: tokenPath}
	if _, err := creds.TokenSource(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("TokenSource() without token error = %v, want ErrNoToken", err)
	}

	if err := WriteToken(tokenPath, &oauth2.Token{AccessToken: "abc", TokenType: "Bearer"}); err != nil {
		t.Fatalf("WriteToken() error = %v", err)
	}
	ts, err := creds.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("TokenSource() error = %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "abc" {
		t.Errorf("AccessToken = %q, want abc", tok.AccessToken)
	}

	missing := FileCredentials{CredentialsFile: filepath.Join(dir, "nope.json")}
	if _, err := missing.TokenSource(context.Background()); err == nil {
		t.Error("TokenSource() with missing file succeeded")
	}
}

func TestMemoryMirror(t *testing.T) {
	m := NewMemoryMirror(schema.New("ARICA"))
	ctx := context.Background()

	got, err := m.Pull(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("Pull() = %v, %v", got, err)
	}

	m.SetFailures(ErrUnavailable, nil)
	if _, err := m.Push(ctx, nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Push() error = %v", err)
	}
	if m.Pushes() != 1 {
		t.Errorf("Pushes() = %d", m.Pushes())
	}
	if len(m.Records()) != 1 {
		t.Error("failed push changed the mirror")
	}

	m.SetFailures(nil, nil)
	if _, err := m.Push(ctx, []schema.Record{schema.New("A"), schema.New("B")}); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if len(m.Records()) != 2 {
		t.Errorf("Records() = %d, want 2", len(m.Records()))
	}
}
