package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()

	r.Generation(OutcomeSuccess, time.Second)
	r.Generation(OutcomeSuccess, 2*time.Second)
	r.Generation(OutcomeFailure, time.Second)
	r.Generation(OutcomeSkipped, 0)
	r.Mutation("save", "synced")
	r.Mutation("save", "local_only")
	r.Push(true)
	r.Push(false)
	r.Push(false)
	r.SetRecords(7)
	r.SetLocalOnly(true)

	out := scrape(t, r)
	for _, want := range []string{
		`destinos_generations_total{outcome="success"} 2`,
		`destinos_generations_total{outcome="failure"} 1`,
		`destinos_generations_total{outcome="skipped"} 1`,
		`destinos_generation_duration_seconds_count 3`,
		`destinos_mutations_total{op="save",state="synced"} 1`,
		`destinos_mutations_total{op="save",state="local_only"} 1`,
		`destinos_remote_push_total{outcome="failure"} 2`,
		`destinos_remote_push_total{outcome="success"} 1`,
		`destinos_records 7`,
		`destinos_local_only 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestSetLocalOnlyClears(t *testing.T) {
	r := NewRecorder()
	r.SetLocalOnly(true)
	r.SetLocalOnly(false)
	if out := scrape(t, r); !strings.Contains(out, "destinos_local_only 0") {
		t.Errorf("local_only gauge not cleared:\n%s", out)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Generation(OutcomeSuccess, time.Second)
	r.Mutation("save", "synced")
	r.Push(true)
	r.SetRecords(1)
	r.SetLocalOnly(false)

	if r.Registry() != nil {
		t.Error("nil recorder returned a registry")
	}
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil recorder handler status = %d, want 404", rec.Code)
	}
}
