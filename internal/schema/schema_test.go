package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestRegistry(t *testing.T) {
	if Len() != 44 {
		t.Fatalf("Len() = %d, want 44", Len())
	}
	names := Names()
	if names[0] != LocationField {
		t.Errorf("first field = %q, want %q", names[0], LocationField)
	}
	if names[len(names)-1] != "DESCRIP_DATOS_IMPORTANTES" {
		t.Errorf("last field = %q", names[len(names)-1])
	}

	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate field %q", n)
		}
		seen[n] = true
	}

	if !Has("NAV_ACERCA DE") {
		t.Error("expected NAV_ACERCA DE to be a field")
	}
	if Has("NAV_ACERCA_DE") {
		t.Error("NAV_ACERCA_DE should not be a field")
	}
}

func TestSectionsCoverEveryField(t *testing.T) {
	total := 0
	for _, s := range Sections() {
		fields := SectionFields(s)
		if len(fields) == 0 {
			t.Errorf("section %q has no fields", s)
		}
		total += len(fields)
	}
	if total != Len() {
		t.Errorf("sections cover %d fields, want %d", total, Len())
	}
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{LocationField, "ARICA"},
		{"NAV_BAR", ""},
		{"NAV_ACERCA DE", "ARICA"},
		{"NAV_QUE_HACER_EN", "ARICA"},
		{"NAV_CUANDO_IR_A", "ARICA"},
		{"NAV_LOS_IMPERDIBLES_DE", "ARICA"},
		{"TITLE_CONOCE_LA_CIUDAD_DE", "ARICA"},
		{"IMG_CONOCE_LA_CIUDAD_DE", ImagePlaceholder},
		{"SUBCARD_4_IMG_CONOCE_LOS_IMPERDIBLES_DE", ImagePlaceholder},
		{"DESCRIP_DATOS_IMPORTANTES", ""},
		{"SUBTITLE_ACERCA_DEL_AEROPUERTO", ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := Lookup(tt.field)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.field)
			}
			if got := f.DefaultFor("ARICA"); got != tt.want {
				t.Errorf("DefaultFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeFieldSetAndOrder(t *testing.T) {
	inputs := []map[string]string{
		nil,
		{},
		{"UNKNOWN": "x", "ANOTHER": "y"},
		{"DESCRIP_DATOS_IMPORTANTES": "b", LocationField: "LIMA", "NAV_BAR": "a"},
	}
	for _, in := range inputs {
		r := Normalize(in, "LIMA")
		got := make([]string, 0, Len())
		for name := range r.Map() {
			got = append(got, name)
		}
		if len(got) != Len() {
			t.Errorf("Normalize(%v) has %d fields, want %d", in, len(got), Len())
		}
		if len(r.Values()) != Len() {
			t.Errorf("Values() len = %d", len(r.Values()))
		}
		if _, ok := r.Map()["UNKNOWN"]; ok {
			t.Error("unknown key was kept")
		}
	}

	r := Normalize(map[string]string{"DESCRIP_DATOS_IMPORTANTES": "b", "NAV_BAR": "a"}, "LIMA")
	values := r.Values()
	if values[1] != "a" || values[len(values)-1] != "b" {
		t.Errorf("values not in canonical order: %v", values)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	r := Normalize(map[string]string{
		LocationField:                 "CALAMA",
		"DESCRIP_CONOCE_LA_CIUDAD_DE": "Ciudad en el desierto",
		"NAV_ACERCA DE":               "Calama",
		"IMG_QUE_HACER_EN":            "",
	}, "CALAMA")

	again := Normalize(r.Map(), r.Location())
	if !again.Equal(r) {
		t.Errorf("normalize not idempotent: %s", cmp.Diff(r.Map(), again.Map()))
	}
}

func TestNormalizePresentValuesWin(t *testing.T) {
	r := Normalize(map[string]string{"NAV_QUE_HACER_EN": "", "IMG_DATOS_IMPORTANTES": "https://x/y.png"}, "ARICA")
	if got := r.Get("NAV_QUE_HACER_EN"); got != "" {
		t.Errorf("explicit empty value replaced with %q", got)
	}
	if got := r.Get("IMG_DATOS_IMPORTANTES"); got != "https://x/y.png" {
		t.Errorf("IMG_DATOS_IMPORTANTES = %q", got)
	}
	if got := r.Location(); got != "ARICA" {
		t.Errorf("Location() = %q", got)
	}
}

func TestLocationOnlyRecord(t *testing.T) {
	r := Normalize(map[string]string{LocationField: "ARICA"}, "ARICA")
	for _, f := range Fields() {
		v := r.Get(f.Name)
		switch {
		case strings.HasPrefix(f.Name, "NAV_") && f.Name != "NAV_BAR":
			if v != "ARICA" {
				t.Errorf("%s = %q, want ARICA", f.Name, v)
			}
		case strings.Contains(f.Name, "DESCRIP"):
			if v != "" {
				t.Errorf("%s = %q, want empty", f.Name, v)
			}
		}
	}
	want := MandatoryFields()
	if diff := cmp.Diff(want, r.EmptyMandatory()); diff != "" {
		t.Errorf("EmptyMandatory mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeAndWith(t *testing.T) {
	r := New("IQUIQUE")
	r2 := r.Merge(map[string]string{"NAV_BAR": "Inicio", "BOGUS": "x"})
	if r2.Get("NAV_BAR") != "Inicio" {
		t.Errorf("Merge did not apply NAV_BAR")
	}
	if r.Get("NAV_BAR") != "" {
		t.Errorf("Merge mutated the original record")
	}
	r3 := r2.With("BOGUS", "y")
	if !r3.Equal(r2) {
		t.Errorf("With on unknown field changed the record")
	}
}

func TestFromValues(t *testing.T) {
	r := FromValues([]string{"TEMUCO", "Menu"})
	if r.Location() != "TEMUCO" || r.Get("NAV_BAR") != "Menu" {
		t.Errorf("unexpected record: %v", r.Values()[:2])
	}
	if r.Get("NAV_ACERCA DE") != "TEMUCO" {
		t.Errorf("short row not padded with defaults")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := Normalize(map[string]string{LocationField: "ARICA", "NAV_BAR": "x"}, "ARICA")
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"LOCATION":"ARICA","NAV_BAR":"x","NAV_ACERCA DE":"ARICA"`) {
		t.Errorf("JSON not in canonical order: %s", b[:80])
	}

	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(r) {
		t.Errorf("round trip mismatch: %s", cmp.Diff(r.Map(), back.Map()))
	}
}

func TestUnmarshalJSONStringifies(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"LOCATION":"PUCON","NAV_BAR":null,"CARD_QUE_HACER_EN":3}`), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Get("NAV_BAR") != "" || r.Get("CARD_QUE_HACER_EN") != "3" {
		t.Errorf("got NAV_BAR=%q CARD_QUE_HACER_EN=%q", r.Get("NAV_BAR"), r.Get("CARD_QUE_HACER_EN"))
	}
	if r.Get("NAV_QUE_HACER_EN") != "PUCON" {
		t.Errorf("defaults not derived from LOCATION")
	}

	if err := json.Unmarshal([]byte(`{"LOCATION":{"nested":true}}`), &r); err == nil {
		t.Error("expected error for nested value")
	}
}

func TestYAMLOrder(t *testing.T) {
	r := New("ARICA")
	b, err := yaml.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != Len() {
		t.Fatalf("yaml has %d lines, want %d", len(lines), Len())
	}
	if !strings.HasPrefix(lines[0], "LOCATION:") {
		t.Errorf("first line = %q", lines[0])
	}

	var back Record
	if err := yaml.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(r) {
		t.Errorf("yaml round trip mismatch: %s", cmp.Diff(r.Map(), back.Map()))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"minimal", `{"LOCATION":"ARICA"}`, false},
		{"extra keys", `{"LOCATION":"ARICA","OTHER":"x"}`, false},
		{"missing location", `{"NAV_BAR":"x"}`, true},
		{"empty location", `{"LOCATION":""}`, true},
		{"non-string", `{"LOCATION":"ARICA","NAV_BAR":1}`, true},
		{"not json", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
