package generate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "empty",
			text: "",
			want: map[string]string{},
		},
		{
			name: "multi-line value",
			text: "DESCRIP_CONOCE_LA_CIUDAD_DE: Hello\nworld\nSUBTITLE_QUE_HACER_EN: Fun",
			want: map[string]string{
				"DESCRIP_CONOCE_LA_CIUDAD_DE": "Hello world",
				"SUBTITLE_QUE_HACER_EN":       "Fun",
			},
		},
		{
			name: "duplicate header keeps later value",
			text: "SUBTITLE_QUE_HACER_EN: first\nmore\nSUBTITLE_QUE_HACER_EN: second",
			want: map[string]string{"SUBTITLE_QUE_HACER_EN": "second"},
		},
		{
			name: "lines before first header ignored",
			text: "Claro, aquí está el contenido:\n\nDESCRIP_DATOS_IMPORTANTES: Moneda CLP",
			want: map[string]string{"DESCRIP_DATOS_IMPORTANTES": "Moneda CLP"},
		},
		{
			name: "blank lines and whitespace trimmed",
			text: "  DESCRIP_CUANDO_IR_A:   Todo el año  \n\n   sol   \r\n",
			want: map[string]string{"DESCRIP_CUANDO_IR_A": "Todo el año sol"},
		},
		{
			name: "unknown header is a continuation",
			text: "DESCRIP_QUE_HACER_EN: Playas\nNOTA: visitar temprano",
			want: map[string]string{"DESCRIP_QUE_HACER_EN": "Playas NOTA: visitar temprano"},
		},
		{
			name: "header must be a line prefix",
			text: "Ver DESCRIP_QUE_HACER_EN: nada",
			want: map[string]string{},
		},
		{
			name: "empty seed with continuation",
			text: "SUBCARD_1_DESCRIP__CONOCE_LOS_IMPERDIBLES_DE:\nMorro de Arica",
			want: map[string]string{"SUBCARD_1_DESCRIP__CONOCE_LOS_IMPERDIBLES_DE": "Morro de Arica"},
		},
		{
			name: "header without content dropped",
			text: "SUBTITLE_ACERCA_DEL_AEROPUERTO:\nDESCRIP_ACERCA_DEL_AEROPUERTO: Chacalluta",
			want: map[string]string{"DESCRIP_ACERCA_DEL_AEROPUERTO": "Chacalluta"},
		},
		{
			name: "name with space",
			text: "NAV_ACERCA DE: Arica",
			want: map[string]string{"NAV_ACERCA DE": "Arica"},
		},
		{
			name: "colon inside value",
			text: "DESCRIP_DATOS_IMPORTANTES: Horario: 9 a 18",
			want: map[string]string{"DESCRIP_DATOS_IMPORTANTES": "Horario: 9 a 18"},
		},
		{
			name: "bracketed template echo kept verbatim",
			text: "SUBTITLE_CUANDO_IR_A: [subtítulo sobre la mejor época]",
			want: map[string]string{"SUBTITLE_CUANDO_IR_A": "[subtítulo sobre la mejor época]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchHeaderPrefersLongestName(t *testing.T) {
	saved := headerNames
	t.Cleanup(func() { headerNames = saved })

	// A registry where one name prefixes another.
	headerNames = []string{"TITLE_LONG", "TITLE"}

	field, rest, ok := matchHeader("TITLE_LONG: x")
	if !ok || field != "TITLE_LONG" || rest != " x" {
		t.Errorf("matchHeader = %q, %q, %v", field, rest, ok)
	}
	field, _, ok = matchHeader("TITLE: y")
	if !ok || field != "TITLE" {
		t.Errorf("matchHeader = %q, %v", field, ok)
	}
	if _, _, ok := matchHeader("TITLEX: z"); ok {
		t.Error("TITLEX should not match TITLE")
	}
}

func TestHeaderNamesSortedLongestFirst(t *testing.T) {
	for i := 1; i < len(headerNames); i++ {
		if len(headerNames[i]) > len(headerNames[i-1]) {
			t.Fatalf("headerNames not sorted by length at %d: %q after %q", i, headerNames[i], headerNames[i-1])
		}
	}
}
