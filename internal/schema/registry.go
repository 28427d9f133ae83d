// Package schema is the single source of truth for the destination record
// layout: the ordered field list, per-field defaults and the sections the
// operator sees when editing.
package schema

import "fmt"

// Kind is the semantic type of a field.
type Kind string

const (
	KindShort Kind = "short" // single-line text
	KindLong  Kind = "long"  // multi-line description
	KindImage Kind = "image" // image reference placeholder
)

// ImagePlaceholder is the default value of every image field.
const ImagePlaceholder = "URL_IMG"

// LocationField is the primary key of a destination record.
const LocationField = "LOCATION"

// Section groups fields for display and editing.
type Section string

const (
	SectionIdentity   Section = "Destino"
	SectionNavigation Section = "Navegación"
	SectionCity       Section = "Conoce la ciudad"
	SectionAirport    Section = "Acerca del aeropuerto"
	SectionActivities Section = "Qué hacer en"
	SectionWhen       Section = "Cuándo ir a"
	SectionHighlights Section = "Conoce los imperdibles"
	SectionHighlight1 Section = "Imperdible 1"
	SectionHighlight2 Section = "Imperdible 2"
	SectionHighlight3 Section = "Imperdible 3"
	SectionHighlight4 Section = "Imperdible 4"
	SectionPractical  Section = "Datos importantes"
)

// DefaultRule says how a missing field is filled.
type DefaultRule int

const (
	DefaultEmpty       DefaultRule = iota // ""
	DefaultLocation                       // the destination name
	DefaultPlaceholder                    // ImagePlaceholder
)

// Field describes one column of a destination record.
type Field struct {
	Name    string      `json:"name" yaml:"name"`
	Kind    Kind        `json:"kind" yaml:"kind"`
	Section Section     `json:"section" yaml:"section"`
	Default DefaultRule `json:"-" yaml:"-"`

	// Mandatory fields produce a warning when left empty after generation.
	Mandatory bool `json:"mandatory,omitempty" yaml:"mandatory,omitempty"`

	// Prompt is the instruction shown to the generation model. Fields
	// without a prompt are never requested from the model.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// DefaultFor returns the default value of the field for a location.
func (f Field) DefaultFor(location string) string {
	switch f.Default {
	case DefaultLocation:
		return location
	case DefaultPlaceholder:
		return ImagePlaceholder
	default:
		return ""
	}
}

// Generated reports whether the generation model is asked to fill the field.
func (f Field) Generated() bool {
	return f.Prompt != ""
}

func short(name string, section Section) Field {
	return Field{Name: name, Kind: KindShort, Section: section}
}

func label(name string, section Section) Field {
	return Field{Name: name, Kind: KindShort, Section: section, Default: DefaultLocation}
}

func image(name string, section Section) Field {
	return Field{Name: name, Kind: KindImage, Section: section, Default: DefaultPlaceholder}
}

func long(name string, section Section, prompt string) Field {
	return Field{Name: name, Kind: KindLong, Section: section, Prompt: prompt}
}

func prompted(f Field, prompt string) Field {
	f.Prompt = prompt
	return f
}

func mandatory(f Field) Field {
	f.Mandatory = true
	return f
}

// registry is the canonical field order. Column order of every tabular
// export follows this slice. Names are kept exactly as the published
// sheet spells them, including the space in "NAV_ACERCA DE" and the double
// underscore in the subcard descriptions.
var registry = []Field{
	label(LocationField, SectionIdentity),

	short("NAV_BAR", SectionNavigation),
	label("NAV_ACERCA DE", SectionNavigation),
	label("NAV_QUE_HACER_EN", SectionNavigation),
	label("NAV_CUANDO_IR_A", SectionNavigation),
	label("NAV_LOS_IMPERDIBLES_DE", SectionNavigation),

	short("CARD_CONOCE_LA_CIUDAD_DE", SectionCity),
	label("TITLE_CONOCE_LA_CIUDAD_DE", SectionCity),
	image("IMG_CONOCE_LA_CIUDAD_DE", SectionCity),
	mandatory(long("DESCRIP_CONOCE_LA_CIUDAD_DE", SectionCity,
		`descripción detallada de la ciudad, similar a: "La Perla Del Norte" o Capital Minera se ubica al Norte de la costa del pacífico y se destaca por su gastronomía, historia, patrimonio, paisajes, turismo aventura, entretención y vida nocturna, todo lo que hará de tu viaje una experiencia totalmente SMART.`)),

	short("CARD_ACERCA_DEL_AEROPUERTO", SectionAirport),
	image("IMG_ACERCA_DEL_AEROPUERTO", SectionAirport),
	prompted(short("SUBTITLE_ACERCA_DEL_AEROPUERTO", SectionAirport), "nombre del aeropuerto"),
	mandatory(long("DESCRIP_ACERCA_DEL_AEROPUERTO", SectionAirport,
		"descripción detallada del aeropuerto y cómo llegar a la ciudad")),

	short("CARD_QUE_HACER_EN", SectionActivities),
	label("TITLE_QUE_HACER_EN", SectionActivities),
	image("IMG_QUE_HACER_EN", SectionActivities),
	prompted(short("SUBTITLE_QUE_HACER_EN", SectionActivities), "subtítulo breve"),
	mandatory(long("DESCRIP_QUE_HACER_EN", SectionActivities,
		"descripción de actividades y lugares para visitar")),

	short("CARD_CUANDO_IR_A", SectionWhen),
	prompted(label("TITLE_CUANDO_IR_A", SectionWhen), "título breve"),
	prompted(short("SUBTITLE_CUANDO_IR_A", SectionWhen), "subtítulo sobre la mejor época"),
	image("IMG_1_CUANDO_IR_A", SectionWhen),
	mandatory(long("DESCRIP_CUANDO_IR_A", SectionWhen,
		"descripción detallada sobre cuándo visitar")),
	image("IMG_2_CUANDO_IR_A", SectionWhen),

	short("CARD_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlights),
	label("TITLE_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlights),
	image("IMG_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlights),
	{Name: "DESCRIP_CONOCE_LOS_IMPERDIBLES_DE", Kind: KindLong, Section: SectionHighlights},

	prompted(short("SUBCARD_1_TITLE_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight1), "nombre del primer lugar imperdible"),
	image("SUBCARD_1_IMG_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight1),
	long("SUBCARD_1_DESCRIP__CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight1, "descripción del primer lugar"),

	prompted(short("SUBCARD_2_TITLE_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight2), "nombre del segundo lugar imperdible"),
	image("SUBCARD_2_IMG_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight2),
	long("SUBCARD_2_DESCRIP__CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight2, "descripción del segundo lugar"),

	prompted(short("SUBCARD_3_TITLE_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight3), "nombre del tercer lugar imperdible"),
	image("SUBCARD_3_IMG_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight3),
	long("SUBCARD_3_DESCRIP__CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight3, "descripción del tercer lugar"),

	prompted(short("SUBCARD_4_TITLE_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight4), "nombre del cuarto lugar imperdible"),
	image("SUBCARD_4_IMG_CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight4),
	long("SUBCARD_4_DESCRIP__CONOCE_LOS_IMPERDIBLES_DE", SectionHighlight4, "descripción del cuarto lugar"),

	short("CARD_DATOS_IMPORTANTES", SectionPractical),
	image("IMG_DATOS_IMPORTANTES", SectionPractical),
	mandatory(long("DESCRIP_DATOS_IMPORTANTES", SectionPractical,
		"información práctica sobre la ciudad")),
}

// sections is the display order of sections.
var sections = []Section{
	SectionIdentity,
	SectionNavigation,
	SectionCity,
	SectionAirport,
	SectionActivities,
	SectionWhen,
	SectionHighlights,
	SectionHighlight1,
	SectionHighlight2,
	SectionHighlight3,
	SectionHighlight4,
	SectionPractical,
}

// index maps a field name to its position in registry.
var index = buildIndex(registry)

func buildIndex(fields []Field) map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := idx[f.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate field %q", f.Name))
		}
		idx[f.Name] = i
	}
	return idx
}

// Fields returns the field descriptors in canonical order.
// The returned slice is a copy.
func Fields() []Field {
	out := make([]Field, len(registry))
	copy(out, registry)
	return out
}

// Names returns the field names in canonical order.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields in a record.
func Len() int {
	return len(registry)
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Field, bool) {
	i, ok := index[name]
	if !ok {
		return Field{}, false
	}
	return registry[i], true
}

// Has reports whether name is a schema field.
func Has(name string) bool {
	_, ok := index[name]
	return ok
}

// Sections returns the display order of sections.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// SectionFields returns the fields of one section in canonical order.
func SectionFields(s Section) []Field {
	var out []Field
	for _, f := range registry {
		if f.Section == s {
			out = append(out, f)
		}
	}
	return out
}

// GeneratedFields returns the fields the generation model is asked to write.
func GeneratedFields() []Field {
	var out []Field
	for _, f := range registry {
		if f.Generated() {
			out = append(out, f)
		}
	}
	return out
}

// MandatoryFields returns the names of fields that should not be empty.
func MandatoryFields() []string {
	var out []string
	for _, f := range registry {
		if f.Mandatory {
			out = append(out, f.Name)
		}
	}
	return out
}
