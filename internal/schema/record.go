package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record is a complete destination record: one value for every schema
// field, held in canonical order. The zero Record is not valid; build
// records with Normalize.
type Record struct {
	values []string
}

// Normalize completes a partial field map into a Record. Missing fields
// get their registered default for location, unknown keys are dropped and
// the output order is the canonical order regardless of input order.
func Normalize(partial map[string]string, location string) Record {
	values := make([]string, len(registry))
	for i, f := range registry {
		if v, ok := partial[f.Name]; ok {
			values[i] = v
			continue
		}
		values[i] = f.DefaultFor(location)
	}
	return Record{values: values}
}

// New returns a record holding only defaults for location.
func New(location string) Record {
	return Normalize(nil, location)
}

// FromValues builds a record from values given in canonical order.
// Short slices are padded with defaults; extra values are dropped.
func FromValues(values []string) Record {
	partial := make(map[string]string, len(values))
	for i, v := range values {
		if i >= len(registry) {
			break
		}
		partial[registry[i].Name] = v
	}
	return Normalize(partial, partial[LocationField])
}

// Location returns the primary key of the record.
func (r Record) Location() string {
	return r.Get(LocationField)
}

// Get returns the value of a field, or "" for unknown names.
func (r Record) Get(name string) string {
	i, ok := index[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// With returns a copy of the record with field name set to value.
// Unknown names leave the record unchanged.
func (r Record) With(name, value string) Record {
	i, ok := index[name]
	if !ok {
		return r
	}
	out := r.clone()
	out.values[i] = value
	return out
}

// Merge returns a copy with every known key of changes applied.
func (r Record) Merge(changes map[string]string) Record {
	out := r.clone()
	for name, v := range changes {
		if i, ok := index[name]; ok {
			out.values[i] = v
		}
	}
	return out
}

// Values returns the field values in canonical order.
func (r Record) Values() []string {
	return r.clone().values
}

// Map returns the record as a flat field map.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(registry))
	for i, f := range registry {
		out[f.Name] = r.valueAt(i)
	}
	return out
}

// Equal reports whether two records hold the same values.
func (r Record) Equal(other Record) bool {
	for i := range registry {
		if r.valueAt(i) != other.valueAt(i) {
			return false
		}
	}
	return true
}

// EmptyMandatory returns the mandatory fields of r that are empty.
func (r Record) EmptyMandatory() []string {
	var empty []string
	for i, f := range registry {
		if f.Mandatory && r.valueAt(i) == "" {
			empty = append(empty, f.Name)
		}
	}
	return empty
}

func (r Record) valueAt(i int) string {
	if i < len(r.values) {
		return r.values[i]
	}
	return ""
}

func (r Record) clone() Record {
	values := make([]string, len(registry))
	copy(values, r.values)
	return Record{values: values}
}

// MarshalJSON writes the record as a flat object in canonical order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range registry {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.valueAt(i))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object and normalizes it.
// Non-string scalars are stringified and null becomes "".
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	partial, err := Flatten(raw)
	if err != nil {
		return err
	}
	*r = Normalize(partial, partial[LocationField])
	return nil
}

// MarshalYAML writes the record as a mapping in canonical order.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, f := range registry {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.valueAt(i)},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping and normalizes it.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	partial, err := Flatten(raw)
	if err != nil {
		return err
	}
	*r = Normalize(partial, partial[LocationField])
	return nil
}

// Flatten converts a decoded JSON or YAML object into a string map.
// Nested objects and arrays are rejected.
func Flatten(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = val
		case bool, float64, float32, int, int64, uint64, json.Number:
			out[k] = fmt.Sprint(val)
		default:
			return nil, fmt.Errorf("field %q: unsupported value of type %T", k, v)
		}
	}
	return out, nil
}
