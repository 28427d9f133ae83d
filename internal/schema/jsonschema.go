package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchema returns a JSON Schema document describing a destination
// record. Every field is a string; LOCATION is required and non-empty.
// Unknown keys are allowed because Normalize drops them.
func JSONSchema() json.RawMessage {
	props := make(map[string]any, len(registry))
	for _, f := range registry {
		p := map[string]any{
			"type":        "string",
			"description": string(f.Section),
		}
		if f.Name == LocationField {
			p["minLength"] = 1
		}
		props[f.Name] = p
	}
	doc := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "Destino",
		"type":                 "object",
		"properties":           props,
		"required":             []string{LocationField},
		"additionalProperties": true,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("schema: marshal json schema: %v", err))
	}
	return b
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("destino.json", bytes.NewReader(JSONSchema())); err != nil {
			compileErr = fmt.Errorf("failed to load record schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile("destino.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile record schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// Validate checks a raw JSON document against the record schema.
func Validate(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode record JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
