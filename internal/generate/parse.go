// Package generate turns a destination name into a complete record by
// prompting a language model and parsing its field-labeled reply.
package generate

import (
	"sort"
	"strings"

	"github.com/crisrod14/destinosAI/internal/schema"
)

// headerNames is the schema name list sorted longest first, so a field
// whose name prefixes another never captures the longer header.
var headerNames = func() []string {
	names := schema.Names()
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return names
}()

// matchHeader returns the field a line opens and the text after its colon.
func matchHeader(line string) (field, rest string, ok bool) {
	for _, name := range headerNames {
		if strings.HasPrefix(line, name+":") {
			return name, line[len(name)+1:], true
		}
	}
	return "", "", false
}

// Parse extracts the schema fields a free-text reply labels with
// "FIELD_NAME: value" headers. Lines after a header belong to it until the
// next header; lines before the first header are ignored. A header that
// appears twice keeps the later value. Only recognized fields with
// non-empty content are returned.
func Parse(text string) map[string]string {
	out := make(map[string]string)

	var current string
	var parts []string
	flush := func() {
		if current == "" {
			return
		}
		if v := strings.Join(parts, " "); v != "" {
			out[current] = v
		} else {
			delete(out, current)
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if field, rest, ok := matchHeader(line); ok {
			flush()
			current = field
			parts = parts[:0]
			if seed := strings.TrimSpace(rest); seed != "" {
				parts = append(parts, seed)
			}
			continue
		}
		if current != "" {
			parts = append(parts, line)
		}
	}
	flush()
	return out
}
