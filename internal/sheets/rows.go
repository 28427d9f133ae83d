package sheets

import (
	"fmt"
	"strings"

	"github.com/crisrod14/destinosAI/internal/schema"
)

// ColumnName returns the spreadsheet column letter for a 1-based index:
// 1 is A, 26 is Z, 27 is AA.
func ColumnName(n int) string {
	if n <= 0 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append(b, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Rows renders records as a header row plus one row per record, all in
// schema column order.
func Rows(records []schema.Record) [][]any {
	names := schema.Names()
	out := make([][]any, 0, len(records)+1)

	header := make([]any, len(names))
	for i, n := range names {
		header[i] = n
	}
	out = append(out, header)

	for _, r := range records {
		vals := r.Values()
		row := make([]any, len(vals))
		for i, v := range vals {
			row[i] = v
		}
		out = append(out, row)
	}
	return out
}

// RecordsFromRows parses sheet values whose first row is the header.
// Unknown header columns are ignored and missing cells become defaults.
func RecordsFromRows(values [][]any) []schema.Record {
	if len(values) == 0 {
		return nil
	}
	header := make([]string, len(values[0]))
	for i, v := range values[0] {
		header[i] = strings.TrimSpace(cell(v))
	}

	var order []string
	byLoc := make(map[string]schema.Record)
	for _, row := range values[1:] {
		partial := make(map[string]string, len(header))
		for i, name := range header {
			if !schema.Has(name) {
				continue
			}
			if i < len(row) {
				partial[name] = cell(row[i])
			} else {
				partial[name] = ""
			}
		}
		loc := strings.TrimSpace(partial[schema.LocationField])
		if loc == "" {
			continue
		}
		partial[schema.LocationField] = loc
		if _, seen := byLoc[loc]; !seen {
			order = append(order, loc)
		}
		byLoc[loc] = schema.Normalize(partial, loc)
	}

	out := make([]schema.Record, 0, len(order))
	for _, loc := range order {
		out = append(out, byLoc[loc])
	}
	return out
}

func cell(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
