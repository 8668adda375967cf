package imports

import (
	"fmt"
	"sort"
	"strings"
)

// FieldSpec binds one semantic field to a header column. A header
// matches when it contains every keyword (lower-cased substring test),
// which tolerates label drift like "Equipment Code" vs "equipment_code".
type FieldSpec struct {
	Name     string
	Keywords []string
	Required bool
}

// ColumnMapping maps semantic field name to column index.
type ColumnMapping struct {
	Columns map[string]int
	// Extra lists header columns no field claimed, in column order.
	// The equipment matrix reads its per-worker columns from here.
	Extra []int
}

func (m ColumnMapping) Has(field string) bool {
	_, ok := m.Columns[field]
	return ok
}

// Cell returns the named field's cell of row, or "" when the field is
// unmapped or the row is short.
func (m ColumnMapping) Cell(row []string, field string) string {
	idx, ok := m.Columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func headerMatches(header string, keywords []string) bool {
	h := strings.ToLower(header)
	for _, kw := range keywords {
		if !strings.Contains(h, kw) {
			return false
		}
	}
	return true
}

// MapColumns resolves every field against the header row. Missing
// required fields are enumerated all at once, never first-only.
func MapColumns(header []string, fields []FieldSpec) (ColumnMapping, []string) {
	mapping := ColumnMapping{Columns: map[string]int{}}
	claimed := map[int]bool{}
	var missing []string

	for _, f := range fields {
		found := -1
		for idx, label := range header {
			if claimed[idx] {
				continue
			}
			if headerMatches(label, f.Keywords) {
				found = idx
				break
			}
		}
		if found >= 0 {
			mapping.Columns[f.Name] = found
			claimed[found] = true
		} else if f.Required {
			missing = append(missing, f.Name)
		}
	}

	for idx := range header {
		if !claimed[idx] && strings.TrimSpace(header[idx]) != "" {
			mapping.Extra = append(mapping.Extra, idx)
		}
	}
	sort.Ints(mapping.Extra)
	return mapping, missing
}

func missingColumnsError(result *ValidationResult, missing []string) {
	for _, field := range missing {
		result.addError(0, field, fmt.Sprintf("required column %q not found in header", field))
	}
}
