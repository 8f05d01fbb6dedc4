package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"connector-finder/internal/fileio"
)

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey: lower case, ö→o, punctuation and runs of spaces collapsed.
// "mRd_minus" and "MRD minus" become the same key.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "ö", "o", "ä", "a", "ü", "u").Replace(s)
	s = rxHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveColumn finds the column index for want, which may list
// alternatives separated by "|". Exact names win over normalized ones.
// Returns -1 when nothing matches.
func resolveColumn(cols []string, want string) int {
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}
	for _, a := range alts {
		for i, c := range cols {
			if c == a {
				return i
			}
		}
	}
	for _, a := range alts {
		na := normHeaderKey(a)
		for i, c := range cols {
			if normHeaderKey(c) == na {
				return i
			}
		}
	}
	return -1
}

// schema maps logical field names to column indexes of one table.
type schema map[string]int

// bindSchema resolves required and optional fields; a missing required
// column means the table does not have the expected shape.
func bindSchema(t *fileio.Table, required, optional map[string]string) (schema, error) {
	s := make(schema, len(required)+len(optional))
	var missing []string
	for field, want := range required {
		i := resolveColumn(t.Columns, want)
		if i < 0 {
			missing = append(missing, want)
			continue
		}
		s[field] = i
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("table %s: missing columns %v (have %v)", t.Name, missing, t.Columns)
	}
	for field, want := range optional {
		if i := resolveColumn(t.Columns, want); i >= 0 {
			s[field] = i
		}
	}
	return s, nil
}

// get returns the cell for field, or "" when the column is absent.
func (s schema) get(row []string, field string) string {
	i, ok := s[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
