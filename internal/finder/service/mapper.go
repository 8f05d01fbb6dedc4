package service

import (
	"fmt"
	"strings"

	"connector-finder/internal/fileio"
	"connector-finder/internal/finder/model"
)

// Mapper translates thickness/type keys between the two vendor vocabularies.
// The relation may be many-to-many and is not total.
type Mapper struct {
	forward map[string][]string // schoeck → leviat
	reverse map[string][]string // leviat → schoeck
}

// ThicknessKey canonicalizes a key for comparison: trimmed, upper case,
// "80.0" → "80".
func ThicknessKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if strings.HasSuffix(s, ".0") {
		s = strings.TrimSuffix(s, ".0")
	}
	return s
}

func NewMapper(pairs [][2]string) *Mapper {
	m := &Mapper{
		forward: make(map[string][]string),
		reverse: make(map[string][]string),
	}
	for _, p := range pairs {
		m.Add(p[0], p[1])
	}
	return m
}

// Add records one schoeck↔leviat pair; blanks and repeats are ignored.
func (m *Mapper) Add(schoeck, leviat string) {
	a, b := ThicknessKey(schoeck), ThicknessKey(leviat)
	if a == "" || b == "" {
		return
	}
	m.forward[a] = appendUnique(m.forward[a], b)
	m.reverse[b] = appendUnique(m.reverse[b], a)
}

// Counterpart returns the keys of the other vendor for a key owned by from.
func (m *Mapper) Counterpart(from model.Vendor, key string) ([]string, error) {
	k := ThicknessKey(key)
	var out []string
	if from == model.Schoeck {
		out = m.forward[k]
	} else {
		out = m.reverse[k]
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s %s", model.ErrNoMapping, from.Label(), key)
	}
	return out, nil
}

// Knows reports whether key appears on vendor v's side of the relation.
func (m *Mapper) Knows(v model.Vendor, key string) bool {
	k := ThicknessKey(key)
	if v == model.Schoeck {
		_, ok := m.forward[k]
		return ok
	}
	_, ok := m.reverse[k]
	return ok
}

func (m *Mapper) Len() int {
	n := 0
	for _, v := range m.forward {
		n += len(v)
	}
	return n
}

// mapperFromTable reads the two-column mapping table. Named columns are
// preferred; otherwise the first two columns are taken in order.
func mapperFromTable(t *fileio.Table) (*Mapper, error) {
	ia := resolveColumn(t.Columns, "schoeck|schöck|Schoeck|vendor_a|isokorb")
	ib := resolveColumn(t.Columns, "leviat|halfen|Leviat|vendor_b|hit")
	if ia < 0 || ib < 0 || ia == ib {
		if len(t.Columns) < 2 {
			return nil, fmt.Errorf("table %s: mapping needs two columns, have %v", t.Name, t.Columns)
		}
		ia, ib = 0, 1
	}
	m := NewMapper(nil)
	for _, row := range t.Rows {
		m.Add(row[ia], row[ib])
	}
	return m, nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
