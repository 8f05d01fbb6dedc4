package service

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"connector-finder/internal/finder/model"
)

// stripAccents is built per call: a chained transformer keeps state and
// suggestions run on concurrent requests.
func stripAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Index gives exact lookups by product name and a trigram index over the
// names for suggestions.
type Index struct {
	byName map[string][]int               // product_name -> positions in Dataset.Records
	inv    map[string]map[string]struct{} // trigram -> set(product_name)
	thick  map[string]struct{}            // thickness keys present in the dataset
}

func buildIndex(ds model.Dataset) *Index {
	idx := &Index{
		byName: make(map[string][]int),
		inv:    make(map[string]map[string]struct{}),
		thick:  make(map[string]struct{}),
	}
	for i, r := range ds.Records {
		if r.Thickness != "" {
			idx.thick[r.Thickness] = struct{}{}
		}
		if _, ok := idx.byName[r.ProductName]; !ok {
			for g := range trigramSet(foldName(r.ProductName)) {
				bucket, ok := idx.inv[g]
				if !ok {
					bucket = make(map[string]struct{})
					idx.inv[g] = bucket
				}
				bucket[r.ProductName] = struct{}{}
			}
		}
		idx.byName[r.ProductName] = append(idx.byName[r.ProductName], i)
	}
	return idx
}

var nameSeps = strings.NewReplacer("_", "-", " ", "-")

// foldName is the comparison form for suggestions: accents dropped, upper
// case, "_" and spaces treated like the "-" delimiter.
func foldName(s string) string {
	s = strings.TrimSpace(s)
	if folded, _, err := transform.String(stripAccents(), s); err == nil {
		s = folded
	}
	return nameSeps.Replace(strings.ToUpper(s))
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	if len(r) < 3 {
		m[string(r)] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}

// candidateNames returns names sharing at least minShared trigrams with q.
func (idx *Index) candidateNames(q string, minShared int) []string {
	if q == "" {
		return nil
	}
	hits := make(map[string]int)
	for g := range trigramSet(q) {
		for name := range idx.inv[g] {
			hits[name]++
		}
	}
	out := make([]string, 0, len(hits))
	for name, n := range hits {
		if n >= minShared {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (idx *Index) hasThickness(key string) bool {
	_, ok := idx.thick[key]
	return ok
}

// similarity is normalized Damerau-Levenshtein in [0..1].
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	d := damerauLevenshtein(a, b)
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return 1 - float64(d)/float64(m)
}

// tokenSort orders the "-" separated tokens so that a model number typed
// with its segments swapped still scores high.
func tokenSort(s string) string {
	t := strings.Split(s, "-")
	sort.Strings(t)
	return strings.Join(t, "-")
}

func bestSimilarity(a, b string) float64 {
	return max(similarity(a, b), similarity(tokenSort(a), tokenSort(b)))
}
