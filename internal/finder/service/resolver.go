package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"connector-finder/internal/finder/model"
)

// Resolve returns the specs stored for an exact model number in one
// vendor's dataset. Schöck names are unique, so at most one spec comes
// back; Leviat returns one spec per load-case row. Rows without a usable
// height are skipped; if nothing is left the error is ErrMalformedHeight.
func (f *Finder) Resolve(v model.Vendor, modelNumber string) ([]model.Spec, error) {
	name := strings.TrimSpace(modelNumber)
	ds, idx := f.dataset(v), f.index(v)
	pos := idx.byName[name]
	if len(pos) == 0 {
		return nil, fmt.Errorf("%w: %s in %s's files", model.ErrNotFound, name, v.Label())
	}
	if v == model.Schoeck {
		pos = pos[:1]
	}

	specs := make([]model.Spec, 0, len(pos))
	for _, i := range pos {
		r := ds.Records[i]
		if !r.HeightOK {
			continue
		}
		specs = append(specs, model.Spec{
			Vendor:      v,
			ProductName: r.ProductName,
			MRd:         r.MRd,
			VRd:         r.VRd,
			Height:      r.Height,
			Thickness:   r.Thickness,
			MRdType:     r.MRdType,
			VRdType:     r.VRdType,
			Table:       r.Table,
		})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrMalformedHeight, name)
	}
	return specs, nil
}

// ResolveByModel looks the model number up in both vendors independently.
func (f *Finder) ResolveByModel(modelNumber string) []model.Resolution {
	return []model.Resolution{
		f.Resolution(model.Schoeck, modelNumber),
		f.Resolution(model.Leviat, modelNumber),
	}
}

// Resolution is Resolve with its error folded into a status.
func (f *Finder) Resolution(v model.Vendor, modelNumber string) model.Resolution {
	specs, err := f.Resolve(v, modelNumber)
	res := model.Resolution{Vendor: v, Specs: specs, Err: err, Status: model.StatusOK}
	switch {
	case errors.Is(err, model.ErrMalformedHeight):
		res.Status = model.StatusMalformedHeight
	case err != nil:
		res.Status = model.StatusNotFound
	}
	return res
}

// Suggest returns up to n product names of either vendor that look like
// the given model number, best first.
func (f *Finder) Suggest(modelNumber string, n int) []string {
	q := foldName(modelNumber)
	if q == "" || n <= 0 {
		return nil
	}
	type scored struct {
		name  string
		score float64
	}
	var cands []scored
	seen := make(map[string]struct{})
	for _, v := range []model.Vendor{model.Schoeck, model.Leviat} {
		for _, name := range f.index(v).candidateNames(q, 3) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			if s := bestSimilarity(q, foldName(name)); s >= suggestThreshold {
				cands = append(cands, scored{name, s})
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].name < cands[j].name
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.name
	}
	return out
}

const suggestThreshold = 0.6
