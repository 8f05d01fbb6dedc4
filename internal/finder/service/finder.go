package service

import (
	"errors"
	"fmt"
	"strings"

	"connector-finder/internal/finder/model"
)

// Finder holds both vendor datasets and the mapping. It is built once and
// never mutated, so it is safe to share across requests.
type Finder struct {
	schoeck, leviat       model.Dataset
	schoeckIdx, leviatIdx *Index
	leviatRanges          []model.RangeRecord
	mapper                *Mapper
}

func New(schoeck, leviat model.Dataset, mapper *Mapper) *Finder {
	if mapper == nil {
		mapper = NewMapper(nil)
	}
	schoeck.Vendor, leviat.Vendor = model.Schoeck, model.Leviat
	return &Finder{
		schoeck:      schoeck,
		leviat:       leviat,
		schoeckIdx:   buildIndex(schoeck),
		leviatIdx:    buildIndex(leviat),
		leviatRanges: Aggregate(leviat),
		mapper:       mapper,
	}
}

func (f *Finder) dataset(v model.Vendor) model.Dataset {
	if v == model.Schoeck {
		return f.schoeck
	}
	return f.leviat
}

func (f *Finder) index(v model.Vendor) *Index {
	if v == model.Schoeck {
		return f.schoeckIdx
	}
	return f.leviatIdx
}

// Stats reports what was loaded per vendor.
func (f *Finder) Stats() map[model.Vendor]model.LoadStats {
	return map[model.Vendor]model.LoadStats{
		model.Schoeck: f.schoeck.Stats,
		model.Leviat:  f.leviat.Stats,
	}
}

func (f *Finder) Mapper() *Mapper { return f.mapper }

// thicknessOwner decides which vendor the target thickness belongs to.
// A key is recognized when that vendor's dataset or mapping side knows it;
// with no vendor given Schöck is tried first.
func (f *Finder) thicknessOwner(t model.Target) (model.Vendor, bool) {
	key := ThicknessKey(t.Thickness)
	if key == "" {
		return "", false
	}
	knows := func(v model.Vendor) bool {
		return f.index(v).hasThickness(key) || f.mapper.Knows(v, key)
	}
	if t.ThicknessVendor.Valid() {
		return t.ThicknessVendor, knows(t.ThicknessVendor)
	}
	for _, v := range []model.Vendor{model.Schoeck, model.Leviat} {
		if knows(v) {
			return v, true
		}
	}
	return "", false
}

// FindAlternatives runs the range query against both vendors. A recognized
// thickness restricts only the other vendor, to its mapped keys; without a
// counterpart that vendor's side is empty with StatusNoMapping.
func (f *Finder) FindAlternatives(t model.Target, tol model.Tolerance) (model.Alternatives, error) {
	if err := validateTarget(t); err != nil {
		return model.Alternatives{}, err
	}
	if err := validateTolerance(tol); err != nil {
		return model.Alternatives{}, err
	}
	w := newWindow(t, tol)
	res := model.Alternatives{Target: t}

	filters := map[model.Vendor]thicknessFilter{}
	mapped := map[model.Vendor][]string{}
	noMapping := map[model.Vendor]bool{}
	if owner, ok := f.thicknessOwner(t); ok {
		other := owner.Other()
		keys, err := f.mapper.Counterpart(owner, t.Thickness)
		switch {
		case errors.Is(err, model.ErrNoMapping):
			noMapping[other] = true
		case err != nil:
			return res, err
		default:
			mapped[other] = keys
			filters[other] = make(thicknessFilter, len(keys))
			for _, k := range keys {
				filters[other][k] = struct{}{}
			}
		}
	}

	for _, v := range []model.Vendor{model.Schoeck, model.Leviat} {
		m := model.VendorMatches{Vendor: v, MappedThickness: strings.Join(mapped[v], ", ")}
		switch {
		case noMapping[v]:
			m.Status = model.StatusNoMapping
			m.Records = []model.Record{}
		case v == model.Leviat && tol.Compare == model.CompareOverlap:
			m.Ranges = matchRanges(f.leviatRanges, w, filters[v])
		default:
			m.Records = matchRecords(f.dataset(v).Records, w, filters[v])
		}
		if m.Status == "" {
			m.Status = model.StatusOK
			if m.Len() == 0 {
				m.Status = model.StatusEmpty
			}
		}
		if v == model.Schoeck {
			res.Schoeck = m
		} else {
			res.Leviat = m
		}
	}
	return res, nil
}

// SearchByModel resolves the model number in both vendors and runs one
// alternatives query per resolved spec. Only an invalid tolerance fails the
// whole search; a spec that cannot be queried is recorded on its vendor's
// resolution and the other specs still run.
func (f *Finder) SearchByModel(modelNumber string, tol model.Tolerance) (model.ModelSearch, error) {
	out := model.ModelSearch{Model: modelNumber}
	if err := validateTolerance(tol); err != nil {
		return out, err
	}
	out.Resolutions = f.ResolveByModel(modelNumber)
	for i := range out.Resolutions {
		r := &out.Resolutions[i]
		queried := 0
		for _, spec := range r.Specs {
			alts, err := f.FindAlternatives(spec.Target(), tol)
			if err != nil {
				r.Err = errors.Join(r.Err, fmt.Errorf("%s %s: %w", spec.Vendor.Label(), spec.ProductName, err))
				continue
			}
			s := spec
			out.Groups = append(out.Groups, model.Group{Source: &s, Alternatives: alts})
			queried++
		}
		if len(r.Specs) > 0 && queried == 0 {
			r.Status = model.StatusInvalid
		}
	}
	if len(out.Groups) == 0 {
		out.Suggestions = f.Suggest(modelNumber, 5)
	}
	return out, nil
}

// SearchBySpecs is the explicit-capacity entry point; both capacities zero
// is not a query.
func (f *Finder) SearchBySpecs(t model.Target, tol model.Tolerance) (model.Alternatives, error) {
	if t.MRd == 0 && t.VRd == 0 {
		return model.Alternatives{}, fmt.Errorf("%w: mRd and vRd are both zero", model.ErrInvalidQuery)
	}
	return f.FindAlternatives(t, tol)
}
