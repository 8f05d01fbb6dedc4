package service

import (
	"fmt"
	"math"

	"connector-finder/internal/finder/model"
)

// window is the resolved search box for one query.
type window struct {
	mrd, vrd   model.Interval
	hmin, hmax int
}

// boundary slack for values that went through a decimal multiplication
const relEps = 1e-9

func newWindow(t model.Target, tol model.Tolerance) window {
	w := window{
		mrd: widen(model.NewInterval(t.MRd*tol.MRdLower, t.MRd*tol.MRdUpper)),
		vrd: widen(model.NewInterval(t.VRd*tol.VRdLower, t.VRd*tol.VRdUpper)),
	}
	if tol.HeightMode == model.HeightExact {
		w.hmin, w.hmax = t.Height, t.Height
	} else {
		a, b := t.Height-tol.HeightBelow, t.Height+tol.HeightAbove
		w.hmin, w.hmax = min(a, b), max(a, b)
	}
	return w
}

func widen(i model.Interval) model.Interval {
	i.Min -= relEps * math.Max(1, math.Abs(i.Min))
	i.Max += relEps * math.Max(1, math.Abs(i.Max))
	return i
}

func (w window) height(h int) bool { return h >= w.hmin && h <= w.hmax }

func (w window) point(r model.Record) bool {
	return r.HeightOK && w.height(r.Height) && w.mrd.Contains(r.MRd) && w.vrd.Contains(r.VRd)
}

func (w window) overlap(r model.RangeRecord) bool {
	return r.HeightOK && w.height(r.Height) && w.mrd.Overlaps(r.MRd) && w.vrd.Overlaps(r.VRd)
}

// thicknessFilter is nil when no restriction applies.
type thicknessFilter map[string]struct{}

func (f thicknessFilter) allows(key string) bool {
	if f == nil {
		return true
	}
	_, ok := f[key]
	return ok
}

func matchRecords(recs []model.Record, w window, allow thicknessFilter) []model.Record {
	out := make([]model.Record, 0)
	for _, r := range recs {
		if w.point(r) && allow.allows(r.Thickness) {
			out = append(out, r)
		}
	}
	return out
}

func matchRanges(rs []model.RangeRecord, w window, allow thicknessFilter) []model.RangeRecord {
	out := make([]model.RangeRecord, 0)
	for _, r := range rs {
		if w.overlap(r) && allow.allows(r.Thickness) {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate collapses the variants of each product_name into capacity
// ranges, keeping first-seen order. Height and thickness come from the
// first variant that has a height.
func Aggregate(ds model.Dataset) []model.RangeRecord {
	byName := make(map[string]int)
	var out []model.RangeRecord
	for _, r := range ds.Records {
		i, ok := byName[r.ProductName]
		if !ok {
			byName[r.ProductName] = len(out)
			out = append(out, model.RangeRecord{
				Vendor:      r.Vendor,
				ProductName: r.ProductName,
				MRd:         model.NewInterval(r.MRd, r.MRd),
				VRd:         model.NewInterval(r.VRd, r.VRd),
				Height:      r.Height,
				HeightOK:    r.HeightOK,
				Thickness:   r.Thickness,
				Variants:    1,
			})
			continue
		}
		rr := &out[i]
		rr.MRd = rr.MRd.Extend(r.MRd)
		rr.VRd = rr.VRd.Extend(r.VRd)
		rr.Variants++
		if !rr.HeightOK && r.HeightOK {
			rr.Height, rr.HeightOK, rr.Thickness = r.Height, true, r.Thickness
		}
	}
	return out
}

func validateTolerance(tol model.Tolerance) error {
	for _, v := range []float64{tol.MRdLower, tol.MRdUpper, tol.VRdLower, tol.VRdUpper} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: tolerance multipliers must be finite and >= 0", model.ErrInvalidQuery)
		}
	}
	if tol.HeightBelow < 0 || tol.HeightAbove < 0 {
		return fmt.Errorf("%w: height offsets must be >= 0", model.ErrInvalidQuery)
	}
	return nil
}

func validateTarget(t model.Target) error {
	if math.IsNaN(t.MRd) || math.IsInf(t.MRd, 0) || math.IsNaN(t.VRd) || math.IsInf(t.VRd, 0) {
		return fmt.Errorf("%w: capacities must be finite", model.ErrInvalidQuery)
	}
	if t.Height <= 0 {
		return fmt.Errorf("%w: height must be > 0", model.ErrInvalidQuery)
	}
	return nil
}
