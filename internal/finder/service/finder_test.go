package service

import (
	"errors"
	"testing"

	"connector-finder/internal/finder/model"
)

const origin = "T-K-M9-VV1-REI120-CV35-X80-H200-6.2"

func TestScenarioModelNumber(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	specs, err := f.Resolve(model.Schoeck, origin)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	s := specs[0]
	if s.MRd != 1.05 || s.VRd != 0 || s.Height != 200 || s.Thickness != "X80" {
		t.Fatalf("spec = %+v", s)
	}

	alts, err := f.FindAlternatives(s.Target(), model.DefaultTolerance())
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	got := recordNames(alts.Schoeck.Records)
	for _, want := range []string{origin, "T-K-M9-VV1-REI120-CV35-X80-H180-6.2", "T-K-M9-VV1-REI120-CV35-X80-H220-6.2"} {
		if !got[want] {
			t.Fatalf("schoeck matches %v miss %s", got, want)
		}
	}
	if len(got) != 3 {
		t.Fatalf("schoeck matches = %v", got)
	}
	if alts.Leviat.Status != model.StatusOK || alts.Leviat.MappedThickness != "80" || len(alts.Leviat.Records) != 2 {
		t.Fatalf("leviat = %+v", alts.Leviat)
	}

	tbl := Format(alts.Schoeck, origin)
	marked := 0
	for _, r := range tbl.Rows {
		if r.Highlight {
			marked++
			if r.ProductName != origin {
				t.Fatalf("wrong row highlighted: %s", r.ProductName)
			}
		}
	}
	if marked != 1 {
		t.Fatalf("highlighted rows = %d", marked)
	}
}

func TestHeightWindowInclusive(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	tol := model.DefaultTolerance().Windowed(20)
	alts, err := f.FindAlternatives(model.Target{MRd: 1.05, VRd: 0, Height: 200}, tol)
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	got := recordNames(alts.Schoeck.Records)
	if !got["T-K-M9-VV1-REI120-CV35-X80-H180-6.2"] || !got["T-K-M9-VV1-REI120-CV35-X80-H220-6.2"] {
		t.Fatalf("180/220 must be included: %v", got)
	}
	if got["T-K-M9-VV1-REI120-CV35-X80-H179-6.2"] || got["T-K-M9-VV1-REI120-CV35-X80-H221-6.2"] {
		t.Fatalf("179/221 must be excluded: %v", got)
	}
}

func TestHeightExact(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	tol := model.DefaultTolerance()
	tol.HeightMode = model.HeightExact
	alts, err := f.FindAlternatives(model.Target{MRd: 1.05, VRd: 0, Height: 200}, tol)
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	if len(alts.Schoeck.Records) != 1 || alts.Schoeck.Records[0].ProductName != origin {
		t.Fatalf("exact height = %v", recordNames(alts.Schoeck.Records))
	}
}

func TestCapacityBoundsInclusive(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	tol := model.DefaultTolerance()
	tol.MRdLower, tol.MRdUpper = 0.5, 1.05
	target := model.Target{MRd: 1.0, VRd: 0, Height: 200}

	alts, err := f.FindAlternatives(target, tol)
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	if !recordNames(alts.Schoeck.Records)[origin] {
		t.Fatalf("record at mrd*upper must be included")
	}
	lo, hi := target.MRd*tol.MRdLower, target.MRd*tol.MRdUpper
	for _, r := range append(alts.Schoeck.Records, alts.Leviat.Records...) {
		if r.MRd < lo || r.MRd > hi {
			t.Fatalf("%s mRd %v outside [%v, %v]", r.ProductName, r.MRd, lo, hi)
		}
	}
}

func TestSelfMatchWithoutBand(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	tol := model.Tolerance{MRdLower: 1, MRdUpper: 1, VRdLower: 1, VRdUpper: 1, HeightBelow: 20, HeightAbove: 20}
	for _, name := range []string{origin, "XT-K-M10-VV1-REI120-CV50-X60-H150-6.0", "HIT_HP-MVX-1407-16-200-35"} {
		res, err := f.SearchByModel(name, tol)
		if err != nil {
			t.Fatalf("SearchByModel(%s): %v", name, err)
		}
		if len(res.Groups) == 0 {
			t.Fatalf("%s did not resolve", name)
		}
		for _, g := range res.Groups {
			own := g.Alternatives.For(g.Source.Vendor)
			if !recordNames(own.Records)[name] {
				t.Fatalf("%s missing from its own vendor result %v", name, recordNames(own.Records))
			}
		}
	}
}

func TestNoMappingIsEmptyNotUnfiltered(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	target := model.Target{MRd: 1.0, VRd: 0.5, Height: 150, Thickness: "X60"}
	alts, err := f.FindAlternatives(target, model.DefaultTolerance())
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	if alts.Leviat.Status != model.StatusNoMapping || len(alts.Leviat.Records) != 0 {
		t.Fatalf("leviat = %+v", alts.Leviat)
	}
	if len(alts.Schoeck.Records) != 2 {
		t.Fatalf("owning vendor must stay unrestricted: %v", recordNames(alts.Schoeck.Records))
	}

	// same from the other side: Leviat "60" has no Schöck counterpart
	alts, err = f.FindAlternatives(model.Target{MRd: 1.0, VRd: 0.5, Height: 150, Thickness: "60"}, model.DefaultTolerance())
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	if alts.Schoeck.Status != model.StatusNoMapping || len(alts.Leviat.Records) != 2 {
		t.Fatalf("reverse no-mapping: schoeck=%+v leviat=%d", alts.Schoeck, len(alts.Leviat.Records))
	}
}

func TestThicknessRestriction(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	alts, err := f.FindAlternatives(model.Target{MRd: 1.0, VRd: 0.5, Height: 150, Thickness: "x120"}, model.DefaultTolerance())
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	if len(alts.Leviat.Records) != 1 || alts.Leviat.Records[0].Thickness != "120" {
		t.Fatalf("leviat = %v", recordNames(alts.Leviat.Records))
	}
	if len(alts.Schoeck.Records) != 2 {
		t.Fatalf("schoeck = %v", recordNames(alts.Schoeck.Records))
	}
}

func TestExplicitSpecsUnrestricted(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	for _, key := range []string{"", "ZZZ"} {
		alts, err := f.SearchBySpecs(model.Target{MRd: 1.0, VRd: 0.5, Height: 150, Thickness: key}, model.DefaultTolerance())
		if err != nil {
			t.Fatalf("SearchBySpecs(%q): %v", key, err)
		}
		if len(alts.Schoeck.Records) != 2 || len(alts.Leviat.Records) != 2 {
			t.Fatalf("thickness %q: schoeck=%v leviat=%v", key, recordNames(alts.Schoeck.Records), recordNames(alts.Leviat.Records))
		}
		if alts.Schoeck.Status != model.StatusOK || alts.Leviat.Status != model.StatusOK {
			t.Fatalf("statuses = %s/%s", alts.Schoeck.Status, alts.Leviat.Status)
		}
	}
}

func TestSearchBySpecsRejectsZeroTarget(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	if _, err := f.SearchBySpecs(model.Target{Height: 150}, model.DefaultTolerance()); !errors.Is(err, model.ErrInvalidQuery) {
		t.Fatalf("err = %v", err)
	}
	bad := model.DefaultTolerance()
	bad.MRdLower = -1
	if _, err := f.FindAlternatives(model.Target{MRd: 1, Height: 150}, bad); !errors.Is(err, model.ErrInvalidQuery) {
		t.Fatalf("negative multiplier err = %v", err)
	}
}

func TestSearchBySpecsAcceptsOneZeroCapacity(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	alts, err := f.SearchBySpecs(model.Target{MRd: 1.05, VRd: 0, Height: 200}, model.DefaultTolerance())
	if err != nil {
		t.Fatalf("SearchBySpecs: %v", err)
	}
	if !recordNames(alts.Schoeck.Records)[origin] {
		t.Fatalf("vRd=0 target lost the zero-shear record: %+v", alts.Schoeck.Records)
	}
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	alts, err := f.FindAlternatives(model.Target{MRd: 50, VRd: 50, Height: 500}, model.DefaultTolerance())
	if err != nil {
		t.Fatalf("FindAlternatives: %v", err)
	}
	if alts.Schoeck.Status != model.StatusEmpty || alts.Leviat.Status != model.StatusEmpty {
		t.Fatalf("statuses = %s/%s", alts.Schoeck.Status, alts.Leviat.Status)
	}
}

func TestWindowResolvesInvertedBounds(t *testing.T) {
	t.Parallel()

	w := newWindow(model.Target{MRd: -1, VRd: 2, Height: 100}, model.Tolerance{MRdLower: 0.99, MRdUpper: 1.03, VRdLower: 1.03, VRdUpper: 0.99})
	if w.mrd.Min > w.mrd.Max || w.vrd.Min > w.vrd.Max {
		t.Fatalf("window not ordered: %+v", w)
	}
	if !w.mrd.Contains(-1) || !w.vrd.Contains(2) {
		t.Fatalf("target outside its own window: %+v", w)
	}
	if w.hmin != 100 || w.hmax != 100 {
		t.Fatalf("zero offsets: %d..%d", w.hmin, w.hmax)
	}
}

func TestOverlapMode(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	tol := model.Tolerance{MRdLower: 1, MRdUpper: 1, VRdLower: 1, VRdUpper: 1, HeightBelow: 0, HeightAbove: 0}
	target := model.Target{MRd: 1.06, VRd: 0, Height: 200}

	point, err := f.FindAlternatives(target, tol)
	if err != nil {
		t.Fatalf("point: %v", err)
	}
	if len(point.Leviat.Records) != 0 {
		t.Fatalf("point mode should miss 1.06: %v", recordNames(point.Leviat.Records))
	}

	tol.Compare = model.CompareOverlap
	rng, err := f.FindAlternatives(target, tol)
	if err != nil {
		t.Fatalf("overlap: %v", err)
	}
	if len(rng.Leviat.Ranges) != 1 {
		t.Fatalf("overlap ranges = %+v", rng.Leviat.Ranges)
	}
	r := rng.Leviat.Ranges[0]
	if r.ProductName != "HIT_HP-MVX-1407-16-200-35" || r.MRd.Min != 1.05 || r.MRd.Max != 1.07 || r.Variants != 2 {
		t.Fatalf("range = %+v", r)
	}
	if rng.Leviat.Status != model.StatusOK {
		t.Fatalf("status = %s", rng.Leviat.Status)
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	ds := model.Dataset{Vendor: model.Leviat, Records: []model.Record{
		{ProductName: "A", MRd: 2, VRd: 1, Thickness: "80"},
		{ProductName: "B", MRd: 5, VRd: 5, Height: 150, HeightOK: true},
		{ProductName: "A", MRd: 1, VRd: 3, Height: 200, HeightOK: true, Thickness: "90"},
	}}
	got := Aggregate(ds)
	if len(got) != 2 || got[0].ProductName != "A" || got[1].ProductName != "B" {
		t.Fatalf("order = %+v", got)
	}
	a := got[0]
	if a.MRd != (model.Interval{Min: 1, Max: 2}) || a.VRd != (model.Interval{Min: 1, Max: 3}) || a.Variants != 2 {
		t.Fatalf("A = %+v", a)
	}
	// height comes from the first variant that has one
	if !a.HeightOK || a.Height != 200 || a.Thickness != "90" {
		t.Fatalf("A height = %+v", a)
	}
}
