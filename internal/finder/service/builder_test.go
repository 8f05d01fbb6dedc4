package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"connector-finder/internal/finder/model"
)

func TestBuildStats(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	st := f.Stats()

	want := map[model.Vendor]model.LoadStats{
		model.Schoeck: {Read: 10, Unparsable: 1, Duplicates: 1, MissingHeight: 1, Loaded: 8},
		model.Leviat:  {Read: 7, FilteredOut: 1, Unparsable: 1, MissingHeight: 1, Loaded: 5},
	}
	for v, w := range want {
		if st[v] != w {
			t.Fatalf("%s stats = %+v, want %+v", v, st[v], w)
		}
	}
}

func TestBuildNonPositiveHeightIsMissing(t *testing.T) {
	t.Parallel()

	r := fixtureReader()
	sp := r["final_file_extended_columns_HIT_SP"]
	sp.Rows = append(sp.Rows,
		[]string{"HIT_SP-ZERO", "-1,00", "0,5", "0", "M1", "V1", "25/30", "60"},
		[]string{"HIT_SP-NEG", "-1,00", "0,5", "-200", "M1", "V1", "25/30", "60"},
	)
	r["updated_Isokorb_XT_full_columns"] = table("updated_Isokorb_XT_full_columns",
		[]string{"product_name", "mRd", "vRd", "Height"},
		[]string{"XT-NO-HEIGHT-TOKEN", "1,00", "0,50", "-200"},
	)
	f, err := Build(context.Background(), r, DefaultBuildOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, ds := range []model.Dataset{f.schoeck, f.leviat} {
		for _, rec := range ds.Records {
			if rec.HeightOK && rec.Height <= 0 {
				t.Fatalf("%s loaded with height %d", rec.ProductName, rec.Height)
			}
		}
	}
	if got := f.Stats()[model.Leviat].MissingHeight; got != 3 {
		t.Fatalf("leviat missing heights = %d, want 3", got)
	}
	if got := f.Stats()[model.Schoeck].MissingHeight; got != 2 {
		t.Fatalf("schoeck missing heights = %d, want 2", got)
	}
}

func TestBuildSchoeckRecord(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	var got *model.Record
	for i, r := range f.schoeck.Records {
		if r.ProductName == "T-K-M9-VV1-REI120-CV35-X80-H200-6.2" {
			got = &f.schoeck.Records[i]
			break
		}
	}
	if got == nil {
		t.Fatalf("record missing")
	}
	if got.MRd != 1.05 || got.VRd != 0 || got.Height != 200 || !got.HeightOK || got.Thickness != "X80" {
		t.Fatalf("record = %+v", *got)
	}
	// the duplicate in the XT table must not override the T row
	if got.Table != "updated_Isokorb_T_full_columns" {
		t.Fatalf("table = %s", got.Table)
	}
}

func TestBuildLeviatConcreteClass(t *testing.T) {
	t.Parallel()

	f := fixtureFinder(t)
	for _, r := range f.leviat.Records {
		if r.MRd == 9 {
			t.Fatalf("row of class 20/25 was loaded: %+v", r)
		}
		if r.MRd < 0 || r.VRd < 0 {
			t.Fatalf("negative capacity: %+v", r)
		}
	}
}

func TestBuildMissingColumn(t *testing.T) {
	t.Parallel()

	r := fixtureReader()
	r["final_file_extended_columns_HIT_SP"] = table("final_file_extended_columns_HIT_SP",
		[]string{"product_name", "mRd_minus"}, []string{"x", "1"})

	_, err := Build(context.Background(), r, DefaultBuildOptions(), zerolog.Nop())
	if err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestBuildMissingTable(t *testing.T) {
	t.Parallel()

	r := fixtureReader()
	delete(r, "thickness_mapping")
	if _, err := Build(context.Background(), r, DefaultBuildOptions(), zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing mapping table")
	}

	opt := DefaultBuildOptions()
	opt.MappingTable = ""
	f, err := Build(context.Background(), r, opt, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build without mapping: %v", err)
	}
	if f.Mapper().Len() != 0 {
		t.Fatalf("mapper should be empty")
	}
}

func TestSchoeckHeight(t *testing.T) {
	t.Parallel()

	opt := DefaultBuildOptions()
	if h, err := SchoeckHeight("T-K-M9-VV1-REI120-CV35-X80-H200-6.2", opt); err != nil || h != 200 {
		t.Fatalf("height = %d, %v", h, err)
	}
	for _, bad := range []string{"T-K-M9", "T-K-M9-VV1-REI120-CV35-X80-200-6.2", "T-K-M9-VV1-REI120-CV35-X80-H-6.2", "T-K-M9-VV1-REI120-CV35-X80-Habc-6.2"} {
		if _, err := SchoeckHeight(bad, opt); !errors.Is(err, model.ErrMalformedHeight) {
			t.Fatalf("SchoeckHeight(%q) err = %v", bad, err)
		}
	}
}

func TestResolveColumn(t *testing.T) {
	t.Parallel()

	cols := []string{"Product Name", "MRD minus", "vRd_plus"}
	if i := resolveColumn(cols, "product_name"); i != 0 {
		t.Fatalf("product_name -> %d", i)
	}
	if i := resolveColumn(cols, "mRd_minus"); i != 1 {
		t.Fatalf("mRd_minus -> %d", i)
	}
	if i := resolveColumn(cols, "hh|Height"); i != -1 {
		t.Fatalf("hh -> %d", i)
	}
}

func TestMapperFromTablePositional(t *testing.T) {
	t.Parallel()

	m, err := mapperFromTable(table("map", []string{"a", "b"}, []string{"x80", "80.0"}, []string{"", "90"}))
	if err != nil {
		t.Fatalf("mapperFromTable: %v", err)
	}
	keys, err := m.Counterpart(model.Schoeck, "X80")
	if err != nil || len(keys) != 1 || keys[0] != "80" {
		t.Fatalf("X80 -> %v, %v", keys, err)
	}
	back, err := m.Counterpart(model.Leviat, "80")
	if err != nil || back[0] != "X80" {
		t.Fatalf("80 -> %v, %v", back, err)
	}
	if _, err := m.Counterpart(model.Leviat, "90"); !errors.Is(err, model.ErrNoMapping) {
		t.Fatalf("blank pair must be ignored, err = %v", err)
	}
}
