package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"connector-finder/internal/fileio"
	"connector-finder/internal/finder/model"
	"connector-finder/internal/utils"
)

// TableReader is the read side of the store.
type TableReader interface {
	ReadTable(ctx context.Context, name string) (*fileio.Table, error)
}

// BuildOptions names the source tables and the per-vendor extraction rules.
type BuildOptions struct {
	SchoeckTables []string
	LeviatTables  []string
	MappingTable  string // empty: no mapping, a recognized thickness gives no_mapping
	ConcreteClass string

	// Schöck model numbers: T-K-M9-VV1-REI120-CV35-X80-H200-6.2
	NameDelimiter   string
	HeightToken     int    // position of "H200"
	HeightPrefix    string // "H"
	ThicknessToken  int    // position of "X80"
	ThicknessPrefix string
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		SchoeckTables:   []string{"updated_Isokorb_T_full_columns", "updated_Isokorb_XT_full_columns"},
		LeviatTables:    []string{"final_file_extended_columns_HIT_HP", "final_file_extended_columns_HIT_SP"},
		MappingTable:    "thickness_mapping",
		ConcreteClass:   "25/30",
		NameDelimiter:   "-",
		HeightToken:     7,
		HeightPrefix:    "H",
		ThicknessToken:  6,
		ThicknessPrefix: "X",
	}
}

var (
	schoeckRequired = map[string]string{
		"name": "product_name",
		"mrd":  "mRd",
		"vrd":  "vRd",
	}
	schoeckOptional = map[string]string{
		"height":    "Height|hh",
		"thickness": "Thickness",
	}
	leviatRequired = map[string]string{
		"name":  "product_name",
		"mrd":   "mRd_minus",
		"vrd":   "vRd_plus",
		"hh":    "hh",
		"class": "c",
	}
	leviatOptional = map[string]string{
		"mrd_type":  "mrd_type",
		"vrd_type":  "vrd_type",
		"thickness": "Thickness",
	}
)

// Build reads every source table once and returns the immutable Finder.
// The two vendors and the mapping load concurrently; the first failure
// cancels the rest.
func Build(ctx context.Context, r TableReader, opt BuildOptions, logger zerolog.Logger) (*Finder, error) {
	var (
		schoeck, leviat model.Dataset
		mapper          = NewMapper(nil)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		schoeck, err = buildVendor(gctx, r, model.Schoeck, opt.SchoeckTables, func(t *fileio.Table, ds *model.Dataset) error {
			return appendSchoeck(t, opt, ds)
		})
		return err
	})
	g.Go(func() (err error) {
		leviat, err = buildVendor(gctx, r, model.Leviat, opt.LeviatTables, func(t *fileio.Table, ds *model.Dataset) error {
			return appendLeviat(t, opt, ds)
		})
		return err
	})
	if opt.MappingTable != "" {
		g.Go(func() error {
			t, err := r.ReadTable(gctx, opt.MappingTable)
			if err != nil {
				return fmt.Errorf("mapping: %w", err)
			}
			mapper, err = mapperFromTable(t)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, ds := range []model.Dataset{schoeck, leviat} {
		logger.Info().
			Str("vendor", string(ds.Vendor)).
			Int("read", ds.Stats.Read).
			Int("filtered_out", ds.Stats.FilteredOut).
			Int("unparsable", ds.Stats.Unparsable).
			Int("duplicates", ds.Stats.Duplicates).
			Int("missing_height", ds.Stats.MissingHeight).
			Int("loaded", ds.Stats.Loaded).
			Msg("dataset built")
	}
	logger.Info().Int("pairs", mapper.Len()).Msg("thickness mapping loaded")

	return New(schoeck, leviat, mapper), nil
}

func buildVendor(ctx context.Context, r TableReader, v model.Vendor, tables []string,
	add func(*fileio.Table, *model.Dataset) error) (model.Dataset, error) {
	ds := model.Dataset{Vendor: v}
	if len(tables) == 0 {
		return ds, fmt.Errorf("%s: no source tables configured", v.Label())
	}
	for _, name := range tables {
		if err := ctx.Err(); err != nil {
			return ds, err
		}
		t, err := r.ReadTable(ctx, name)
		if err != nil {
			return ds, fmt.Errorf("%s: %w", v.Label(), err)
		}
		if err := add(t, &ds); err != nil {
			return ds, err
		}
	}
	ds.Stats.Loaded = len(ds.Records)
	return ds, nil
}

// appendSchoeck normalizes one Schöck sub-line. Names are unique across
// sub-lines; a repeated name keeps its first row.
func appendSchoeck(t *fileio.Table, opt BuildOptions, ds *model.Dataset) error {
	sc, err := bindSchema(t, schoeckRequired, schoeckOptional)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(ds.Records)+len(t.Rows))
	for _, r := range ds.Records {
		seen[r.ProductName] = struct{}{}
	}

	for _, row := range t.Rows {
		ds.Stats.Read++
		name := sc.get(row, "name")
		if name == "" {
			ds.Stats.Unparsable++
			continue
		}
		if _, dup := seen[name]; dup {
			ds.Stats.Duplicates++
			continue
		}
		mrd, err1 := ParseCapacity(sc.get(row, "mrd"), model.PlaceholderZero)
		vrd, err2 := ParseCapacity(sc.get(row, "vrd"), model.PlaceholderZero)
		if err1 != nil || err2 != nil {
			ds.Stats.Unparsable++
			continue
		}

		rec := model.Record{
			Vendor:      model.Schoeck,
			ProductName: name,
			MRd:         mrd,
			VRd:         vrd,
			Table:       t.Name,
		}
		if h, err := SchoeckHeight(name, opt); err == nil {
			rec.Height, rec.HeightOK = h, true
		} else if h, ok := positiveHeight(sc.get(row, "height")); ok {
			rec.Height, rec.HeightOK = h, true
		} else {
			ds.Stats.MissingHeight++
		}
		rec.Thickness = schoeckThickness(name, opt)
		if rec.Thickness == "" {
			rec.Thickness = ThicknessKey(sc.get(row, "thickness"))
		}

		seen[name] = struct{}{}
		ds.Records = append(ds.Records, rec)
	}
	return nil
}

// appendLeviat keeps rows of the configured concrete class. Several rows
// may share a product_name (one per load case), all are kept.
func appendLeviat(t *fileio.Table, opt BuildOptions, ds *model.Dataset) error {
	sc, err := bindSchema(t, leviatRequired, leviatOptional)
	if err != nil {
		return err
	}
	for _, row := range t.Rows {
		ds.Stats.Read++
		if opt.ConcreteClass != "" && sc.get(row, "class") != opt.ConcreteClass {
			ds.Stats.FilteredOut++
			continue
		}
		name := sc.get(row, "name")
		mrd, err1 := ParseCapacity(sc.get(row, "mrd"), model.PlaceholderReject)
		vrd, err2 := ParseCapacity(sc.get(row, "vrd"), model.PlaceholderReject)
		if name == "" || err1 != nil || err2 != nil {
			ds.Stats.Unparsable++
			continue
		}

		rec := model.Record{
			Vendor:      model.Leviat,
			ProductName: name,
			MRd:         mrd,
			VRd:         vrd,
			Thickness:   ThicknessKey(sc.get(row, "thickness")),
			MRdType:     sc.get(row, "mrd_type"),
			VRdType:     sc.get(row, "vrd_type"),
			Table:       t.Name,
		}
		if h, ok := positiveHeight(sc.get(row, "hh")); ok {
			rec.Height, rec.HeightOK = h, true
		} else {
			ds.Stats.MissingHeight++
		}
		ds.Records = append(ds.Records, rec)
	}
	return nil
}

// SchoeckHeight parses the height token of a Schöck model number:
// "...-X80-H200-6.2" → 200.
func SchoeckHeight(name string, opt BuildOptions) (int, error) {
	tok, ok := token(name, opt.NameDelimiter, opt.HeightToken)
	if !ok {
		return 0, fmt.Errorf("%w: %q has no token %d", model.ErrMalformedHeight, name, opt.HeightToken)
	}
	digits, found := strings.CutPrefix(tok, opt.HeightPrefix)
	if !found || digits == "" {
		return 0, fmt.Errorf("%w: token %q in %q", model.ErrMalformedHeight, tok, name)
	}
	h, err := strconv.Atoi(digits)
	if err != nil || h <= 0 {
		return 0, fmt.Errorf("%w: token %q in %q", model.ErrMalformedHeight, tok, name)
	}
	return h, nil
}

// positiveHeight reads a height column; zero or negative counts as missing.
func positiveHeight(raw string) (int, bool) {
	h, ok := utils.ParseInt(raw)
	return h, ok && h > 0
}

func schoeckThickness(name string, opt BuildOptions) string {
	tok, ok := token(name, opt.NameDelimiter, opt.ThicknessToken)
	if !ok || !strings.HasPrefix(tok, opt.ThicknessPrefix) || len(tok) == len(opt.ThicknessPrefix) {
		return ""
	}
	return ThicknessKey(tok)
}

func token(name, delim string, pos int) (string, bool) {
	if delim == "" || pos < 0 {
		return "", false
	}
	parts := strings.Split(name, delim)
	if pos >= len(parts) {
		return "", false
	}
	return strings.TrimSpace(parts[pos]), true
}
