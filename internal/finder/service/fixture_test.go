package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"connector-finder/internal/fileio"
	"connector-finder/internal/finder/model"
)

// memReader serves tables from memory.
type memReader map[string]*fileio.Table

func (m memReader) ReadTable(_ context.Context, name string) (*fileio.Table, error) {
	t, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no table %s", name)
	}
	return t, nil
}

func table(name string, cols []string, rows ...[]string) *fileio.Table {
	return &fileio.Table{Name: name, Columns: cols, Rows: rows}
}

var (
	schoeckCols = []string{"product_name", "mRd", "vRd"}
	leviatCols  = []string{"product_name", "mRd_minus", "vRd_plus", "hh", "mrd_type", "vrd_type", "c", "Thickness"}
)

func fixtureReader() memReader {
	return memReader{
		"updated_Isokorb_T_full_columns": table("updated_Isokorb_T_full_columns", schoeckCols,
			[]string{"T-K-M9-VV1-REI120-CV35-X80-H200-6.2", "±1,05", "-"},
			[]string{"T-K-M9-VV1-REI120-CV35-X80-H180-6.2", "1,04", "-"},
			[]string{"T-K-M9-VV1-REI120-CV35-X80-H220-6.2", "1,06", "-"},
			[]string{"T-K-M9-VV1-REI120-CV35-X80-H179-6.2", "1,05", "-"},
			[]string{"T-K-M9-VV1-REI120-CV35-X80-H221-6.2", "1,05", "-"},
			[]string{"T-K-M10-VV1-REI120-CV35-X120-H150-6.2", "1,00", "0,50"},
			[]string{"T-K-M10-VV1-REI120-CV35-X120-HX-6.2", "1,00", "0,50"},
			[]string{"T-K-BROKEN", "abc", "1"},
		),
		"updated_Isokorb_XT_full_columns": table("updated_Isokorb_XT_full_columns", schoeckCols,
			[]string{"XT-K-M10-VV1-REI120-CV50-X60-H150-6.0", "±1,01", "0,50"},
			[]string{"T-K-M9-VV1-REI120-CV35-X80-H200-6.2", "9,99", "9,99"}, // duplicate name
		),
		"final_file_extended_columns_HIT_HP": table("final_file_extended_columns_HIT_HP", leviatCols,
			[]string{"HIT_HP-MVX-1407-16-200-35", "-1,05", "0", "200", "M1", "V1", "25/30", "80"},
			[]string{"HIT_HP-MVX-1407-16-200-35", "-1,07", "0", "200", "M2", "V2", "25/30", "80"},
			[]string{"HIT_HP-MVX-1407-16-200-35", "-9,00", "0", "200", "M3", "V3", "20/25", "80"},
			[]string{"HIT_HP-MVX-1507-16-150-35", "-1,00", "0,5", "150", "M1", "V1", "25/30", "120"},
		),
		"final_file_extended_columns_HIT_SP": table("final_file_extended_columns_HIT_SP", leviatCols,
			[]string{"HIT_SP-MVX-1407-16-100-35", "-", "1,0", "100", "M1", "V1", "25/30", "100"},
			[]string{"HIT_SP-MVX-1507-16-150-60", "-1,01", "0,5", "150", "M1", "V1", "25/30", "60"},
			[]string{"HIT_SP-MVX-0000-16-150-60", "-1,00", "0,5", "?", "M1", "V1", "25/30", "60"},
		),
		"thickness_mapping": table("thickness_mapping", []string{"schoeck", "leviat"},
			[]string{"X80", "80"},
			[]string{"X120", "120"},
		),
	}
}

func fixtureFinder(t *testing.T) *Finder {
	t.Helper()
	f, err := Build(context.Background(), fixtureReader(), DefaultBuildOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return f
}

func recordNames(recs []model.Record) map[string]bool {
	out := make(map[string]bool, len(recs))
	for _, r := range recs {
		out[r.ProductName] = true
	}
	return out
}
