package service

import (
	"fmt"
	"strconv"

	"connector-finder/internal/finder/model"
)

var (
	schoeckColumns = []string{"product_name", "mRd", "vRd", "Height", "Thickness"}
	leviatColumns  = []string{"product_name", "mRd_minus", "vRd_plus", "hh", "mrd_type", "vrd_type", "Thickness"}
)

func fmt2(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// fmtRange renders an aggregated capacity as "min-max", or one value when
// the variants agree.
func fmtRange(i model.Interval) string {
	if fmt2(i.Min) == fmt2(i.Max) {
		return fmt2(i.Min)
	}
	return fmt2(i.Min) + "-" + fmt2(i.Max)
}

// Format renders one vendor's matches for display. Capacities get two
// decimals; the row whose product_name equals highlight is flagged, not
// removed. The matches themselves are not touched.
func Format(m model.VendorMatches, highlight string) model.Table {
	t := model.Table{
		Vendor:          m.Vendor,
		Title:           fmt.Sprintf("From %s's Database:", m.Vendor.Label()),
		Status:          m.Status,
		MappedThickness: m.MappedThickness,
		Columns:         schoeckColumns,
		Rows:            make([]model.Row, 0, m.Len()),
	}
	if m.Vendor == model.Leviat {
		t.Columns = leviatColumns
	}

	switch {
	case m.Status == model.StatusNoMapping:
		t.Message = fmt.Sprintf("No thickness/type mapping found for %s's files.", m.Vendor.Label())
	case m.Len() == 0:
		if t.Status == "" || t.Status == model.StatusOK {
			t.Status = model.StatusEmpty
		}
		t.Message = fmt.Sprintf("No alternative products found in %s's files.", m.Vendor.Label())
	}

	for _, r := range m.Records {
		var cells []string
		if m.Vendor == model.Leviat {
			cells = []string{r.ProductName, fmt2(r.MRd), fmt2(r.VRd), strconv.Itoa(r.Height), r.MRdType, r.VRdType, r.Thickness}
		} else {
			cells = []string{r.ProductName, fmt2(r.MRd), fmt2(r.VRd), strconv.Itoa(r.Height), r.Thickness}
		}
		t.Rows = append(t.Rows, model.Row{ProductName: r.ProductName, Cells: cells, Highlight: highlight != "" && r.ProductName == highlight})
	}
	for _, r := range m.Ranges {
		cells := []string{r.ProductName, fmtRange(r.MRd), fmtRange(r.VRd), strconv.Itoa(r.Height)}
		if m.Vendor == model.Leviat {
			cells = append(cells, "", "")
		}
		cells = append(cells, r.Thickness)
		t.Rows = append(t.Rows, model.Row{ProductName: r.ProductName, Cells: cells, Highlight: highlight != "" && r.ProductName == highlight})
	}
	return t
}

// FormatAlternatives renders both vendors, Schöck first.
func FormatAlternatives(a model.Alternatives, highlight string) []model.Table {
	return []model.Table{Format(a.Schoeck, highlight), Format(a.Leviat, highlight)}
}
