// Package export writes search results as an .xlsx workbook, one sheet per
// result table, with the queried product filled yellow.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	excelize "github.com/xuri/excelize/v2"

	"connector-finder/internal/finder/model"
)

const maxSheetName = 31

// Sheet is one table plus the sheet name it goes to.
type Sheet struct {
	Name  string
	Table model.Table
}

// styles holds the workbook's style ids.
type styles struct {
	header, highlight int
	num, numHighlight int // built-in number format 2, "0.00"
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	yellow := excelize.Fill{Type: "pattern", Color: []string{"#FFFF00"}, Pattern: 1}
	defs := []struct {
		id    *int
		style *excelize.Style
	}{
		{&st.header, &excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
		}},
		{&st.highlight, &excelize.Style{Fill: yellow}},
		{&st.num, &excelize.Style{NumFmt: 2}},
		{&st.numHighlight, &excelize.Style{Fill: yellow, NumFmt: 2}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, err
		}
		*d.id = id
	}
	return st, nil
}

func WriteXLSX(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if len(sheets) == 0 {
		sheets = []Sheet{{Name: "Results"}}
	}
	used := make(map[string]int)
	for i, s := range sheets {
		name := sheetName(s.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeTable(f, name, s.Table, st); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeTable(f *excelize.File, sheet string, t model.Table, st styles) error {
	row := 1
	if t.Message != "" {
		if err := f.SetCellValue(sheet, "A1", t.Message); err != nil {
			return err
		}
		row = 3
	}
	if len(t.Columns) == 0 {
		return nil
	}
	hdr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, hdr, &t.Columns); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(t.Columns), row)
	if err := f.SetCellStyle(sheet, hdr, last, st.header); err != nil {
		return err
	}

	for _, r := range t.Rows {
		row++
		start, _ := excelize.CoordinatesToCellName(1, row)
		vals := make([]any, len(r.Cells))
		for i, c := range r.Cells {
			vals[i] = cellValue(c)
		}
		if err := f.SetSheetRow(sheet, start, &vals); err != nil {
			return err
		}
		if r.Highlight {
			end, _ := excelize.CoordinatesToCellName(len(r.Cells), row)
			if err := f.SetCellStyle(sheet, start, end, st.highlight); err != nil {
				return err
			}
		}
		for i, c := range r.Cells {
			if !rxTwoDecimals.MatchString(c) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			id := st.num
			if r.Highlight {
				id = st.numHighlight
			}
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 42)
}

// capacities are formatted with two decimals; heights are integers
var rxTwoDecimals = regexp.MustCompile(`^-?\d+\.\d{2}$`)

// cellValue keeps numeric cells numeric so the sheet can be sorted.
func cellValue(s string) any {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

func sheetName(want string, used map[string]int) string {
	if want == "" {
		want = "Results"
	}
	r := []rune(want)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	name := string(r)
	used[name]++
	if n := used[name]; n > 1 {
		suffix := fmt.Sprintf(" (%d)", n)
		rr := []rune(name)
		if len(rr)+len(suffix) > maxSheetName {
			rr = rr[:maxSheetName-len(suffix)]
		}
		name = string(rr) + suffix
	}
	return name
}
