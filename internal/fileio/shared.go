package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Table is a raw sheet: header names plus data rows padded to the header width.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Extensions lists the spreadsheet formats ReadAny understands, in lookup order.
var Extensions = []string{".xlsx", ".xls", ".csv"}

// ReadAny picks the parser by file extension. headerRow is 1-based.
func ReadAny(r io.Reader, filename string, headerRow int) (*Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r, headerRow)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return toTable(name, rows, headerRow), nil
}

// pickHeader takes the header row and fills blanks with "Column N".
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	if len(rows) == 0 {
		return nil
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(strings.TrimPrefix(v, "\uFEFF"))
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// toTable keeps the rows after the header, drops fully empty ones and pads
// short rows to the header width.
func toTable(name string, rows [][]string, headerRow int) *Table {
	if headerRow < 1 {
		headerRow = 1
	}
	t := &Table{Name: name, Columns: pickHeader(rows, headerRow)}
	for r := headerRow; r < len(rows); r++ {
		rec := make([]string, len(t.Columns))
		empty := true
		for c := range t.Columns {
			if c < len(rows[r]) {
				rec[c] = strings.TrimSpace(rows[r][c])
			}
			if rec[c] != "" {
				empty = false
			}
		}
		if !empty {
			t.Rows = append(t.Rows, rec)
		}
	}
	return t
}
