package rgrreport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows bounds legacy .xls reads.
const maxXLSRows = 1 << 20

// Table holds the first sheet of an input workbook: normalized headers and
// string rows padded to the header width.
type Table struct {
	Source   string     // base name of the file the table was read from
	Headers  []string   // normalized, unique header names
	Rows     [][]string // data rows, len(row) == len(Headers)
	FirstRow int        // 1-based sheet row of Rows[0]
}

// ReadTable reads the first sheet of path. headerRow is the 1-based row that
// holds the column headers; rows above it are skipped. The header stops at the
// first blank header cell and the data stops at the first fully blank row.
func ReadTable(path string, headerRow int) (*Table, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	rows, err := readSheetRows(path)
	if err != nil {
		return nil, err
	}
	t := &Table{Source: filepath.Base(path), FirstRow: headerRow + 1}
	if len(rows) < headerRow {
		return t, nil
	}

	var headers []string
	for _, h := range rows[headerRow-1] {
		h = strings.TrimSpace(h)
		if h == "" {
			break
		}
		headers = append(headers, h)
	}
	t.Headers = NormalizeHeaders(headers)

	for _, raw := range rows[headerRow:] {
		row := make([]string, len(t.Headers))
		blank := true
		for i := range row {
			if i < len(raw) {
				row[i] = strings.TrimSpace(raw[i])
			}
			if row[i] != "" {
				blank = false
			}
		}
		if blank {
			break
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// readSheetRows returns every row of the first sheet. Legacy .xls files go
// through extrame/xls, everything else through excelize.
func readSheetRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InputNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		wb, err := xls.Open(path, "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open workbook %q: %w", path, err)
		}
		if wb.NumSheets() == 0 {
			return nil, fmt.Errorf("open workbook %q: no worksheet found", path)
		}
		return wb.ReadAllCells(maxXLSRows), nil
	default:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %q: %w", path, err)
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("open workbook %q: no worksheet found", path)
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read rows from %q: %w", path, err)
		}
		return rows, nil
	}
}

// NormalizeHeaders makes header names unique. The first occurrence keeps its
// name; later duplicates are suffixed "_1", "_2", ... in order of appearance.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	counts := make(map[string]int, len(headers))
	for i, h := range headers {
		n, seen := counts[h]
		if !seen {
			counts[h] = 0
			out[i] = h
			continue
		}
		n++
		counts[h] = n
		out[i] = fmt.Sprintf("%s_%d", h, n)
	}
	return out
}

// Index returns the position of the header named exactly name, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// IndexContaining returns the first header containing any of subs, or -1.
func (t *Table) IndexContaining(subs ...string) int {
	for i, h := range t.Headers {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return i
			}
		}
	}
	return -1
}

// IndicesContaining returns every header position containing sub.
func (t *Table) IndicesContaining(sub string) []int {
	var idx []int
	for i, h := range t.Headers {
		if strings.Contains(h, sub) {
			idx = append(idx, i)
		}
	}
	return idx
}

// integerCode renders an integral numeric cell exactly: "2231.0" → "2231".
// ok is false for blank, non-numeric or fractional values.
func integerCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return "", false
	}
	return d.String(), true
}

// coerceCode is integerCode with blank or non-numeric values mapped to "0".
func coerceCode(s string) string {
	if code, ok := integerCode(s); ok {
		return code
	}
	return "0"
}
