package rgrreport

import (
	"fmt"
	"strings"
)

// CellRef represents a single cell position on a report sheet.
type CellRef struct {
	Sheet string // sheet name (empty = current sheet)
	Row   int    // 0-based row index
	Col   int    // 0-based column index
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// String formats the CellRef as "Process!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	if c.Sheet != "" {
		return c.Sheet + "!" + c.CellName()
	}
	return c.CellName()
}

// CellName returns just the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	return ColToName(c.Col) + fmt.Sprintf("%d", c.Row+1)
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA", 702→"AAA"
func ColToName(col int) string {
	result := ""
	col++
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// AreaRef represents a rectangular range defined by two cell references.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// ColumnArea returns the range covering rows first..last (0-based) of one column.
func ColumnArea(col, first, last int) AreaRef {
	return AreaRef{First: NewCellRef("", first, col), Last: NewCellRef("", last, col)}
}

// String formats the AreaRef as "Process!A1:C5" or "A1:C5".
func (a AreaRef) String() string {
	if a.First.Sheet != "" && a.First.Sheet == a.Last.Sheet {
		return a.First.Sheet + "!" + a.First.CellName() + ":" + a.Last.CellName()
	}
	return a.First.String() + ":" + a.Last.String()
}

// SafeFileName sanitizes a campus code for use in an output file name.
// Path separators and characters Windows refuses are replaced with underscore.
func SafeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return noCampusName
	}
	forbidden := []rune{'/', '\\', ':', '*', '?', '"', '<', '>', '|'}
	runes := []rune(name)
	for i, r := range runes {
		for _, f := range forbidden {
			if r == f {
				runes[i] = '_'
				break
			}
		}
	}
	return string(runes)
}
