package rgrreport

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Named cell styles used by the report sheets.
const (
	StyleHeader        = "header"         // bold on grey fill
	StyleTotal         = "total"          // bold
	StyleCurrency      = "currency"       // $#,##0
	StyleTotalCurrency = "total_currency" // bold $#,##0
)

// HeaderFill is the grey fill of header rows.
const HeaderFill = "D9D9D9"

// CurrencyFormat is the number format of the tuition column.
const CurrencyFormat = "$#,##0"

func styleSpec(name string) (*excelize.Style, error) {
	currency := CurrencyFormat
	switch name {
	case StyleHeader:
		return &excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{HeaderFill}, Pattern: 1},
		}, nil
	case StyleTotal:
		return &excelize.Style{Font: &excelize.Font{Bold: true}}, nil
	case StyleCurrency:
		return &excelize.Style{CustomNumFmt: &currency}, nil
	case StyleTotalCurrency:
		return &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &currency}, nil
	default:
		return nil, fmt.Errorf("unknown style %q", name)
	}
}

// Workbook writes one report file with excelize.
type Workbook struct {
	file   *excelize.File
	styles map[string]int // style name → excelize style ID
	sheets int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{
		file:   excelize.NewFile(),
		styles: make(map[string]int),
	}
}

// AddSheet appends a sheet. The first call renames the default sheet.
func (w *Workbook) AddSheet(name string) error {
	defer func() { w.sheets++ }()
	if w.sheets == 0 {
		return w.file.SetSheetName(w.file.GetSheetName(0), name)
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	return nil
}

// WriteRow writes values starting at column A of the 0-based row.
func (w *Workbook) WriteRow(sheet string, row int, values []any) error {
	start := NewCellRef(sheet, row, 0).CellName()
	if err := w.file.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write row %d of sheet %q: %w", row+1, sheet, err)
	}
	return nil
}

// SetFormula sets a formula (without leading "=") on a cell.
func (w *Workbook) SetFormula(ref CellRef, formula string) error {
	if err := w.file.SetCellFormula(ref.Sheet, ref.CellName(), formula); err != nil {
		return fmt.Errorf("set formula %s: %w", ref, err)
	}
	return nil
}

// SetStyle applies the named style to the rectangle from..to.
func (w *Workbook) SetStyle(from, to CellRef, name string) error {
	id, err := w.styleID(name)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(from.Sheet, from.CellName(), to.CellName(), id); err != nil {
		return fmt.Errorf("style %s:%s: %w", from, to.CellName(), err)
	}
	return nil
}

func (w *Workbook) styleID(name string) (int, error) {
	if id, ok := w.styles[name]; ok {
		return id, nil
	}
	spec, err := styleSpec(name)
	if err != nil {
		return 0, err
	}
	id, err := w.file.NewStyle(spec)
	if err != nil {
		return 0, fmt.Errorf("create style %q: %w", name, err)
	}
	w.styles[name] = id
	return id, nil
}

// HideColumns hides the 0-based columns first..last.
func (w *Workbook) HideColumns(sheet string, first, last int) error {
	cols := ColToName(first) + ":" + ColToName(last)
	if err := w.file.SetColVisible(sheet, cols, false); err != nil {
		return fmt.Errorf("hide columns %s of sheet %q: %w", cols, sheet, err)
	}
	return nil
}

// SetColumnWidth sets the width of a 0-based column.
func (w *Workbook) SetColumnWidth(sheet string, col int, width float64) error {
	name := ColToName(col)
	return w.file.SetColWidth(sheet, name, name, width)
}

// FreezeAt freezes the rows above and the columns left of ref.
func (w *Workbook) FreezeAt(ref CellRef) error {
	cell := ref.CellName()
	return w.file.SetPanes(ref.Sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      ref.Col,
		YSplit:      ref.Row,
		TopLeftCell: cell,
		ActivePane:  "bottomRight",
		Selection: []excelize.Selection{
			{SQRef: cell, ActiveCell: cell, Pane: "bottomRight"},
		},
	})
}

// SetRecalculateOnOpen tells the spreadsheet application to recalculate all
// formulas when the file is opened.
func (w *Workbook) SetRecalculateOnOpen(recalc bool) error {
	return w.file.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &recalc})
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

// Close closes the underlying excelize file.
func (w *Workbook) Close() error {
	return w.file.Close()
}
