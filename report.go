package rgrreport

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Report sheet and file naming.
const (
	SheetData       = "Data"
	SheetProcess    = "Process"
	AllCampusPrefix = "ALL_CAMPUS"
	DateLayout      = "01.02.06" // MM.DD.YY
	noCampusName    = "NO_CAMPUS"

	firstColumnWidth = 15 // 105 px
)

// Process sheet headers around the term columns.
var (
	identityHeaders = []string{ColID, ColLastName, ColFirstName, ColCareer, ColCampus}
	rosterHeaders   = []string{"Roster Term 1", "Roster Term 2", "Roster Term 3"}
	trailingHeaders = []string{"Lifetime Credits", "Credits to Charge", "Tuition to Charge"}
)

// processLayout holds the 0-based column positions of the Process sheet.
type processLayout struct {
	terms     int
	career    int
	firstRost int
	firstTerm int
	lifetime  int
	credits   int
	tuition   int
}

func newProcessLayout(terms int) processLayout {
	first := len(identityHeaders) + len(rosterHeaders)
	return processLayout{
		terms:     terms,
		career:    3,
		firstRost: len(identityHeaders),
		firstTerm: first,
		lifetime:  first + terms,
		credits:   first + terms + 1,
		tuition:   first + terms + 2,
	}
}

// sampleLayout is used to check formula templates before any data is read.
func sampleLayout() processLayout { return newProcessLayout(1) }

// current is the latest term column, which caps the credits charged per row.
// Without term columns it falls back to the lifetime column.
func (l processLayout) current() int {
	if l.terms == 0 {
		return l.lifetime
	}
	return l.firstTerm + l.terms - 1
}

func (l processLayout) headers(terms []string) []any {
	var h []any
	for _, s := range identityHeaders {
		h = append(h, s)
	}
	for _, s := range rosterHeaders {
		h = append(h, s)
	}
	for _, s := range terms {
		h = append(h, s)
	}
	for _, s := range trailingHeaders {
		h = append(h, s)
	}
	return h
}

// Report describes one written workbook.
type Report struct {
	All             bool // the unfiltered report
	Campus          string
	Path            string
	DataRows        int
	ProcessRows     int
	LifetimeCredits decimal.Decimal
}

// Name is AllCampusPrefix for the ALL report, else the file-safe campus code.
func (r Report) Name() string {
	if r.All {
		return AllCampusPrefix
	}
	return SafeFileName(r.Campus)
}

// Emitter writes the ALL report and one report per campus.
type Emitter struct {
	rates  *Rates
	outDir string
	date   time.Time
	recalc bool
	log    *zap.Logger
}

// NewEmitter creates an Emitter writing into outDir with date in file names.
// recalc marks the files for a full recalculation when opened.
func NewEmitter(rates *Rates, outDir string, date time.Time, recalc bool, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{rates: rates, outDir: outDir, date: date, recalc: recalc, log: log}
}

// FileName returns the output file name of a report.
func (em *Emitter) FileName(r Report) string {
	return fmt.Sprintf("%s_%s.xlsx", r.Name(), em.date.Format(DateLayout))
}

// uniqueFileName returns FileName(r), or a "_2", "_3"... variant when an
// earlier report of the run already took that name. Names compare case
// insensitively.
func (em *Emitter) uniqueFileName(r Report, used map[string]bool) string {
	name := em.FileName(r)
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d_%s.xlsx", r.Name(), n, em.date.Format(DateLayout))
	}
	used[strings.ToLower(name)] = true
	if name != em.FileName(r) {
		em.log.Warn("report file name already used, renamed",
			zap.String("campus", r.Campus),
			zap.String("file", name))
	}
	return name
}

// Emit writes the unfiltered ALL report followed by one report per campus in
// agg.Campuses order.
func (em *Emitter) Emit(e *Enrollment, agg *Aggregate) ([]Report, error) {
	campusCol := e.Table.Index(ColCampus)
	used := map[string]bool{}

	all, err := em.write(Report{All: true}, used, e.Table, e.Table.Rows, agg.Terms, agg.Rows)
	if err != nil {
		return nil, err
	}
	reports := []Report{all}

	for _, campus := range agg.Campuses {
		var data [][]string
		for _, row := range e.Table.Rows {
			if row[campusCol] == campus {
				data = append(data, row)
			}
		}
		rep, err := em.write(Report{Campus: campus}, used, e.Table, data, agg.Terms, agg.RowsForCampus(campus))
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (em *Emitter) write(rep Report, used map[string]bool, t *Table, data [][]string, terms []string, rows []StudentCareerRow) (Report, error) {
	rep.Path = filepath.Join(em.outDir, em.uniqueFileName(rep, used))
	rep.DataRows = len(data)
	rep.ProcessRows = len(rows)
	rep.LifetimeCredits = decimal.Zero
	for _, r := range rows {
		rep.LifetimeCredits = rep.LifetimeCredits.Add(r.LifetimeCredits)
	}

	wb := NewWorkbook()
	defer wb.Close()

	if err := em.writeData(wb, t.Headers, data); err != nil {
		return rep, err
	}
	if err := em.writeProcess(wb, terms, rows); err != nil {
		return rep, err
	}
	if em.recalc {
		if err := wb.SetRecalculateOnOpen(true); err != nil {
			return rep, err
		}
	}
	if err := wb.SaveAs(rep.Path); err != nil {
		return rep, err
	}
	em.log.Info("saved report",
		zap.String("file", filepath.Base(rep.Path)),
		zap.Int("data_rows", rep.DataRows),
		zap.Int("process_rows", rep.ProcessRows))
	return rep, nil
}

// writeData writes the raw rows with a styled header.
func (em *Emitter) writeData(wb *Workbook, headers []string, data [][]string) error {
	if err := wb.AddSheet(SheetData); err != nil {
		return err
	}
	h := make([]any, len(headers))
	for i, s := range headers {
		h[i] = s
	}
	if err := wb.WriteRow(SheetData, 0, h); err != nil {
		return err
	}
	for i, row := range data {
		values := make([]any, len(row))
		for j, s := range row {
			values[j] = cellValue(s)
		}
		if err := wb.WriteRow(SheetData, i+1, values); err != nil {
			return err
		}
	}
	if len(headers) > 0 {
		if err := wb.SetStyle(NewCellRef(SheetData, 0, 0), NewCellRef(SheetData, 0, len(headers)-1), StyleHeader); err != nil {
			return err
		}
	}
	return wb.SetColumnWidth(SheetData, 0, firstColumnWidth)
}

// writeProcess writes the aggregated rows, their formulas, the total row and
// the sheet formatting.
func (em *Emitter) writeProcess(wb *Workbook, terms []string, rows []StudentCareerRow) error {
	l := newProcessLayout(len(terms))
	if err := wb.AddSheet(SheetProcess); err != nil {
		return err
	}
	headers := l.headers(terms)
	if err := wb.WriteRow(SheetProcess, 0, headers); err != nil {
		return err
	}

	for i, r := range rows {
		sheetRow := i + 1
		values := []any{cellValue(r.ID), r.LastName, r.FirstName, r.Career, r.Campus}
		for _, t := range r.RosterTerms {
			values = append(values, cellValue(t))
		}
		for _, c := range r.Terms {
			values = append(values, c.Value())
		}
		values = append(values, r.LifetimeCredits.InexactFloat64())
		if err := wb.WriteRow(SheetProcess, sheetRow, values); err != nil {
			return err
		}

		credits, tuition, err := em.rates.render(l, sheetRow+1)
		if err != nil {
			return err
		}
		if err := wb.SetFormula(NewCellRef(SheetProcess, sheetRow, l.credits), credits); err != nil {
			return err
		}
		if err := wb.SetFormula(NewCellRef(SheetProcess, sheetRow, l.tuition), tuition); err != nil {
			return err
		}
	}

	last := len(headers) - 1
	if err := wb.SetStyle(NewCellRef(SheetProcess, 0, 0), NewCellRef(SheetProcess, 0, last), StyleHeader); err != nil {
		return err
	}
	if err := wb.SetColumnWidth(SheetProcess, 0, firstColumnWidth); err != nil {
		return err
	}
	if err := wb.HideColumns(SheetProcess, l.firstRost, l.firstTerm-1); err != nil {
		return err
	}
	if err := wb.FreezeAt(NewCellRef(SheetProcess, 1, l.firstTerm)); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	sumRow := len(rows) + 1
	for col := l.firstTerm; col <= l.tuition; col++ {
		area := ColumnArea(col, 1, len(rows))
		if err := wb.SetFormula(NewCellRef(SheetProcess, sumRow, col), "SUM("+area.String()+")"); err != nil {
			return err
		}
	}
	if err := wb.SetStyle(NewCellRef(SheetProcess, sumRow, l.firstTerm), NewCellRef(SheetProcess, sumRow, l.credits), StyleTotal); err != nil {
		return err
	}
	if err := wb.SetStyle(NewCellRef(SheetProcess, 1, l.tuition), NewCellRef(SheetProcess, sumRow-1, l.tuition), StyleCurrency); err != nil {
		return err
	}
	return wb.SetStyle(NewCellRef(SheetProcess, sumRow, l.tuition), NewCellRef(SheetProcess, sumRow, l.tuition), StyleTotalCurrency)
}

// cellValue types a raw text cell for writing: numbers without a leading
// zero become float64, blanks stay empty, everything else is text. Numbers a
// float64 cannot hold exactly, such as long IDs, stay text.
func cellValue(s string) any {
	if s == "" {
		return nil
	}
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || !decimal.NewFromFloat(f).Equal(d) {
		return s
	}
	return f
}
