package rgrreport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func emitSample(t *testing.T, recalc bool) (string, []Report) {
	t.Helper()
	e, agg := sampleAggregate(t)
	out := t.TempDir()
	reports, err := NewEmitter(testRates(t), out, sampleDate, recalc, nil).Emit(e, agg)
	require.NoError(t, err)
	return out, reports
}

func cellValueAt(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func formulaAt(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellFormula(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestEmitter_FileName(t *testing.T) {
	em := NewEmitter(nil, "", sampleDate, false, nil)
	assert.Equal(t, "ALL_CAMPUS_03.15.24.xlsx", em.FileName(Report{All: true}))
	assert.Equal(t, "NORTH_03.15.24.xlsx", em.FileName(Report{Campus: "NORTH"}))
	assert.Equal(t, "A_B_03.15.24.xlsx", em.FileName(Report{Campus: "A/B"}))
	assert.Equal(t, "NO_CAMPUS_03.15.24.xlsx", em.FileName(Report{}))
}

func TestEmit_Files(t *testing.T) {
	out, reports := emitSample(t, true)

	require.Len(t, reports, 3)
	assert.Equal(t, AllCampusPrefix, reports[0].Name())
	assert.Equal(t, "NORTH", reports[1].Name())
	assert.Equal(t, "SOUTH", reports[2].Name())

	for _, name := range []string{"ALL_CAMPUS_03.15.24.xlsx", "NORTH_03.15.24.xlsx", "SOUTH_03.15.24.xlsx"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	assert.Equal(t, 8, reports[0].DataRows)
	assert.Equal(t, 4, reports[0].ProcessRows)
	assert.Equal(t, 6, reports[1].DataRows)
	assert.Equal(t, 3, reports[1].ProcessRows)
	assert.Equal(t, 2, reports[2].DataRows)
	assert.Equal(t, 1, reports[2].ProcessRows)
	assert.True(t, reports[0].LifetimeCredits.Equal(decimal.NewFromInt(18)))
}

func TestEmit_PartitionCoversAll(t *testing.T) {
	_, reports := emitSample(t, true)

	all := reports[0]
	process, data := 0, 0
	lifetime := decimal.Zero
	for _, r := range reports[1:] {
		process += r.ProcessRows
		data += r.DataRows
		lifetime = lifetime.Add(r.LifetimeCredits)
	}
	assert.Equal(t, all.ProcessRows, process)
	assert.Equal(t, all.DataRows, data)
	assert.True(t, all.LifetimeCredits.Equal(lifetime))
}

func TestEmit_DataSheet(t *testing.T) {
	_, reports := emitSample(t, true)
	f := openReport(t, reports[2].Path)

	assert.Equal(t, []string{SheetData, SheetProcess}, f.GetSheetList())
	rows, err := f.GetRows(SheetData)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Last", "First Name", "Career", "Campus", "Term", "Units Taken"}, rows[0])
	assert.Equal(t, []string{"1002", "Jones", "Bob", "GRAD", "SOUTH", "2231", "6"}, rows[1])
	assert.Equal(t, []string{"1002", "Jones", "Bob", "GRAD", "SOUTH", "2238", "3"}, rows[2])

	styleID, err := f.GetCellStyle(SheetData, "G1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)

	width, err := f.GetColWidth(SheetData, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(firstColumnWidth), width)
}

func TestEmit_ProcessSheet(t *testing.T) {
	_, reports := emitSample(t, true)
	f := openReport(t, reports[0].Path)

	rows, err := f.GetRows(SheetProcess)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ID", "Last", "First Name", "Career", "Campus",
		"Roster Term 1", "Roster Term 2", "Roster Term 3",
		"2231", "2235", "2238",
		"Lifetime Credits", "Credits to Charge", "Tuition to Charge",
	}, rows[0])

	assert.Equal(t, "1001", cellValueAt(t, f, SheetProcess, "A2"))
	assert.Equal(t, "2235", cellValueAt(t, f, SheetProcess, "F2"))
	assert.Equal(t, "", cellValueAt(t, f, SheetProcess, "G2"))
	assert.Equal(t, "3", cellValueAt(t, f, SheetProcess, "I2"))
	assert.Equal(t, GSTerm, cellValueAt(t, f, SheetProcess, "J2"))
	assert.Equal(t, "4", cellValueAt(t, f, SheetProcess, "K2"))
	assert.Equal(t, "7", cellValueAt(t, f, SheetProcess, "L2"))
	assert.Equal(t, "0", cellValueAt(t, f, SheetProcess, "J3"))

	assert.Equal(t, "IF(K2>0, IF(L2<7,0, MIN(K2,L2-6)),0)", formulaAt(t, f, SheetProcess, "M2"))
	assert.Equal(t, `IF(D5="UGRD",L5*250,L5*500)`, formulaAt(t, f, SheetProcess, "N5"))

	for _, col := range []string{"F", "G", "H"} {
		visible, err := f.GetColVisible(SheetProcess, col)
		require.NoError(t, err)
		assert.False(t, visible, col)
	}

	panes, err := f.GetPanes(SheetProcess)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, "I2", panes.TopLeftCell)
}

func TestEmit_TotalRow(t *testing.T) {
	_, reports := emitSample(t, true)
	f := openReport(t, reports[0].Path)

	assert.Equal(t, "", formulaAt(t, f, SheetProcess, "H6"))
	assert.Equal(t, "SUM(I2:I5)", formulaAt(t, f, SheetProcess, "I6"))
	assert.Equal(t, "SUM(L2:L5)", formulaAt(t, f, SheetProcess, "L6"))
	assert.Equal(t, "SUM(N2:N5)", formulaAt(t, f, SheetProcess, "N6"))

	total, err := f.CalcCellValue(SheetProcess, "L6", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "18", total)

	tuition, err := f.CalcCellValue(SheetProcess, "N6", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "7250", tuition)

	boldID, err := f.GetCellStyle(SheetProcess, "I6")
	require.NoError(t, err)
	bold, err := f.GetStyle(boldID)
	require.NoError(t, err)
	assert.True(t, bold.Font.Bold)

	for _, cell := range []string{"N2", "N6"} {
		id, err := f.GetCellStyle(SheetProcess, cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotNil(t, style.CustomNumFmt, cell)
		assert.Equal(t, CurrencyFormat, *style.CustomNumFmt, cell)
	}
}

func TestEmit_CampusFormulasUseOwnRows(t *testing.T) {
	_, reports := emitSample(t, true)
	f := openReport(t, reports[2].Path)

	assert.Equal(t, "1002", cellValueAt(t, f, SheetProcess, "A2"))
	assert.Equal(t, `IF(D2="UGRD",L2*250,L2*500)`, formulaAt(t, f, SheetProcess, "N2"))
	assert.Equal(t, "SUM(L2:L2)", formulaAt(t, f, SheetProcess, "L3"))

	credits, err := f.CalcCellValue(SheetProcess, "M2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "3", credits)
}

func TestEmit_RecalculateOnOpen(t *testing.T) {
	_, reports := emitSample(t, true)
	f := openReport(t, reports[0].Path)
	props, err := f.GetCalcProps()
	require.NoError(t, err)
	require.NotNil(t, props.FullCalcOnLoad)
	assert.True(t, *props.FullCalcOnLoad)
}

func TestEmit_NoRows(t *testing.T) {
	e := &Enrollment{Table: &Table{Headers: []string{"ID", "Campus"}}}
	agg := &Aggregate{Terms: []string{"2231"}}
	out := t.TempDir()

	reports, err := NewEmitter(testRates(t), out, sampleDate, true, nil).Emit(e, agg)
	require.NoError(t, err)
	require.Len(t, reports, 1, "only the ALL report")

	f := openReport(t, reports[0].Path)
	rows, err := f.GetRows(SheetProcess)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only, no total row")
}

func TestEmit_NoTermsAndBlankCampus(t *testing.T) {
	e := &Enrollment{
		Table: &Table{
			Headers: []string{"ID", "Career", "Campus"},
			Rows:    [][]string{{"5", "UGRD", ""}},
		},
		Records: []EnrollmentRecord{{ID: "5", Career: "UGRD", Campus: "", Row: 0}},
	}
	agg := Join(e, nil)
	out := t.TempDir()

	reports, err := NewEmitter(testRates(t), out, sampleDate, true, nil).Emit(e, agg)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, filepath.Join(out, "NO_CAMPUS_03.15.24.xlsx"), reports[1].Path)
	assert.Equal(t, 1, reports[1].DataRows)

	f := openReport(t, reports[1].Path)
	// Without term columns the credit ceiling is the lifetime column (I).
	assert.Equal(t, "IF(I2>0, IF(I2<7,0, MIN(I2,I2-6)),0)", formulaAt(t, f, SheetProcess, "J2"))
	assert.Equal(t, "SUM(I2:I2)", formulaAt(t, f, SheetProcess, "I3"))
}

func TestEmit_CollidingFileNames(t *testing.T) {
	campuses := []string{"N/A", "N_A", "ALL_CAMPUS", "n_a"}
	e := &Enrollment{
		Terms: []string{"2231"},
		Table: &Table{Headers: []string{"ID", "Career", "Campus", "Term", "Units"}},
	}
	for i, c := range campuses {
		id := strconv.Itoa(i + 1)
		e.Table.Rows = append(e.Table.Rows, []string{id, "UGRD", c, "2231", "3"})
		e.Records = append(e.Records, EnrollmentRecord{ID: id, Career: "UGRD", Campus: c, Term: "2231", UnitsTaken: decimal.NewFromInt(3), Row: i})
	}
	agg := Join(e, nil)
	out := t.TempDir()
	core, logs := observer.New(zap.WarnLevel)

	reports, err := NewEmitter(testRates(t), out, sampleDate, true, zap.New(core)).Emit(e, agg)
	require.NoError(t, err)

	var names []string
	for _, r := range reports {
		names = append(names, filepath.Base(r.Path))
	}
	assert.Equal(t, []string{
		"ALL_CAMPUS_03.15.24.xlsx",
		"N_A_03.15.24.xlsx",
		"N_A_2_03.15.24.xlsx",
		"ALL_CAMPUS_2_03.15.24.xlsx",
		"n_a_3_03.15.24.xlsx",
	}, names)
	assert.Equal(t, 3, logs.FilterMessage("report file name already used, renamed").Len())

	// Every campus file on disk holds its own row; together they cover the ALL report.
	onDisk := 0
	for _, r := range reports[1:] {
		rows, err := openReport(t, r.Path).GetRows(SheetProcess)
		require.NoError(t, err)
		require.Len(t, rows, 3, r.Path)
		assert.Equal(t, r.Campus, rows[1][4])
		onDisk += len(rows) - 2
	}
	assert.Equal(t, reports[0].ProcessRows, onDisk)
}

func TestProcessLayout(t *testing.T) {
	l := newProcessLayout(3)
	assert.Equal(t, 8, l.firstTerm)
	assert.Equal(t, 10, l.current())
	assert.Equal(t, 11, l.lifetime)
	assert.Equal(t, 12, l.credits)
	assert.Equal(t, 13, l.tuition)
	assert.Len(t, l.headers([]string{"1", "2", "3"}), 14)

	empty := newProcessLayout(0)
	assert.Equal(t, empty.lifetime, empty.current())
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(""))
	assert.Equal(t, 1001.0, cellValue("1001"))
	assert.Equal(t, 0.5, cellValue("0.5"))
	assert.Equal(t, 0.0, cellValue("0"))
	assert.Equal(t, "00123", cellValue("00123"), "leading zeros are kept as text")
	assert.Equal(t, "Smith", cellValue("Smith"))
	assert.Equal(t, "NaN", cellValue("NaN"))
	assert.Equal(t, "12345678901234567", cellValue("12345678901234567"), "IDs beyond float64 precision stay text")
	assert.Equal(t, 1e15, cellValue("1000000000000000"))
}
