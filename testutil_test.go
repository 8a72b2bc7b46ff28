package rgrreport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// enrollmentHeaders is the header row (row 2) of the sample enrollment export.
var enrollmentHeaders = []any{"ID", "Last", "First Name", "Career", "Campus", "Term", "Units Taken"}

// sampleEnrollment is a small export covering duplicate rows, a second career
// for the same ID and two campuses.
//
//	1001 UGRD NORTH: 2231=3, 2235=6+3, 2238=4   (2235 is a roster term)
//	1002 GRAD SOUTH: 2231=6, 2238=3
//	1003 UGRD NORTH: 2238=12                    (2238 is a roster term)
//	1001 GRAD NORTH: 2238=2                     (2235 is a roster term)
var sampleEnrollment = [][]any{
	{1001, "Smith", "Ann", "UGRD", "NORTH", 2231, 3},
	{1001, "Smith", "Ann", "UGRD", "NORTH", 2235, 6},
	{1001, "Smith", "Ann", "UGRD", "NORTH", 2235, 3},
	{1001, "Smith", "Ann", "UGRD", "NORTH", 2238, 4},
	{1002, "Jones", "Bob", "GRAD", "SOUTH", 2231, 6},
	{1002, "Jones", "Bob", "GRAD", "SOUTH", 2238, 3},
	{1003, "Lee", "Cy", "UGRD", "NORTH", 2238, 12},
	{1001, "Smith", "Ann", "GRAD", "NORTH", 2238, 2},
}

// sampleRoster uses the "UID" header of real roster exports.
var sampleRoster = [][]any{
	{2235, 1001},
	{2238, 1003},
}

const sampleRates = `{"UGRD": 250, "GRAD": 500}`

// sampleDate is stamped into report names by tests: 03.15.24.
var sampleDate = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

// writeWorkbook saves rows (starting at A1) as the first sheet of path.
func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

// writeEnrollment writes an export with a title row above the headers.
func writeEnrollment(t *testing.T, dir, name string, headers []any, records [][]any) string {
	t.Helper()
	rows := [][]any{{"RGR Enrollment Report"}, headers}
	rows = append(rows, records...)
	path := filepath.Join(dir, name)
	writeWorkbook(t, path, rows)
	return path
}

func writeRoster(t *testing.T, dir string, entries [][]any) string {
	t.Helper()
	rows := [][]any{{"Term", "UID"}}
	rows = append(rows, entries...)
	path := filepath.Join(dir, DefaultRosterFile)
	writeWorkbook(t, path, rows)
	return path
}

func writeRates(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultRatesFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// sampleInputs creates a directory holding the three sample inputs.
func sampleInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeEnrollment(t, dir, "RGR_Enrollment.xlsx", enrollmentHeaders, sampleEnrollment)
	writeRoster(t, dir, sampleRoster)
	writeRates(t, dir, sampleRates)
	return dir
}

// sampleAggregate loads and joins the sample inputs.
func sampleAggregate(t *testing.T) (*Enrollment, *Aggregate) {
	t.Helper()
	dir := sampleInputs(t)
	e, _, err := LoadEnrollment(filepath.Join(dir, "RGR_Enrollment.xlsx"), DefaultEnrollmentHeaderRow)
	require.NoError(t, err)
	r, _, err := LoadRoster(filepath.Join(dir, DefaultRosterFile))
	require.NoError(t, err)
	return e, Join(e, r)
}

func testRates(t *testing.T) *Rates {
	t.Helper()
	dir := t.TempDir()
	rates, err := LoadRates(writeRates(t, dir, sampleRates))
	require.NoError(t, err)
	return rates
}

// openReport opens an emitted workbook and closes it with the test.
func openReport(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}
