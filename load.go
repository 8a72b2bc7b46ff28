package rgrreport

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LoadEnrollment reads the enrollment export at path. headerRow is the 1-based
// row holding the column headers (exports carry a title row above it).
func LoadEnrollment(path string, headerRow int) (*Enrollment, Issues, error) {
	t, err := ReadTable(path, headerRow)
	if err != nil {
		return nil, nil, err
	}
	var issues Issues

	cols := map[string]int{}
	for _, name := range []string{ColID, ColLastName, ColFirstName, ColCareer, ColCampus} {
		cols[name] = t.Index(name)
	}
	for _, name := range []string{ColID, ColCareer, ColCampus} {
		if cols[name] < 0 {
			return nil, nil, &InputNotFoundError{Path: path, Column: name}
		}
	}
	termCols := t.IndicesContaining(termHeader)
	if len(termCols) == 0 {
		return nil, nil, &InputNotFoundError{Path: path, Column: termHeader}
	}
	mainTerm := termCols[0]

	unitsCol := t.IndexContaining("Unit Taken", "Units Taken", "Units")
	if unitsCol < 0 {
		issues.warn(t.Source, 0, "no units column found, every term total is 0")
	}

	e := &Enrollment{Table: t}
	for i, row := range t.Rows {
		sheetRow := t.FirstRow + i
		id := normalizeID(row[cols[ColID]])
		if id == "" {
			issues.fail(t.Source, sheetRow, "row has no %s, skipped", ColID)
			continue
		}
		rec := EnrollmentRecord{
			ID:         id,
			LastName:   cell(row, cols[ColLastName]),
			FirstName:  cell(row, cols[ColFirstName]),
			Career:     row[cols[ColCareer]],
			Campus:     row[cols[ColCampus]],
			UnitsTaken: decimal.Zero,
			Row:        i,
		}
		rec.Term, _ = integerCode(row[mainTerm])

		if unitsCol >= 0 && row[unitsCol] != "" {
			units, err := decimal.NewFromString(row[unitsCol])
			if err != nil {
				issues.warn(t.Source, sheetRow, "units %q is not a number, counted as 0", row[unitsCol])
			} else {
				rec.UnitsTaken = units
			}
		}
		e.Records = append(e.Records, rec)
	}

	e.Terms = collectTerms(t, termCols)
	return e, issues, nil
}

// collectTerms gathers the distinct integer values of every term column and
// sorts them numerically.
func collectTerms(t *Table, termCols []int) []string {
	seen := map[string]bool{}
	var terms []string
	for _, row := range t.Rows {
		for _, c := range termCols {
			code, ok := integerCode(row[c])
			if !ok || seen[code] {
				continue
			}
			seen[code] = true
			terms = append(terms, code)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		return decimal.RequireFromString(terms[i]).LessThan(decimal.RequireFromString(terms[j]))
	})
	return terms
}

// LoadRoster reads the roster export at path. The first column is the term,
// the second the student ID (exported as "UID" or "ID").
func LoadRoster(path string) (*Roster, Issues, error) {
	t, err := ReadTable(path, 1)
	if err != nil {
		return nil, nil, err
	}
	if len(t.Headers) < 2 {
		return nil, nil, &InputNotFoundError{Path: path, Column: ColID}
	}
	if t.Headers[1] == "UID" {
		t.Headers[1] = ColID
	}

	var issues Issues
	r := &Roster{Source: t.Source}
	counts := map[string]int{}
	for i, row := range t.Rows {
		entry := RosterEntry{Term: coerceCode(row[0]), ID: coerceCode(row[1])}
		if entry.ID == "0" {
			issues.warn(t.Source, t.FirstRow+i, "roster row has no numeric %s", ColID)
		}
		counts[entry.ID]++
		if counts[entry.ID] == MaxRosterTerms+1 {
			issues.warn(t.Source, t.FirstRow+i, "%s %s has more than %d roster terms, extra terms ignored", ColID, entry.ID, MaxRosterTerms)
		}
		r.Entries = append(r.Entries, entry)
	}
	return r, issues, nil
}

// normalizeID renders numeric IDs as integers so enrollment and roster IDs
// compare equal; other IDs are kept as text.
func normalizeID(s string) string {
	if code, ok := integerCode(s); ok {
		return code
	}
	return s
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
