package rgrreport

import "github.com/shopspring/decimal"

// GSTerm marks a term cell that falls on one of the student's roster terms.
// Marked cells are excluded from LifetimeCredits.
const GSTerm = "GS Term"

// MaxRosterTerms is the number of roster terms carried per student.
const MaxRosterTerms = 3

// Enrollment export column names.
const (
	ColID        = "ID"
	ColLastName  = "Last"
	ColFirstName = "First Name"
	ColCareer    = "Career"
	ColCampus    = "Campus"
	termHeader   = "Term"
)

// CareerUndergraduate is the career code billed at the undergraduate rate.
const CareerUndergraduate = "UGRD"

// EnrollmentRecord is one row of the enrollment export.
type EnrollmentRecord struct {
	ID         string
	LastName   string
	FirstName  string
	Career     string
	Campus     string
	Term       string
	UnitsTaken decimal.Decimal
	Row        int // index into Enrollment.Table.Rows
}

// Enrollment is the loaded enrollment export.
type Enrollment struct {
	Table   *Table
	Records []EnrollmentRecord
	Terms   []string // every term observed in a "Term" column, sorted ascending
}

// RosterEntry flags one term of one student as a roster term.
type RosterEntry struct {
	Term string
	ID   string
}

// Roster is the loaded roster export.
type Roster struct {
	Source  string
	Entries []RosterEntry
}

// TermsFor returns the roster terms of id in file order.
func (r *Roster) TermsFor(id string) []string {
	if r == nil {
		return nil
	}
	var terms []string
	for _, e := range r.Entries {
		if e.ID == id {
			terms = append(terms, e.Term)
		}
	}
	return terms
}

// TermCell is one term column of a StudentCareerRow: either a unit total or
// the GSTerm marker.
type TermCell struct {
	Units  decimal.Decimal
	Exempt bool
}

// Value returns the value written to the sheet: GSTerm or the unit total.
func (c TermCell) Value() any {
	if c.Exempt {
		return GSTerm
	}
	return c.Units.InexactFloat64()
}

// StudentCareerRow is one aggregated row per unique (ID, Career).
type StudentCareerRow struct {
	ID              string
	LastName        string
	FirstName       string
	Career          string
	Campus          string
	RosterTerms     [MaxRosterTerms]string // "" when the student has fewer roster terms
	Terms           []TermCell             // parallel to Aggregate.Terms
	LifetimeCredits decimal.Decimal
}

// Aggregate is the joined, aggregated result of a run.
type Aggregate struct {
	Terms    []string
	Rows     []StudentCareerRow
	Campuses []string // distinct campus values in first-appearance order
}

// RowsForCampus returns the rows whose Campus equals campus, in order.
func (a *Aggregate) RowsForCampus(campus string) []StudentCareerRow {
	var rows []StudentCareerRow
	for _, r := range a.Rows {
		if r.Campus == campus {
			rows = append(rows, r)
		}
	}
	return rows
}
