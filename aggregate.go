package rgrreport

import "github.com/shopspring/decimal"

type careerKey struct {
	id     string
	career string
}

type termKey struct {
	careerKey
	term string
}

// Join builds one StudentCareerRow per unique (ID, Career) of e, in order of
// first appearance, and fills its term columns.
//
// A term listed among the student's roster terms is marked GSTerm whatever the
// enrollment rows say. Any other term holds the sum of UnitsTaken over the
// rows matching (ID, Career, Term); duplicate rows are summed and a term with
// no rows holds 0. LifetimeCredits is the sum of the numeric term cells.
func Join(e *Enrollment, r *Roster) *Aggregate {
	agg := &Aggregate{Terms: e.Terms}
	sums := make(map[termKey]decimal.Decimal)
	index := make(map[careerKey]int)
	campuses := make(map[string]bool)

	for _, rec := range e.Records {
		k := careerKey{id: rec.ID, career: rec.Career}
		tk := termKey{careerKey: k, term: rec.Term}
		sums[tk] = sums[tk].Add(rec.UnitsTaken)

		if _, ok := index[k]; ok {
			continue
		}
		index[k] = len(agg.Rows)
		agg.Rows = append(agg.Rows, StudentCareerRow{
			ID:        rec.ID,
			LastName:  rec.LastName,
			FirstName: rec.FirstName,
			Career:    rec.Career,
			Campus:    rec.Campus,
		})
		if !campuses[rec.Campus] {
			campuses[rec.Campus] = true
			agg.Campuses = append(agg.Campuses, rec.Campus)
		}
	}

	for i := range agg.Rows {
		row := &agg.Rows[i]
		for j, term := range r.TermsFor(row.ID) {
			if j == MaxRosterTerms {
				break
			}
			row.RosterTerms[j] = term
		}

		row.Terms = make([]TermCell, len(agg.Terms))
		lifetime := decimal.Zero
		for j, term := range agg.Terms {
			if row.IsRosterTerm(term) {
				row.Terms[j] = TermCell{Exempt: true}
				continue
			}
			units := sums[termKey{careerKey: careerKey{id: row.ID, career: row.Career}, term: term}]
			row.Terms[j] = TermCell{Units: units}
			lifetime = lifetime.Add(units)
		}
		row.LifetimeCredits = lifetime
	}
	return agg
}

// IsRosterTerm reports whether term is one of the row's roster terms.
func (r *StudentCareerRow) IsRosterTerm(term string) bool {
	if term == "" {
		return false
	}
	for _, t := range r.RosterTerms {
		if t == term {
			return true
		}
	}
	return false
}
