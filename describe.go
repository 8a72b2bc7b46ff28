package rgrreport

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Describe returns a human-readable summary of a run: inputs, terms, the rows
// and lifetime credits per campus, written files and input issues.
func Describe(res *RunResult) string {
	var b strings.Builder
	if res == nil {
		return ""
	}
	fmt.Fprintf(&b, "Run %s\n", res.RunID)
	if res.Enrollment != "" {
		fmt.Fprintf(&b, "Enrollment: %s\n", filepath.Base(res.Enrollment))
	}
	if res.Roster != "" {
		fmt.Fprintf(&b, "Roster: %s\n", filepath.Base(res.Roster))
	}

	if agg := res.Aggregate; agg != nil {
		fmt.Fprintf(&b, "Terms (%d): %s\n", len(agg.Terms), strings.Join(agg.Terms, ", "))
		fmt.Fprintf(&b, "Students: %d\n", len(agg.Rows))
		for _, campus := range agg.Campuses {
			rows := agg.RowsForCampus(campus)
			credits := decimal.Zero
			exempt := 0
			for _, r := range rows {
				credits = credits.Add(r.LifetimeCredits)
				for _, c := range r.Terms {
					if c.Exempt {
						exempt++
					}
				}
			}
			fmt.Fprintf(&b, "  %s: %d rows, %s lifetime credits, %d %s cells\n",
				describeCampus(campus), len(rows), credits.String(), exempt, GSTerm)
		}
	}

	if len(res.Reports) > 0 {
		b.WriteString("Files:\n")
		for _, r := range res.Reports {
			fmt.Fprintf(&b, "  %s (%d rows)\n", filepath.Base(r.Path), r.ProcessRows)
		}
	}
	if len(res.Issues) > 0 {
		fmt.Fprintf(&b, "Issues (%d):\n", len(res.Issues))
		for _, is := range res.Issues {
			fmt.Fprintf(&b, "  %s\n", is)
		}
	}
	return b.String()
}

func describeCampus(campus string) string {
	if campus == "" {
		return noCampusName
	}
	return campus
}
