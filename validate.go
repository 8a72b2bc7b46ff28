package rgrreport

import "fmt"

// Severity indicates the severity of a data-quality issue.
type Severity int

const (
	SeverityError   Severity = iota // the row or column could not be used
	SeverityWarning                 // the run continues with a documented fallback
)

// Issue is a single data-quality finding collected while loading and joining.
// Issues never abort a run; hard failures are returned as errors instead.
type Issue struct {
	Severity Severity
	Source   string // file name the issue was found in
	Row      int    // 1-based sheet row, 0 when the issue is not tied to a row
	Message  string
}

// String formats the issue as "[WARN] RGR.xlsx:12: message".
func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	if i.Row > 0 {
		return fmt.Sprintf("[%s] %s:%d: %s", sev, i.Source, i.Row, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", sev, i.Source, i.Message)
}

// Issues is an ordered list of findings.
type Issues []Issue

func (is *Issues) warn(source string, row int, format string, args ...any) {
	*is = append(*is, Issue{Severity: SeverityWarning, Source: source, Row: row, Message: fmt.Sprintf(format, args...)})
}

func (is *Issues) fail(source string, row int, format string, args ...any) {
	*is = append(*is, Issue{Severity: SeverityError, Source: source, Row: row, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any issue has SeverityError.
func (is Issues) HasErrors() bool {
	for _, i := range is {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
