package rgrreport

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
)

// Default formula templates. ${...} segments are expr expressions evaluated
// against the row environment built by FormulaEnv; the rest is copied as-is.
const (
	DefaultCreditsFormula = `IF(${current}${row}>0, IF(${lifetime}${row}<${free+1},0, MIN(${current}${row},${lifetime}${row}-${free})),0)`
	DefaultTuitionFormula = `IF(${career}${row}="` + CareerUndergraduate + `",${lifetime}${row}*${ugrd},${lifetime}${row}*${grad})`
)

const (
	notationBegin = "${"
	notationEnd   = "}"
)

// ExpressionEvaluator evaluates template expressions.
type ExpressionEvaluator interface {
	Evaluate(expression string, data map[string]any) (any, error)
}

// exprEvaluator implements ExpressionEvaluator using expr-lang/expr.
type exprEvaluator struct {
	cache sync.Map // expression string → compiled *vm.Program
}

// NewExpressionEvaluator creates a new expression evaluator backed by expr-lang/expr.
func NewExpressionEvaluator() ExpressionEvaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := e.compile(expression, data)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", expression, err)
	}
	result, err := expr.Run(program, data)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) compile(expression string, env map[string]any) (*vm.Program, error) {
	if cached, ok := e.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, err
	}
	e.cache.Store(expression, program)
	return program, nil
}

// ExpressionSegment is a part of a formula template: literal text or an expression.
type ExpressionSegment struct {
	IsExpression bool
	Text         string // literal text or expression content (without delimiters)
}

// ParseExpressions splits a template into segments of literal text and expressions.
// For example, "MIN(${current}${row},1)" → [{true,"current"},{true,"row"}] wrapped in literals.
func ParseExpressions(value string) ([]ExpressionSegment, error) {
	var segments []ExpressionSegment
	remaining := value

	for {
		startIdx := strings.Index(remaining, notationBegin)
		if startIdx < 0 {
			break
		}
		searchFrom := startIdx + len(notationBegin)
		endIdx := findMatchingEnd(remaining[searchFrom:])
		if endIdx < 0 {
			return nil, fmt.Errorf("unterminated %q in %q", notationBegin, value)
		}
		endIdx += searchFrom

		if startIdx > 0 {
			segments = append(segments, ExpressionSegment{Text: remaining[:startIdx]})
		}
		segments = append(segments, ExpressionSegment{
			IsExpression: true,
			Text:         strings.TrimSpace(remaining[searchFrom:endIdx]),
		})
		remaining = remaining[endIdx+len(notationEnd):]
	}

	if remaining != "" {
		segments = append(segments, ExpressionSegment{Text: remaining})
	}
	return segments, nil
}

// findMatchingEnd finds the position of the matching end delimiter,
// handling nested begin/end pairs.
func findMatchingEnd(s string) int {
	depth := 0
	for i := 0; i <= len(s)-len(notationEnd); i++ {
		if strings.HasPrefix(s[i:], notationBegin) {
			depth++
		} else if strings.HasPrefix(s[i:], notationEnd) {
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// FormulaTemplate renders the formula text of one report column for a given row.
type FormulaTemplate struct {
	source    string
	segments  []ExpressionSegment
	evaluator ExpressionEvaluator
}

// ParseFormula parses a formula template. A leading "=" is dropped: cell
// formulas are stored without it.
func ParseFormula(source string) (*FormulaTemplate, error) {
	source = strings.TrimPrefix(strings.TrimSpace(source), "=")
	if source == "" {
		return nil, fmt.Errorf("empty formula template")
	}
	segments, err := ParseExpressions(source)
	if err != nil {
		return nil, err
	}
	return &FormulaTemplate{source: source, segments: segments, evaluator: NewExpressionEvaluator()}, nil
}

// Source returns the template text.
func (t *FormulaTemplate) Source() string { return t.source }

// Render evaluates every expression segment against env and returns the formula text.
func (t *FormulaTemplate) Render(env FormulaEnv) (string, error) {
	data := env.toMap()
	var b strings.Builder
	for _, seg := range t.segments {
		if !seg.IsExpression {
			b.WriteString(seg.Text)
			continue
		}
		val, err := t.evaluator.Evaluate(seg.Text, data)
		if err != nil {
			return "", fmt.Errorf("render formula %q: %w", t.source, err)
		}
		if val != nil {
			fmt.Fprintf(&b, "%v", val)
		}
	}
	return b.String(), nil
}

// FormulaEnv is what a formula template can reference for one Process row.
type FormulaEnv struct {
	Row      int    // 1-based sheet row
	Career   string // column letters
	Current  string
	Lifetime string
	Credits  string
	Tuition  string
	UGRD     decimal.Decimal
	GRAD     decimal.Decimal
	Free     int
}

func (e FormulaEnv) toMap() map[string]any {
	return map[string]any{
		"row":      e.Row,
		"career":   e.Career,
		"current":  e.Current,
		"lifetime": e.Lifetime,
		"credits":  e.Credits,
		"tuition":  e.Tuition,
		"ugrd":     e.UGRD,
		"grad":     e.GRAD,
		"free":     e.Free,
	}
}

// Formulas holds the two per-row formula templates of the Process sheet.
type Formulas struct {
	Credits *FormulaTemplate
	Tuition *FormulaTemplate
}

// NewFormulas parses both templates; a blank source selects the default.
func NewFormulas(credits, tuition string) (Formulas, error) {
	credits, tuition = strings.TrimSpace(credits), strings.TrimSpace(tuition)
	if credits == "" {
		credits = DefaultCreditsFormula
	}
	if tuition == "" {
		tuition = DefaultTuitionFormula
	}
	c, err := ParseFormula(credits)
	if err != nil {
		return Formulas{}, fmt.Errorf("credits formula: %w", err)
	}
	t, err := ParseFormula(tuition)
	if err != nil {
		return Formulas{}, fmt.Errorf("tuition formula: %w", err)
	}
	return Formulas{Credits: c, Tuition: t}, nil
}
