package rgrreport

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Default input names, relative to the input directory.
const (
	DefaultRosterFile = "List.xlsx"
	DefaultRatesFile  = "Online Tuition Rates.txt"

	// DefaultEnrollmentHeaderRow skips the title row of the enrollment export.
	DefaultEnrollmentHeaderRow = 2
)

// Options holds configuration for the Generator.
type Options struct {
	inputDir            string
	outputDir           string
	enrollmentPattern   string
	enrollmentHeaderRow int
	rosterPath          string
	ratesPath           string
	reportDate          time.Time
	recalculateOnOpen   bool
	logger              *zap.Logger
}

func defaultOptions() *Options {
	return &Options{
		inputDir:            ".",
		enrollmentPattern:   DefaultEnrollmentPattern,
		enrollmentHeaderRow: DefaultEnrollmentHeaderRow,
		recalculateOnOpen:   true,
		logger:              zap.NewNop(),
	}
}

// Option configures the Generator.
type Option func(*Options)

// WithInputDir sets the directory searched for the enrollment export, and the
// base of relative roster and rate paths (default: ".").
func WithInputDir(dir string) Option {
	return func(o *Options) { o.inputDir = dir }
}

// WithOutputDir sets where reports are written (default: the input directory).
func WithOutputDir(dir string) Option {
	return func(o *Options) { o.outputDir = dir }
}

// WithEnrollmentPattern sets the glob used to find the enrollment export (default: "RGR*.xlsx").
func WithEnrollmentPattern(pattern string) Option {
	return func(o *Options) { o.enrollmentPattern = pattern }
}

// WithEnrollmentHeaderRow sets the 1-based header row of the enrollment export (default: 2).
func WithEnrollmentHeaderRow(row int) Option {
	return func(o *Options) { o.enrollmentHeaderRow = row }
}

// WithRoster sets the roster workbook path (default: "List.xlsx").
func WithRoster(path string) Option {
	return func(o *Options) { o.rosterPath = path }
}

// WithRates sets the rate file path (default: "Online Tuition Rates.txt").
func WithRates(path string) Option {
	return func(o *Options) { o.ratesPath = path }
}

// WithReportDate sets the date stamped into output file names (default: now).
func WithReportDate(date time.Time) Option {
	return func(o *Options) { o.reportDate = date }
}

// WithRecalculateOnOpen controls whether reports ask for a full formula
// recalculation when opened (default: true).
func WithRecalculateOnOpen(recalc bool) Option {
	return func(o *Options) { o.recalculateOnOpen = recalc }
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// resolve returns path joined to the input directory unless it is absolute.
func (o *Options) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(o.inputDir, path)
}
