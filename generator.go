package rgrreport

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunResult summarises one run of the pipeline.
type RunResult struct {
	RunID      string
	Enrollment string // enrollment export path
	Roster     string // roster path
	Aggregate  *Aggregate
	Reports    []Report // empty after Check
	Issues     Issues
}

// Generator orchestrates a run: discovery, loading, joining and emitting.
type Generator struct {
	opts *Options
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Generator{opts: o}
}

// Generate runs the full pipeline on the inputs found in dir.
func Generate(dir string, opts ...Option) (*RunResult, error) {
	allOpts := append([]Option{WithInputDir(dir)}, opts...)
	return NewGenerator(allOpts...).Run()
}

// Run loads the inputs, joins them and writes every report. Returned errors
// are InputNotFoundError, ConfigError or UnexpectedError.
func (g *Generator) Run() (*RunResult, error) {
	res, e, rates, err := g.prepare()
	if err != nil {
		return res, Classify(err)
	}
	log := g.opts.logger.With(zap.String("run_id", res.RunID))

	outDir := g.opts.outputDir
	if outDir == "" {
		outDir = g.opts.inputDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, Classify(fmt.Errorf("create output directory %q: %w", outDir, err))
	}
	date := g.opts.reportDate
	if date.IsZero() {
		date = time.Now()
	}

	em := NewEmitter(rates, outDir, date, g.opts.recalculateOnOpen, log)
	res.Reports, err = em.Emit(e, res.Aggregate)
	if err != nil {
		return res, Classify(err)
	}
	log.Info("all campus workbooks created", zap.Int("files", len(res.Reports)))
	return res, nil
}

// Check loads and joins the inputs without writing any report.
func (g *Generator) Check() (*RunResult, error) {
	res, _, _, err := g.prepare()
	return res, Classify(err)
}

func (g *Generator) prepare() (*RunResult, *Enrollment, *Rates, error) {
	res := &RunResult{RunID: uuid.NewString()}
	log := g.opts.logger.With(zap.String("run_id", res.RunID))

	path, issues, err := FindEnrollment(g.opts.inputDir, g.opts.enrollmentPattern)
	if err != nil {
		return res, nil, nil, err
	}
	res.Enrollment = path
	res.Issues = append(res.Issues, issues...)
	log.Info("found input file", zap.String("file", path))

	ratesPath := g.opts.resolve(g.opts.ratesPath, DefaultRatesFile)
	rates, err := LoadRates(ratesPath)
	if err != nil {
		return res, nil, nil, err
	}
	log.Debug("loaded rates",
		zap.String("ugrd", rates.Undergraduate.String()),
		zap.String("grad", rates.Graduate.String()),
		zap.Int("free_credits", rates.FreeCredits))

	e, issues, err := LoadEnrollment(path, g.opts.enrollmentHeaderRow)
	if err != nil {
		return res, nil, nil, err
	}
	res.Issues = append(res.Issues, issues...)

	res.Roster = g.opts.resolve(g.opts.rosterPath, DefaultRosterFile)
	roster, issues, err := LoadRoster(res.Roster)
	if err != nil {
		return res, nil, nil, err
	}
	res.Issues = append(res.Issues, issues...)

	res.Aggregate = Join(e, roster)
	log.Info("joined enrollment and roster",
		zap.Int("records", len(e.Records)),
		zap.Int("roster_entries", len(roster.Entries)),
		zap.Int("rows", len(res.Aggregate.Rows)),
		zap.Strings("terms", res.Aggregate.Terms),
		zap.Strings("campuses", res.Aggregate.Campuses))
	for _, is := range res.Issues {
		log.Warn("input issue", zap.String("issue", is.String()))
	}
	return res, e, rates, nil
}
