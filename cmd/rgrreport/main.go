package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/javajack/rgrreport"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	wait       bool
	inputDir   string
	outputDir  string
	pattern    string
	rosterPath string
	ratesPath  string
	reportDate string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rgrreport",
	Short: "Build per-campus tuition workbooks from an RGR enrollment export",
	Long: `rgrreport reads the RGR enrollment export, the roster list and the online
tuition rates from one directory and writes:

  ALL_CAMPUS_<MM.DD.YY>.xlsx   every student, every campus
  <Campus>_<MM.DD.YY>.xlsx     one file per campus

Each workbook has a Data sheet with the raw export rows and a Process sheet
with one row per student and career, unit totals per term, and formulas for
the credits and tuition to charge.

Rates are read from "Online Tuition Rates.txt" (JSON with UGRD and GRAD) and
may be overridden with RGR_UGRD, RGR_GRAD, RGR_FREE_CREDITS,
RGR_CREDITS_FORMULA and RGR_TUITION_FORMULA, also from a .env file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(filepath.Join(inputDir, ".env"))

		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runReport,
}

// checkCmd validates the inputs without writing reports
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and join the inputs, print data issues and a summary",
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&wait, "wait", false, "Wait for Enter before exiting")
	rootCmd.PersistentFlags().StringVarP(&inputDir, "dir", "d", ".", "Directory holding the input files")
	rootCmd.PersistentFlags().StringVar(&pattern, "pattern", rgrreport.DefaultEnrollmentPattern, "Glob matching the enrollment export")
	rootCmd.PersistentFlags().StringVar(&rosterPath, "roster", rgrreport.DefaultRosterFile, "Roster workbook, relative to --dir")
	rootCmd.PersistentFlags().StringVar(&ratesPath, "rates", rgrreport.DefaultRatesFile, "Tuition rate file, relative to --dir")
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default: --dir)")
	rootCmd.Flags().StringVar(&reportDate, "date", "", "Date stamped into file names, MM.DD.YY (default: today)")

	rootCmd.AddCommand(checkCmd)
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func generatorOptions() ([]rgrreport.Option, error) {
	opts := []rgrreport.Option{
		rgrreport.WithInputDir(inputDir),
		rgrreport.WithOutputDir(outputDir),
		rgrreport.WithEnrollmentPattern(pattern),
		rgrreport.WithRoster(rosterPath),
		rgrreport.WithRates(ratesPath),
		rgrreport.WithLogger(logger),
	}
	if reportDate != "" {
		date, err := time.Parse(rgrreport.DateLayout, reportDate)
		if err != nil {
			return nil, &rgrreport.ConfigError{Path: "--date", Key: "date", Err: err}
		}
		opts = append(opts, rgrreport.WithReportDate(date))
	}
	return opts, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	opts, err := generatorOptions()
	if err != nil {
		return err
	}
	res, err := rgrreport.NewGenerator(opts...).Run()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range res.Reports {
		fmt.Fprintf(out, "Wrote %s\n", r.Path)
	}
	fmt.Fprintln(out, "All campus workbooks created.")
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := generatorOptions()
	if err != nil {
		return err
	}
	res, err := rgrreport.NewGenerator(opts...).Check()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rgrreport.Describe(res))
	if res.Issues.HasErrors() {
		return errors.New("input rows were skipped, see the issues above")
	}
	return nil
}

// printFailure writes the error block shown to the operator.
func printFailure(w io.Writer, err error) {
	err = rgrreport.Classify(err)
	fmt.Fprintln(w, "==============================")
	fmt.Fprintf(w, "%s\n", rgrreport.Kind(err))
	fmt.Fprintf(w, "%v\n", err)
	fmt.Fprintln(w, "==============================")
}

// reportFailure prints the error block. With --verbose it also lists the
// wrapped causes and logs the error with a stack trace.
func reportFailure(w io.Writer, log *zap.Logger, err error) {
	printFailure(w, err)
	if !verbose {
		return
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "caused by: %v\n", cause)
	}
	if log != nil {
		log.Error("run failed",
			zap.String("kind", rgrreport.Kind(err)),
			zap.Error(err),
			zap.Stack("stack"))
		_ = log.Sync()
	}
}

func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "Press Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		reportFailure(os.Stderr, logger, err)
	}
	if wait {
		waitForEnter(os.Stdin, os.Stdout)
	}
	if err != nil {
		os.Exit(1)
	}
}
