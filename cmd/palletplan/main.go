// PalletPlan: pallet loading planner
//
// Packs identical rectangular cases onto a rectangular pallet using either a
// single uniform block (n1) or a recursive guillotine block decomposition
// (g4), and exports the resulting layouts.
//
// Run without arguments for the classic demo (euro pallet, 400x300 cases, n1):
//   palletplan
//
// Plan a single job, or a batch from a spreadsheet:
//   palletplan --pallet 1200x1000 --case 400x300 --algorithm g4 --pdf plan.pdf
//   palletplan --batch jobs.xlsx --xlsx plans.xlsx --labels tags.pdf
//
// Serve the HTTP API:
//   palletplan --serve --listen :8080
//
// Build:
//   go build -o palletplan ./cmd/palletplan

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/piwi3910/PalletPlan/internal/engine"
	"github.com/piwi3910/PalletPlan/internal/export"
	"github.com/piwi3910/PalletPlan/internal/importer"
	"github.com/piwi3910/PalletPlan/internal/logging"
	"github.com/piwi3910/PalletPlan/internal/model"
	"github.com/piwi3910/PalletPlan/internal/project"
	"github.com/piwi3910/PalletPlan/internal/server"
)

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"default_algorithm":  "algorithm",
	"default_max_depth":  "max-depth",
	"default_max_states": "max-states",
	"workers":            "workers",
	"listen_addr":        "listen",
	"log_level":          "log-level",
	"log_file":           "log-file",
}

type options struct {
	configPath string
	pallet     string
	caseSize   string
	label      string
	batch      string
	compare    bool
	placements bool
	serve      bool
	jsonLogs   bool

	pdf    string
	labels string
	xlsx   string
	dxf    string
	chart  string
	save   string
	backup string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return demo(stdout, stderr)
	}

	fs, opts := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	if err := execute(fs, opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// demo solves the euro pallet with N1 and prints the raw solution.
func demo(stdout, stderr io.Writer) int {
	sol, err := engine.Solve(model.AlgorithmN1, model.V(1200, 800), model.V(400, 300))
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, sol)
	return 0
}

func newFlagSet(stderr io.Writer) (*pflag.FlagSet, *options) {
	d := model.DefaultAppConfig()
	o := &options{}

	fs := pflag.NewFlagSet("palletplan", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", "", "config file (default ~/.palletplan/config.json)")
	fs.StringVar(&o.pallet, "pallet", "1200x800", "pallet size WIDTHxDEPTH")
	fs.StringVar(&o.caseSize, "case", "400x300", "case size WIDTHxDEPTH")
	fs.StringVar(&o.label, "label", "", "job label")
	fs.StringVar(&o.batch, "batch", "", "plan every job in a CSV or Excel file")
	fs.BoolVar(&o.compare, "compare", false, "compare strategies instead of planning")
	fs.BoolVar(&o.placements, "placements", false, "print every placement")
	fs.BoolVar(&o.serve, "serve", false, "run the HTTP API")
	fs.BoolVar(&o.jsonLogs, "json", false, "log as JSON")

	fs.StringVar(&o.pdf, "pdf", "", "write a PDF layout report")
	fs.StringVar(&o.labels, "labels", "", "write QR pallet tags as PDF")
	fs.StringVar(&o.xlsx, "xlsx", "", "write an Excel workbook")
	fs.StringVar(&o.dxf, "dxf", "", "write DXF drawings")
	fs.StringVar(&o.chart, "chart", "", "write an HTML chart")
	fs.StringVar(&o.save, "save", "", "save plans as JSON")
	fs.StringVar(&o.backup, "backup", "", "write a backup of config and plans")

	fs.String("algorithm", string(d.DefaultAlgorithm), "placement strategy: n1 or g4")
	fs.Int("max-depth", d.DefaultMaxDepth, "g4 recursion limit")
	fs.Int("max-states", d.DefaultMaxStates, "g4 sub-rectangle limit")
	fs.Int("workers", d.Workers, "batch workers, 0 = one per CPU")
	fs.String("listen", d.ListenAddr, "HTTP listen address")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error")
	fs.String("log-file", d.LogFile, "rotating log file, empty logs to stderr")

	return fs, o
}

func execute(fs *pflag.FlagSet, o *options, stdout, stderr io.Writer) error {
	configPath := o.configPath
	if configPath == "" {
		configPath = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfigWithFlags(configPath, fs, flagBindings)
	if err != nil {
		return err
	}
	alg, err := model.ParseAlgorithm(string(cfg.DefaultAlgorithm))
	if err != nil {
		return err
	}
	cfg.DefaultAlgorithm = alg

	logger := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		JSON:       o.jsonLogs,
		Output:     stderr,
	})

	settings := model.DefaultSettings()
	cfg.ApplyToSettings(&settings)
	planner := engine.New(settings, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.serve {
		return server.New(planner, logger, cfg.Workers).Run(ctx, cfg.ListenAddr)
	}

	jobs, err := loadJobs(o, stderr)
	if err != nil {
		return err
	}

	if o.compare {
		for _, job := range jobs {
			printComparison(stdout, job, planner.CompareStrategies(job))
		}
		return nil
	}

	var plans []model.Plan
	var failed int
	for _, r := range planner.PlanBatch(ctx, jobs, cfg.Workers) {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "job %s: %v\n", jobName(r.Job), r.Err)
			continue
		}
		plans = append(plans, r.Plan)
	}
	if len(plans) == 0 {
		return fmt.Errorf("no job could be planned")
	}

	printPlans(stdout, plans, o.placements)

	if err := writeOutputs(o, plans); err != nil {
		return err
	}
	if o.save != "" {
		rememberPlanFile(&cfg, o.save, o.configPath, logger)
	}
	if o.backup != "" {
		if err := project.ExportAllData(o.backup, cfg, plans); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}

func loadJobs(o *options, stderr io.Writer) ([]model.Job, error) {
	if o.batch == "" {
		pallet, err := model.ParseVec2(o.pallet)
		if err != nil {
			return nil, fmt.Errorf("--pallet: %w", err)
		}
		item, err := model.ParseVec2(o.caseSize)
		if err != nil {
			return nil, fmt.Errorf("--case: %w", err)
		}
		return []model.Job{model.NewJob(o.label, pallet, item)}, nil
	}

	res := importer.ImportFile(o.batch)
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(stderr, "skipped: %s\n", e)
	}
	if len(res.Jobs) == 0 {
		return nil, fmt.Errorf("no jobs imported from %s", o.batch)
	}
	return res.Jobs, nil
}

func writeOutputs(o *options, plans []model.Plan) error {
	if o.pdf != "" {
		if err := export.ExportPDF(o.pdf, plans); err != nil {
			return err
		}
	}
	if o.labels != "" {
		if err := export.ExportLabels(o.labels, plans); err != nil {
			return err
		}
	}
	if o.xlsx != "" {
		if err := export.ExportXLSX(o.xlsx, plans); err != nil {
			return err
		}
	}
	if o.dxf != "" {
		for i, plan := range plans {
			if err := export.ExportDXF(numberedPath(o.dxf, i, len(plans)), plan); err != nil {
				return err
			}
		}
	}
	if o.chart != "" {
		if err := writeChart(o.chart, plans); err != nil {
			return err
		}
	}
	if o.save != "" {
		if err := project.SavePlans(o.save, plans); err != nil {
			return err
		}
	}
	return nil
}

func writeChart(path string, plans []model.Plan) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if len(plans) == 1 {
		return export.RenderLayoutChart(f, plans[0])
	}
	return export.RenderComparisonChart(f, plans)
}

// rememberPlanFile records a saved plan file in the config, but only persists the
// config when the user pointed at one explicitly.
func rememberPlanFile(cfg *model.AppConfig, planPath, configPath string, logger *slog.Logger) {
	project.AddRecentPlan(cfg, planPath)
	if configPath == "" {
		return
	}
	if err := project.SaveAppConfig(configPath, *cfg); err != nil {
		logger.Warn("failed to update recent plans", "config", configPath, "error", err)
	}
}

// numberedPath returns path unchanged for a single plan, otherwise inserts a
// 1-based index before the extension.
func numberedPath(path string, i, n int) string {
	if n <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i+1, ext)
}

func jobName(job model.Job) string {
	if job.Label != "" {
		return job.Label
	}
	return job.ID
}

func printPlans(w io.Writer, plans []model.Plan, placements bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tPALLET\tCASE\tALG\tCASES\tBOUND\tEFFICIENCY")
	for _, p := range plans {
		label := p.Label
		if label == "" {
			label = p.JobID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%.2f%%\n",
			label, p.Pallet, p.Case, p.Algorithm, p.Count(), p.UpperBound(), p.Efficiency())
	}
	tw.Flush()

	if !placements {
		return
	}
	for _, p := range plans {
		fmt.Fprintf(w, "\n%s:\n", jobName(model.Job{ID: p.JobID, Label: p.Label}))
		for _, pl := range p.Placements {
			fmt.Fprintf(w, "  %s\n", pl)
		}
	}
}

func printComparison(w io.Writer, job model.Job, results []engine.ComparisonResult) {
	best := engine.BestResult(results)
	fmt.Fprintf(w, "%s: pallet %s, case %s\n", jobName(job), job.Pallet, job.Case)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tCASES\tEFFICIENCY\tGAIN\t")
	for i, r := range results {
		mark := ""
		if i == best {
			mark = "*"
		}
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\t%+d\t%s\n", r.Scenario.Name, r.Placed, r.Efficiency, r.GainOverN1, mark)
	}
	tw.Flush()
}
