package cli

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"sra2mito/internal/output"
	"sra2mito/internal/pipeline"
	"sra2mito/internal/summary"
)

// runFlags are the single-sample run flags of the root command.
type runFlags struct {
	accession  string
	fastq1     string
	fastq2     string
	sampleName string
	output     string
	threads    int
	dryRun     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.accession, "accession", "a", "", "read archive accession to download")
	fl.StringVar(&f.fastq1, "fastq1", "", "FASTQ file 1 (also -f1)")
	fl.StringVar(&f.fastq2, "fastq2", "", "FASTQ file 2 (also -f2)")
	fl.StringVarP(&f.sampleName, "sample_name", "n", "", `sample name (default: the accession, or "sample")`)
	fl.StringVarP(&f.output, "output", "o", "", "output directory (required)")
	fl.IntVarP(&f.threads, "threads", "t", 1, "threads passed to the tools")
	fl.BoolVar(&f.dryRun, "dry-run", false, "print what each stage would run without running it")
}

func (f *runFlags) options() pipeline.Options {
	return pipeline.Options{
		Accession:  f.accession,
		FASTQ1:     f.fastq1,
		FASTQ2:     f.fastq2,
		SampleName: f.sampleName,
		OutputDir:  f.output,
		Threads:    f.threads,
	}
}

// runPipeline runs (or, with dryRun, plans) one sample. Usage errors are
// returned as-is so cobra prints usage; everything else becomes an [ExitError].
func runPipeline(cmd *cobra.Command, app *App, opts pipeline.Options, dryRun bool) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	runner := app.newRunner()
	if dryRun {
		return printPlan(app, runner, opts)
	}

	app.Printer.Header("sra2mito: "+opts.Sample(), describeOptions(opts)...)

	run, err := runner.Execute(cmd.Context(), opts)
	if run != nil {
		printRun(app.Printer, run)
	}
	if err != nil {
		if run == nil {
			app.Printer.Fail("%v", err)
		}
		slog.Debug("run failed", "sample", opts.Sample(), "error", err)
		return exitFor(err)
	}
	return nil
}

func describeOptions(opts pipeline.Options) []string {
	var lines []string
	if opts.FromAccession() {
		lines = append(lines, "Accession: "+opts.Accession)
	} else {
		lines = append(lines, "FASTQ file 1: "+opts.FASTQ1, "FASTQ file 2: "+opts.FASTQ2)
	}
	return append(lines,
		"Sample name: "+opts.Sample(),
		"Output directory: "+opts.OutputDir,
		fmt.Sprintf("Threads: %d", opts.Threads),
	)
}

func printPlan(app *App, runner *pipeline.Runner, opts pipeline.Options) error {
	plan, err := runner.Plan(opts)
	if err != nil {
		return err
	}

	app.Printer.Header("Dry run: "+opts.Sample(), describeOptions(opts)...)
	for i, ps := range plan {
		app.Printer.StepStart(i+1, len(plan), ps.Stage.String())
		app.Printer.Line("%s", ps.Action)
		for _, c := range ps.Commands {
			app.Printer.Line("  %s", c)
		}
	}
	return nil
}

// printRun prints a run summary table followed by its results.
func printRun(p *output.Printer, run *summary.Run) {
	rows := make([]output.Row, len(run.Stages))
	for i, s := range run.Stages {
		rows[i] = output.Row{
			Name:     s.Name,
			Status:   string(s.Status),
			Duration: s.Duration,
		}
		if s.Status == summary.StatusFailed {
			rows[i].Detail = s.Message
		}
	}
	p.Summary(run.Sample, run.Success, rows, run.Finished.Sub(run.Started))

	if run.Pairing != "" {
		p.Line("Pairing: %s", run.Pairing)
	}
	if run.Assembly != nil {
		p.Line("Assembly: %s", run.Assembly)
	}

	keys := make([]string, 0, len(run.Artifacts))
	for k := range run.Artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Line("%-10s %s", k+":", run.Artifacts[k])
	}
	p.Line("Log: %s", run.LogFile)
}
