package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sra2mito/internal/output"
	"sra2mito/internal/pipeline"
	"sra2mito/internal/samplesheet"
)

func newBatchCommand(app *App) *cobra.Command {
	var (
		outputDir string
		threads   int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "batch <samplesheet.csv>",
		Short: "Run the pipeline for every sample in a sample sheet",
		Long: `Run the pipeline for each row of a CSV sample sheet, one sample after another.
Columns: sample (optional), accession, fastq1, fastq2. Each sample writes to
<output>/<sample>. The batch stops on the first failure.

Example:
  sra2mito batch samples.csv -o results -t 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := samplesheet.ReadFromFile(args[0])
			if err != nil {
				return err
			}

			runs, err := batchOptions(sheet, outputDir, threads)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if dryRun {
				runner := app.newRunner()
				for _, opts := range runs {
					if err := printPlan(app, runner, opts); err != nil {
						return err
					}
				}
				return nil
			}
			return runBatch(cmd.Context(), app, runs)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "parent output directory (required)")
	cmd.Flags().IntVarP(&threads, "threads", "t", 1, "threads passed to the tools")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what each sample would run without running it")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// batchOptions turns sheet rows into run options, validating all of them
// before anything runs.
func batchOptions(sheet *samplesheet.Sheet, outputDir string, threads int) ([]pipeline.Options, error) {
	runs := make([]pipeline.Options, 0, len(sheet.Entries))
	var errs []error
	for _, e := range sheet.Entries {
		opts := pipeline.Options{
			Accession:  e.Accession,
			FASTQ1:     e.FASTQ1,
			FASTQ2:     e.FASTQ2,
			SampleName: e.Name(),
			OutputDir:  filepath.Join(outputDir, e.Name()),
			Threads:    threads,
		}
		if err := opts.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sample sheet line %d: %w", e.Line, err))
			continue
		}
		runs = append(runs, opts)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return runs, nil
}

// runBatch runs each sample in turn, stopping at the first failure, and
// prints a batch summary either way.
func runBatch(ctx context.Context, app *App, runs []pipeline.Options) error {
	started := app.now()
	names := make([]string, len(runs))
	rows := make([]output.Row, len(runs))
	for i, opts := range runs {
		names[i] = opts.SampleName
		rows[i] = output.Row{Name: opts.SampleName, Status: "pending", Detail: "not run"}
	}

	app.Printer.Header(fmt.Sprintf("Batch: %d samples", len(runs)), "Samples: "+truncate(strings.Join(names, ", "), 60))

	runner := app.newRunner()
	var failure error
	completed := 0
	for i, opts := range runs {
		app.Printer.Header(fmt.Sprintf("BATCH [%d/%d]: %s", i+1, len(runs), opts.SampleName), describeOptions(opts)...)

		sampleStart := app.now()
		run, err := runner.Execute(ctx, opts)
		rows[i].Duration = app.now().Sub(sampleStart)
		if run != nil {
			printRun(app.Printer, run)
		}

		if err != nil {
			rows[i].Status = "failed"
			rows[i].Detail = err.Error()
			failure = err
			break
		}
		rows[i].Status = "ok"
		rows[i].Detail = ""
		completed++
	}

	failed := 0
	if failure != nil {
		failed = 1
	}
	app.Printer.Summary("BATCH", failure == nil, rows, app.now().Sub(started))
	app.Printer.Line("Completed: %d | Failed: %d | Remaining: %d", completed, failed, len(runs)-completed-failed)

	return exitFor(failure)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
