// Package pipeline drives one sample from reads to an assembly.
//
// The [Runner] walks the stage state machine (see [Stage]): tool check, read
// acquisition, trimming, subsampling, assembly. Every stage delegates the real
// work to an external program through a [tool.Executor] and is gated on the
// previous stage's success. The first failure ends the run; there are no
// retries and nothing is rolled back.
//
// Key concepts:
//   - Progress lines go to both the run log ([runlog.Log]) and the console ([output.Printer])
//   - Tool output (stdout and stderr) is appended to the run log
//   - A failing stage returns a [*StageError] carrying the tool's exit code
//   - A YAML run summary is written next to the artifacts when the run ends
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"sra2mito/internal/config"
	"sra2mito/internal/output"
	"sra2mito/internal/runlog"
	"sra2mito/internal/summary"
	"sra2mito/internal/tool"
)

// ProgressCallback is invoked before each stage begins execution.
//
// The callback receives stepIndex (1-based), totalSteps count, and the stage.
// This enables progress reporting in the console. The callback is optional and
// can be set via [Runner.SetProgressCallback]. It is called from the goroutine
// running [Runner.Execute].
type ProgressCallback func(stepIndex, totalSteps int, stage Stage)

// Runner executes pipeline runs for one sample at a time.
//
// Runner uses dependency injection for testability: the [tool.Executor] runs
// external programs and the [tool.Locator] resolves them on PATH. Every file
// the driver itself touches goes through the [afero.Fs]. That covers the
// output directory, the run log, copied inputs, the sampler output, the
// pairing and contig readers, the contig chart and the run summary. Tests run
// the whole pipeline on [afero.NewMemMapFs] with a [tool.MockExecutor] that
// writes tool outputs into the same filesystem.
//
// Use [NewRunner] to create an instance, [Runner.Plan] to preview the commands,
// and [Runner.Execute] to run them. A Runner holds no per-run state and can be
// reused for consecutive runs, as the batch command does.
type Runner struct {
	cfg              *config.Config
	executor         tool.Executor
	locate           tool.Locator
	fs               afero.Fs
	printer          *output.Printer
	now              func() time.Time
	progressCallback ProgressCallback
}

// NewRunner creates a Runner with the required dependencies.
//
// Parameters:
//   - cfg supplies tool names and stage settings (seed, read count, k-mers)
//   - executor runs external programs ([tool.NewExecutor] in production)
//   - locate resolves executables for the tool check ([tool.LookPath] in production)
//   - fs backs every file the driver reads or writes ([afero.NewOsFs] in production)
//   - printer receives the console copy of each log line
//
// The clock defaults to time.Now; see [Runner.SetClock].
func NewRunner(cfg *config.Config, executor tool.Executor, locate tool.Locator, fs afero.Fs, printer *output.Printer) *Runner {
	return &Runner{
		cfg:      cfg,
		executor: executor,
		locate:   locate,
		fs:       fs,
		printer:  printer,
		now:      time.Now,
	}
}

// SetProgressCallback configures an optional callback invoked before each stage.
//
// The callback receives the 1-based step index, the total number of stages,
// and the stage about to run. Pass nil to disable progress reporting.
func (r *Runner) SetProgressCallback(cb ProgressCallback) {
	r.progressCallback = cb
}

// SetClock replaces the time source. It determines the log file name and the
// timestamps in the run summary.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Execute performs one run.
//
// Options are validated first; a usage error (wrapping [ErrUsage]) is returned
// before the output directory or log file exists. Otherwise the output
// directory and log are created and every stage in [Lifecycle] runs in order,
// stopping at the first failure. Cancelling ctx stops the running tool, which
// fails its stage.
//
// Returns:
//   - (run, nil) when every stage succeeded; run.Success is true
//   - (run, *StageError) when a stage failed; [ExitCode] gives the process status
//   - (nil, error) for usage errors or when the output directory or log cannot be created
//
// The summary is also written to {sample}_summary.yaml, except when the tool
// check fails: no stage files may exist then, so the log is the only record.
//
// Example:
//
//	runner := pipeline.NewRunner(cfg, tool.NewExecutor(), tool.LookPath, afero.NewOsFs(), printer)
//	run, err := runner.Execute(ctx, pipeline.Options{Accession: "SRR000001", OutputDir: "out", Threads: 4})
//	if err != nil {
//	    os.Exit(pipeline.ExitCode(err))
//	}
//	fmt.Println(run.Assembly)
func (r *Runner) Execute(ctx context.Context, opts Options) (*summary.Run, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	started := r.now()
	if err := r.prepareOutputDir(opts.OutputDir); err != nil {
		return nil, err
	}

	log, err := runlog.Create(r.fs, opts.OutputDir, started)
	if err != nil {
		return nil, err
	}
	defer log.Close()

	layout := Layout{Dir: opts.OutputDir, Sample: opts.Sample()}
	st := &run{
		Runner: r,
		opts:   opts,
		layout: layout,
		log:    log,
		record: &summary.Run{
			Sample:    layout.Sample,
			Accession: opts.Accession,
			Output:    opts.OutputDir,
			Threads:   opts.Threads,
			LogFile:   log.Path(),
			Started:   started,
			Artifacts: map[string]string{},
		},
	}

	runErr := st.execute(ctx)

	st.record.Finished = r.now()
	st.record.Success = runErr == nil

	var se *StageError
	if errors.As(runErr, &se) && se.Stage == StageCheckTools {
		return st.record, runErr
	}
	if err := summary.NewWriter(r.fs).Write(layout.Summary(), st.record); err != nil {
		slog.Warn("failed to write run summary", "path", layout.Summary(), "error", err)
	}
	return st.record, runErr
}

func (r *Runner) prepareOutputDir(dir string) error {
	exists, err := afero.DirExists(r.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to inspect output directory: %w", err)
	}
	if exists {
		r.printer.Line("Output directory %s already exists.", dir)
		return nil
	}
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	r.printer.Line("Created output directory: %s", dir)
	return nil
}

// run is the state of one Execute call.
type run struct {
	*Runner
	opts   Options
	layout Layout
	log    *runlog.Log
	reads  Pair
	record *summary.Run
}

func (st *run) execute(ctx context.Context) error {
	stages := Lifecycle()
	for i, stage := range stages {
		if st.progressCallback != nil {
			st.progressCallback(i+1, len(stages), stage)
		}

		started := st.now()
		status, err := st.runStage(ctx, stage)
		rec := summary.Stage{
			Name:     stage.String(),
			Status:   status,
			Duration: st.now().Sub(started),
		}
		if err != nil {
			rec.Status = summary.StatusFailed
			rec.ExitCode = ExitCode(err)
			rec.Message = err.Error()
			st.record.Stages = append(st.record.Stages, rec)
			slog.Debug("stage failed", "stage", stage, "error", err, "next", stage.Next(false))
			return err
		}
		st.record.Stages = append(st.record.Stages, rec)
	}

	st.contigStats()
	return nil
}

func (st *run) runStage(ctx context.Context, stage Stage) (summary.Status, error) {
	switch stage {
	case StageCheckTools:
		return st.checkTools()
	case StageAcquireReads:
		return st.acquire(ctx)
	case StageTrim:
		return st.trim(ctx)
	case StageSample:
		return st.sample(ctx)
	case StageAssemble:
		return st.assemble(ctx)
	default:
		return summary.StatusFailed, fmt.Errorf("no handler for stage %s", stage)
	}
}

// emit writes msg to the run log and, styled by kind, to the console.
func (st *run) emit(kind, msg string) {
	if err := st.log.Line("%s", msg); err != nil {
		slog.Warn("failed to write run log", "path", st.log.Path(), "error", err)
	}
	switch kind {
	case "ok":
		st.printer.OK("%s", msg)
	case "fail":
		st.printer.Fail("%s", msg)
	case "warn":
		st.printer.Warn("%s", msg)
	default:
		st.printer.Line("%s", msg)
	}
}

func (st *run) logf(format string, args ...any)  { st.emit("", fmt.Sprintf(format, args...)) }
func (st *run) okf(format string, args ...any)   { st.emit("ok", fmt.Sprintf(format, args...)) }
func (st *run) failf(format string, args ...any) { st.emit("fail", fmt.Sprintf(format, args...)) }
func (st *run) warnf(format string, args ...any) { st.emit("warn", fmt.Sprintf(format, args...)) }

// step brackets fn with "Step N: <action>" and its "... OK" or "... Error:" line.
// Errors that are not already a [*StageError] become one with exit code 1.
func (st *run) step(stage Stage, action string, fn func() error) error {
	prefix := fmt.Sprintf("Step %d: %s", stage.Step(), action)
	st.logf("%s", prefix)

	if err := fn(); err != nil {
		var se *StageError
		if !errors.As(err, &se) {
			se = &StageError{Stage: stage, ExitCode: 1, Err: err}
		}
		st.failf("%s Error: %s", prefix, se.Detail())
		return se
	}

	st.okf("%s OK", prefix)
	return nil
}

// runTool runs cmd with stderr (and stdout unless redirected) appended to the log.
func (st *run) runTool(ctx context.Context, stage Stage, cmd tool.Command, stdout io.Writer) error {
	slog.Debug("running tool", "stage", stage, "tool", cmd.Name, "command", cmd.String())

	code, err := st.executor.Run(ctx, cmd, stdout, st.log)
	if err != nil {
		return &StageError{Stage: stage, Tool: toolLabel(cmd.Name), ExitCode: 1, Err: err}
	}
	if code != 0 {
		return &StageError{Stage: stage, Tool: toolLabel(cmd.Name), ExitCode: code}
	}
	return nil
}

func (st *run) exists(path string) bool {
	ok, err := afero.Exists(st.fs, path)
	if err != nil {
		slog.Debug("stat failed", "path", path, "error", err)
	}
	return ok
}
