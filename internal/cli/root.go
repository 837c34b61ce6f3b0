// Package cli implements the sra2mito command line.
//
// The root command runs the pipeline for one sample. Subcommands check the
// tool installation (check), run a sample sheet (batch), and report on past
// runs (status). Commands never call os.Exit themselves: failures are
// returned as [ExitError] and translated by [Execute].
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sra2mito/internal/config"
	"sra2mito/internal/output"
	"sra2mito/internal/pipeline"
	"sra2mito/internal/tool"
)

// App holds the dependencies shared by every command.
type App struct {
	Config   *config.Config
	Executor tool.Executor
	LookPath tool.Locator
	Fs       afero.Fs
	Printer  *output.Printer

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// NewApp wires the production dependencies around cfg.
func NewApp(cfg *config.Config) *App {
	return &App{
		Config:   cfg,
		Executor: tool.NewExecutor(),
		LookPath: tool.LookPath,
		Fs:       afero.NewOsFs(),
		Printer:  output.NewPrinter(),
	}
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) newRunner() *pipeline.Runner {
	r := pipeline.NewRunner(a.Config, a.Executor, a.LookPath, a.Fs, a.Printer)
	if a.Now != nil {
		r.SetClock(a.Now)
	}
	r.SetProgressCallback(func(stepIndex, totalSteps int, stage pipeline.Stage) {
		a.Printer.StepStart(stepIndex, totalSteps, stage.String())
	})
	return r
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var configPath string
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "sra2mito",
		Short: "Assemble mitochondrial genomes from sequencing reads",
		Long: `Run the read-to-assembly pipeline for one sample:
  1. check-tools - fastq-dl, fastp, seqtk, spades.py and bowtie2 must be on PATH
  2. acquire     - download reads for an accession, or stage a FASTQ pair
  3. trim        - fastp quality and adapter trimming
  4. sample      - seqtk subsampling of each mate
  5. assemble    - SPAdes assembly

Every artifact and a timestamped log go to the output directory.

Examples:
  sra2mito -a SRR000001 -o results -t 4
  sra2mito -f1 reads_1.fq.gz -f2 reads_2.fq.gz -n mito -o results`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := config.NewLoader().LoadFromFile(configPath)
				if err != nil {
					return err
				}
				app.Config = cfg
			}
			if err := app.Config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			slog.SetDefault(newLogger(app.Config.Log.Level, cmd.ErrOrStderr()))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, app, flags.options(), flags.dryRun)
		},
	}

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: user config dir, then ./sra2mito.yaml)")
	flags.register(rootCmd)

	rootCmd.AddCommand(
		newCheckCommand(app),
		newBatchCommand(app),
		newStatusCommand(app),
	)
	return rootCmd
}

// shorthandAliases are the two-letter short flags POSIX parsing cannot express.
var shorthandAliases = map[string]string{
	"-f1": "--fastq1",
	"-f2": "--fastq2",
}

// NormalizeArgs rewrites -f1/-f2 (and -f1=x) to their long forms. Arguments
// after "--" are left alone.
func NormalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "--" {
			copy(out[i:], args[i:])
			break
		}
		name, value, hasValue := strings.Cut(a, "=")
		if long, ok := shorthandAliases[name]; ok {
			a = long
			if hasValue {
				a += "=" + value
			}
		}
		out[i] = a
	}
	return out
}

func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "sample-name" {
		name = "sample_name"
	}
	return pflag.NormalizedName(name)
}

// ExecuteResult is the outcome of one command-line invocation.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// RunWithConfig runs the command line args against cfg with production
// dependencies and reports the exit code instead of exiting.
func RunWithConfig(ctx context.Context, cfg *config.Config, args []string) ExecuteResult {
	rootCmd := NewRootCommand(NewApp(cfg))
	rootCmd.SetArgs(NormalizeArgs(args))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{}
}

// Execute is the process entry point. It loads the configuration, runs the
// command line, and exits with the resulting code. Interrupts cancel the
// running tool.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	result := RunWithConfig(ctx, cfg, os.Args[1:])
	stop()
	os.Exit(result.ExitCode)
}
