package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"sra2mito/internal/tool"
)

// PlannedStage is what one stage would do, as reported by [Runner.Plan].
type PlannedStage struct {
	Stage    Stage
	Action   string
	Commands []tool.Command
}

// Plan returns the stages a run with opts would execute, without executing
// them or touching the output directory.
//
// Plan provides dry-run preview functionality. Acquisition is resolved
// against the current filesystem state, so a plan for an accession whose
// reads are already present shows the download being skipped.
func (r *Runner) Plan(opts Options) ([]PlannedStage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	layout := Layout{Dir: opts.OutputDir, Sample: opts.Sample()}
	plan := []PlannedStage{{
		Stage:  StageCheckTools,
		Action: "check " + strings.Join(r.cfg.Tools.Required(), ", "),
	}}

	acquire, reads := r.planAcquire(opts, layout)
	plan = append(plan, acquire)

	plan = append(plan, PlannedStage{
		Stage:    StageTrim,
		Action:   "trim adapters and low-quality bases",
		Commands: []tool.Command{trimCommand(r.cfg, reads, layout, opts.Threads)},
	})

	trimmed, sampled := layout.Trimmed(), layout.Sampled()
	plan = append(plan, PlannedStage{
		Stage:  StageSample,
		Action: fmt.Sprintf("sample %d reads per mate, gzip into %s and %s", r.cfg.Sampling.Reads, sampled.R1, sampled.R2),
		Commands: []tool.Command{
			sampleCommand(r.cfg, trimmed.R1),
			sampleCommand(r.cfg, trimmed.R2),
		},
	})

	plan = append(plan, PlannedStage{
		Stage:    StageAssemble,
		Action:   "assemble into " + layout.AssemblyDir(),
		Commands: []tool.Command{assembleCommand(r.cfg, sampled, layout, opts.Threads)},
	})
	return plan, nil
}

func (r *Runner) planAcquire(opts Options, layout Layout) (PlannedStage, Pair) {
	ps := PlannedStage{Stage: StageAcquireReads}

	if opts.FromAccession() {
		raw := layout.Raw()
		e1, _ := afero.Exists(r.fs, raw.R1)
		e2, _ := afero.Exists(r.fs, raw.R2)
		if e1 && e2 {
			ps.Action = "reuse existing reads for " + opts.Accession
			return ps, raw
		}
		ps.Action = "download reads for " + opts.Accession
		ps.Commands = []tool.Command{downloadCommand(r.cfg, opts.Accession, layout, opts.Threads)}
		return ps, raw
	}

	in := Pair{R1: opts.FASTQ1, R2: opts.FASTQ2}
	if sameDir(filepath.Dir(in.R1), opts.OutputDir) && sameDir(filepath.Dir(in.R2), opts.OutputDir) {
		ps.Action = "use FASTQ files in place"
		return ps, in
	}
	ps.Action = fmt.Sprintf("copy %s and %s into %s", in.R1, in.R2, opts.OutputDir)
	return ps, Pair{
		R1: filepath.Join(opts.OutputDir, filepath.Base(in.R1)),
		R2: filepath.Join(opts.OutputDir, filepath.Base(in.R2)),
	}
}
