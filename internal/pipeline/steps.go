package pipeline

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"sra2mito/internal/assembly"
	"sra2mito/internal/fastq"
	"sra2mito/internal/summary"
)

func (st *run) checkTools() (summary.Status, error) {
	for _, a := range st.locate.CheckAll(st.cfg.Tools.Required()) {
		if !a.Found() {
			st.failf("Step 1: Checking tools... Error: %s is not found or not executable.", a.Name)
			return summary.StatusFailed, &StageError{
				Stage:    StageCheckTools,
				Tool:     a.Name,
				ExitCode: 1,
				Err:      fmt.Errorf("%w: %s", ErrToolMissing, a.Name),
			}
		}
		st.okf("Step 1: Checking tools... OK: %s is present and executable at %s", a.Name, a.Path)
	}
	return summary.StatusOK, nil
}

func (st *run) acquire(ctx context.Context) (summary.Status, error) {
	if st.opts.FromAccession() {
		return st.download(ctx)
	}
	return st.stageFiles()
}

func (st *run) download(ctx context.Context) (summary.Status, error) {
	raw := st.layout.Raw()
	acc := st.opts.Accession

	if st.exists(raw.R1) && st.exists(raw.R2) {
		st.logf("Step 2: FASTQ files for accession %s already exist. Skipping download.", acc)
		st.setReads("reads", raw)
		return summary.StatusSkipped, nil
	}

	cmd := downloadCommand(st.cfg, acc, st.layout, st.opts.Threads)
	err := st.step(StageAcquireReads, fmt.Sprintf("Downloading reads for accession %s...", acc), func() error {
		return st.runTool(ctx, StageAcquireReads, cmd, st.log)
	})
	if err != nil {
		return summary.StatusFailed, err
	}
	st.setReads("reads", raw)
	return summary.StatusOK, nil
}

// stageFiles brings an explicit FASTQ pair into the output directory.
func (st *run) stageFiles() (summary.Status, error) {
	in := Pair{R1: st.opts.FASTQ1, R2: st.opts.FASTQ2}
	for _, path := range []string{in.R1, in.R2} {
		if !st.exists(path) {
			err := &StageError{Stage: StageAcquireReads, ExitCode: 1, Err: fmt.Errorf("FASTQ file not found: %s", path)}
			st.failf("Step 2: Error: %s", err.Detail())
			return summary.StatusFailed, err
		}
	}

	inside1 := sameDir(filepath.Dir(in.R1), st.opts.OutputDir)
	inside2 := sameDir(filepath.Dir(in.R2), st.opts.OutputDir)
	if inside1 && inside2 {
		st.logf("Step 2: FASTQ files are already in the output directory. Proceeding to the next step.")
		st.setReads("reads", in)
		return summary.StatusSkipped, nil
	}

	staged := Pair{
		R1: filepath.Join(st.opts.OutputDir, filepath.Base(in.R1)),
		R2: filepath.Join(st.opts.OutputDir, filepath.Base(in.R2)),
	}
	err := st.step(StageAcquireReads, "FASTQ files are not in the output directory. Copying files to the output directory...", func() error {
		if !inside1 {
			if err := copyFile(st.fs, in.R1, staged.R1); err != nil {
				return err
			}
		}
		if !inside2 {
			return copyFile(st.fs, in.R2, staged.R2)
		}
		return nil
	})
	if err != nil {
		return summary.StatusFailed, err
	}
	st.setReads("reads", staged)
	return summary.StatusOK, nil
}

func (st *run) trim(ctx context.Context) (summary.Status, error) {
	cmd := trimCommand(st.cfg, st.reads, st.layout, st.opts.Threads)
	err := st.step(StageTrim, fmt.Sprintf("Running %s...", toolLabel(cmd.Name)), func() error {
		return st.runTool(ctx, StageTrim, cmd, st.log)
	})
	if err != nil {
		return summary.StatusFailed, err
	}
	st.setReads("trimmed", st.layout.Trimmed())
	st.record.Artifacts["qc_json"] = st.layout.QCJSON()
	st.record.Artifacts["qc_html"] = st.layout.QCHTML()
	return summary.StatusOK, nil
}

func (st *run) sample(ctx context.Context) (summary.Status, error) {
	out := st.layout.Sampled()
	action := fmt.Sprintf("Sampling %d reads from each FASTQ file...", st.cfg.Sampling.Reads)
	err := st.step(StageSample, action, func() error {
		if err := st.sampleMate(ctx, st.reads.R1, out.R1); err != nil {
			return err
		}
		return st.sampleMate(ctx, st.reads.R2, out.R2)
	})
	if err != nil {
		return summary.StatusFailed, err
	}
	st.setReads("sampled", out)
	st.verifyPairing(ctx)
	return summary.StatusOK, nil
}

// sampleMate runs the sampler on one mate file, gzip-compressing its stdout
// into out. A failed attempt leaves no output file behind.
func (st *run) sampleMate(ctx context.Context, in, out string) error {
	f, err := st.fs.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}

	gz := gzip.NewWriter(f)
	runErr := st.runTool(ctx, StageSample, sampleCommand(st.cfg, in), gz)
	if closeErr := errors.Join(gz.Close(), f.Close()); runErr == nil && closeErr != nil {
		runErr = fmt.Errorf("failed to write %s: %w", out, closeErr)
	}

	if runErr != nil {
		if err := st.fs.Remove(out); err != nil {
			slog.Warn("failed to remove partial output", "path", out, "error", err)
		}
		return runErr
	}
	return nil
}

// verifyPairing compares read IDs at the head of both sampled mates. The
// result is advisory: it is logged and recorded but never fails the run.
func (st *run) verifyPairing(ctx context.Context) {
	if !st.cfg.Verify.Pairing {
		return
	}

	report, err := fastq.CheckPairing(ctx, st.fs, st.reads.R1, st.reads.R2, st.cfg.Verify.PairingRecords)
	if err != nil {
		st.record.Pairing = "not verified: " + err.Error()
		st.warnf("Warning: could not verify read pairing: %v", err)
		return
	}

	st.record.Pairing = report.String()
	if !report.OK() {
		st.warnf("Warning: sampled reads may be out of pair: %s", report)
		return
	}
	slog.Info("read pairing verified", "stage", StageSample, "pairs", report.Compared)
}

func (st *run) assemble(ctx context.Context) (summary.Status, error) {
	cmd := assembleCommand(st.cfg, st.reads, st.layout, st.opts.Threads)
	err := st.step(StageAssemble, fmt.Sprintf("Running %s assembler...", toolLabel(cmd.Name)), func() error {
		return st.runTool(ctx, StageAssemble, cmd, st.log)
	})
	if err != nil {
		return summary.StatusFailed, err
	}
	st.record.Artifacts["assembly"] = st.layout.AssemblyDir()
	return summary.StatusOK, nil
}

// contigStats summarises the assembler's contigs and charts their lengths.
// Missing contigs only warn.
func (st *run) contigStats() {
	lengths, err := assembly.ReadLengths(st.fs, st.layout.AssemblyDir())
	if err != nil {
		st.warnf("Warning: no assembly summary: %v", err)
		return
	}

	stats := assembly.Compute(lengths)
	st.record.Assembly = &stats
	st.logf("Assembly summary: %s", stats)

	chart := st.layout.ContigChart()
	if err := st.writeChart(chart, lengths); err != nil {
		slog.Warn("failed to write contig chart", "path", chart, "error", err)
		return
	}
	st.record.Artifacts["contig_chart"] = chart
}

func (st *run) writeChart(path string, lengths []int) error {
	f, err := st.fs.Create(path)
	if err != nil {
		return err
	}
	if err := assembly.RenderLengthChart(f, st.layout.Sample+" contig lengths", lengths); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (st *run) setReads(kind string, p Pair) {
	st.reads = p
	st.record.Artifacts[kind+"_1"] = p.R1
	st.record.Artifacts[kind+"_2"] = p.R2
}

// sameDir compares two directories by absolute, cleaned path.
func sameDir(a, b string) bool {
	return absPath(a) == absPath(b)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		fs.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
