package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sra2mito/internal/config"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{name: "accession", opts: Options{Accession: "SRR1", OutputDir: "out", Threads: 1}},
		{name: "fastq pair", opts: Options{FASTQ1: "a_1.fq", FASTQ2: "a_2.fq", OutputDir: "out", Threads: 4}},
		{
			name:    "only fastq1",
			opts:    Options{FASTQ1: "a_1.fq", OutputDir: "out", Threads: 1},
			wantErr: "both --fastq1 and --fastq2 must be provided together",
		},
		{
			name:    "only fastq2",
			opts:    Options{FASTQ2: "a_2.fq", OutputDir: "out", Threads: 1},
			wantErr: "both --fastq1 and --fastq2 must be provided together",
		},
		{
			name:    "no input",
			opts:    Options{OutputDir: "out", Threads: 1},
			wantErr: "either --accession or both --fastq1 and --fastq2 must be provided",
		},
		{
			name:    "both inputs",
			opts:    Options{Accession: "SRR1", FASTQ1: "a_1.fq", FASTQ2: "a_2.fq", OutputDir: "out", Threads: 1},
			wantErr: "you cannot provide both an accession and FASTQ files",
		},
		{
			name:    "no output",
			opts:    Options{Accession: "SRR1", Threads: 1},
			wantErr: "--output is required",
		},
		{
			name:    "zero threads",
			opts:    Options{Accession: "SRR1", OutputDir: "out"},
			wantErr: "--threads must be at least 1",
		},
		{
			name:    "sample name with separator",
			opts:    Options{Accession: "SRR1", SampleName: "a/b", OutputDir: "out", Threads: 1},
			wantErr: "must not contain path separators",
		},
		{
			name:    "same basename",
			opts:    Options{FASTQ1: "x/reads.fq", FASTQ2: "y/reads.fq", OutputDir: "out", Threads: 1},
			wantErr: "have the same file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUsage)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptions_Sample(t *testing.T) {
	assert.Equal(t, "mito", Options{Accession: "SRR1", SampleName: "mito"}.Sample())
	assert.Equal(t, "SRR1", Options{Accession: "SRR1"}.Sample())
	assert.Equal(t, "sample", Options{FASTQ1: "a", FASTQ2: "b"}.Sample())
}

func TestStage_Transitions(t *testing.T) {
	assert.Equal(t, []Stage{StageCheckTools, StageAcquireReads, StageTrim, StageSample, StageAssemble}, Lifecycle())

	assert.Equal(t, StageCheckTools, StageValidateArgs.Next(true))
	assert.Equal(t, StageDone, StageAssemble.Next(true))
	assert.Equal(t, StageFail, StageTrim.Next(false))
	assert.Equal(t, StageDone, StageDone.Next(false), "terminal states stay put")
	assert.Equal(t, StageFail, StageFail.Next(true))

	assert.Equal(t, 5, StageAssemble.Step())
	assert.Equal(t, "acquire", StageAcquireReads.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "usage", err: usageErrorf("bad"), want: 1},
		{name: "tool exit", err: &StageError{Stage: StageTrim, Tool: "fastp", ExitCode: 7}, want: 7},
		{name: "wrapped", err: fmt.Errorf("sample S1: %w", &StageError{Stage: StageAssemble, ExitCode: 2}), want: 2},
		{name: "undetermined", err: &StageError{Stage: StageAssemble, ExitCode: -1}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestStageError_Messages(t *testing.T) {
	se := &StageError{Stage: StageAssemble, Tool: "SPAdes", ExitCode: 2}
	assert.Equal(t, "SPAdes failed with exit code 2", se.Detail())
	assert.Equal(t, "assemble: SPAdes failed with exit code 2", se.Error())

	missing := &StageError{Stage: StageCheckTools, Tool: "seqtk", ExitCode: 1, Err: fmt.Errorf("%w: seqtk", ErrToolMissing)}
	assert.ErrorIs(t, missing, ErrToolMissing)
	assert.Equal(t, "required tool not found: seqtk", missing.Detail())
}

func TestLayout(t *testing.T) {
	l := Layout{Dir: "/out", Sample: "S1"}

	assert.Equal(t, Pair{R1: "/out/S1_1.fastq.gz", R2: "/out/S1_2.fastq.gz"}, l.Raw())
	assert.Equal(t, Pair{R1: "/out/S1_trimmed_1.fastq.gz", R2: "/out/S1_trimmed_2.fastq.gz"}, l.Trimmed())
	assert.Equal(t, Pair{R1: "/out/S1_sampled_1.fastq.gz", R2: "/out/S1_sampled_2.fastq.gz"}, l.Sampled())
	assert.Equal(t, "/out/S1_trimmed.json", l.QCJSON())
	assert.Equal(t, "/out/S1_trimmed.html", l.QCHTML())
	assert.Equal(t, "/out/spades_S1", l.AssemblyDir())
	assert.Equal(t, "/out/S1_contigs.html", l.ContigChart())
	assert.Equal(t, "/out/S1_summary.yaml", l.Summary())
}

func TestCommands(t *testing.T) {
	cfg := config.DefaultConfig()
	l := Layout{Dir: "/out", Sample: "S1"}
	in := Pair{R1: "/in/r1.fq", R2: "/in/r2.fq"}

	assert.Equal(t,
		"fastq-dl -a SRR1 --prefix S1 --outdir /out --cpus 4 --force",
		downloadCommand(cfg, "SRR1", l, 4).String())
	assert.Equal(t,
		"fastp --in1 /in/r1.fq --in2 /in/r2.fq --out1 /out/S1_trimmed_1.fastq.gz --out2 /out/S1_trimmed_2.fastq.gz --thread 4 -j /out/S1_trimmed.json -h /out/S1_trimmed.html",
		trimCommand(cfg, in, l, 4).String())
	assert.Equal(t, "seqtk sample -s100 /in/r1.fq 2000000", sampleCommand(cfg, in.R1).String())
	assert.Equal(t,
		"spades.py --only-assembler -1 /in/r1.fq -2 /in/r2.fq -o /out/spades_S1 -t 4 -k 21,33,55,77,89 --gfa11",
		assembleCommand(cfg, in, l, 4).String())
}

func TestCommands_Configured(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Download.Force = false
	cfg.Sampling.Seed = 7
	cfg.Sampling.Reads = 500
	cfg.Assembly.Kmers = []int{33, 55}
	cfg.Assembly.OnlyAssembler = false
	cfg.Assembly.GFA11 = false
	cfg.Tools.Assembler = "/opt/spades/bin/spades.py"
	l := Layout{Dir: "/out", Sample: "S1"}
	in := Pair{R1: "a", R2: "b"}

	assert.NotContains(t, downloadCommand(cfg, "SRR1", l, 1).Args, "--force")
	assert.Equal(t, "seqtk sample -s7 a 500", sampleCommand(cfg, "a").String())
	assert.Equal(t,
		"/opt/spades/bin/spades.py -1 a -2 b -o /out/spades_S1 -t 1 -k 33,55",
		assembleCommand(cfg, in, l, 1).String())
	assert.Equal(t, "SPAdes", toolLabel(cfg.Tools.Assembler))
	assert.Equal(t, "fastp", toolLabel("/usr/local/bin/fastp"))
}
