package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"sra2mito/internal/config"
	"sra2mito/internal/output"
	"sra2mito/internal/tool"
)

var testClock = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// testLogName is the run log name produced under testClock.
const testLogName = "log_20240501_100000.txt"

func flagValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// newToolSimulator returns a MockExecutor whose tools write the files the
// following stage reads.
func newToolSimulator() *tool.MockExecutor {
	return &tool.MockExecutor{
		Handler: func(cmd tool.Command, stdout, stderr io.Writer) error {
			args := cmd.Args
			switch cmd.Name {
			case "fastq-dl":
				for _, mate := range []string{"1", "2"} {
					path := filepath.Join(flagValue(args, "--outdir"), flagValue(args, "--prefix")+"_"+mate+".fastq.gz")
					if err := os.WriteFile(path, []byte("raw"), 0644); err != nil {
						return err
					}
				}
			case "fastp":
				for _, flag := range []string{"--out1", "--out2"} {
					if err := os.WriteFile(flagValue(args, flag), []byte("trimmed"), 0644); err != nil {
						return err
					}
				}
			case "seqtk":
				mate := "2"
				if strings.HasSuffix(args[2], "_1.fastq.gz") {
					mate = "1"
				}
				for _, id := range []string{"r1", "r2"} {
					fmt.Fprintf(stdout, "@%s/%s\nACGT\n+\nIIII\n", id, mate)
				}
			case "spades.py":
				dir := flagValue(args, "-o")
				if err := os.MkdirAll(dir, 0755); err != nil {
					return err
				}
				return os.WriteFile(filepath.Join(dir, "contigs.fasta"), []byte(">c1\nACGTACGTAC\n"), 0644)
			}
			return nil
		},
	}
}

// testEnv is an App wired to a tool simulator and a captured console.
type testEnv struct {
	app     *App
	mock    *tool.MockExecutor
	console *bytes.Buffer
}

func newTestEnv(t *testing.T, present ...string) *testEnv {
	t.Helper()
	if len(present) == 0 {
		present = []string{"fastq-dl", "fastp", "seqtk", "spades.py", "bowtie2"}
	}
	mock := newToolSimulator()
	console := &bytes.Buffer{}
	return &testEnv{
		app: &App{
			Config:   config.DefaultConfig(),
			Executor: mock,
			LookPath: tool.StaticLocator(present...),
			Fs:       afero.NewOsFs(),
			Printer:  output.NewPrinterWithWriter(console),
			Now:      func() time.Time { return testClock },
		},
		mock:    mock,
		console: console,
	}
}

// execute runs the command line the way RunWithConfig does, with cobra's own
// output captured separately from the printer.
func (e *testEnv) execute(args ...string) (*bytes.Buffer, error) {
	rootCmd := NewRootCommand(e.app)
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(NormalizeArgs(args))
	err := rootCmd.Execute()
	return out, err
}

// writeFile creates a file with content inside dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
