// Package summary records the outcome of a pipeline run as YAML.
//
// A summary file ({sample}_summary.yaml) sits next to the run's artifacts and
// lists every stage with its status, duration, and exit code. The status
// command reads these files back.
package summary

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"sra2mito/internal/assembly"
)

// Status is the outcome of one stage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FileSuffix is appended to the sample name to form the summary file name.
const FileSuffix = "_summary.yaml"

// FileName returns the summary file name for a sample.
func FileName(sample string) string {
	return sample + FileSuffix
}

// Stage is the record of one executed (or skipped) stage.
type Stage struct {
	Name     string        `yaml:"name"`
	Status   Status        `yaml:"status"`
	Duration time.Duration `yaml:"duration"`
	ExitCode int           `yaml:"exit_code,omitempty"`
	Message  string        `yaml:"message,omitempty"`
}

// Run is the summary of a whole pipeline run.
type Run struct {
	Sample    string            `yaml:"sample"`
	Accession string            `yaml:"accession,omitempty"`
	Output    string            `yaml:"output"`
	Threads   int               `yaml:"threads"`
	LogFile   string            `yaml:"log_file"`
	Started   time.Time         `yaml:"started"`
	Finished  time.Time         `yaml:"finished"`
	Success   bool              `yaml:"success"`
	Stages    []Stage           `yaml:"stages"`
	Artifacts map[string]string `yaml:"artifacts,omitempty"`
	Pairing   string            `yaml:"pairing,omitempty"`
	Assembly  *assembly.Stats   `yaml:"assembly,omitempty"`
}

// Failed returns the first failed stage, or nil.
func (r *Run) Failed() *Stage {
	for i := range r.Stages {
		if r.Stages[i].Status == StatusFailed {
			return &r.Stages[i]
		}
	}
	return nil
}

// Writer persists run summaries.
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a [Writer] on the given filesystem.
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// Write stores run at path, replacing any previous file atomically
// (write to a temp file, then rename).
func (w *Writer) Write(path string, run *Run) error {
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(w.fs, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	if err := w.fs.Rename(tmpPath, path); err != nil {
		w.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}

// Reader loads run summaries.
type Reader struct {
	fs afero.Fs
}

// NewReader creates a [Reader] on the given filesystem.
func NewReader(fs afero.Fs) *Reader {
	return &Reader{fs: fs}
}

// Read parses one summary file.
func (r *Reader) Read(path string) (*Run, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run summary: %w", err)
	}
	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run summary %s: %w", path, err)
	}
	return &run, nil
}

// Find returns the summary files for target: the file itself, or every
// *_summary.yaml inside it when target is a directory. A batch output keeps
// one sub-directory per sample, so one level of nesting is searched too.
// Results are sorted.
func (r *Reader) Find(target string) ([]string, error) {
	info, err := r.fs.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read run summary: %w", err)
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	var matches []string
	for _, pattern := range []string{"*" + FileSuffix, filepath.Join("*", "*"+FileSuffix)} {
		found, err := afero.Glob(r.fs, filepath.Join(target, pattern))
		if err != nil {
			return nil, err
		}
		matches = append(matches, found...)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no run summaries found in %s", target)
	}
	sort.Strings(matches)
	return matches, nil
}
