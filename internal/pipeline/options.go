package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUsage marks invalid or conflicting run options. The CLI reports these
// with usage help and exit status 1 before anything touches the filesystem.
var ErrUsage = errors.New("invalid arguments")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// DefaultSampleName is used for FASTQ-pair runs without an explicit sample name.
const DefaultSampleName = "sample"

// Options is the run configuration. It is parsed once and never modified.
type Options struct {
	// Accession is a read archive accession. Mutually exclusive with FASTQ1/FASTQ2.
	Accession string

	// FASTQ1 and FASTQ2 are an explicit paired-end input. Both or neither.
	FASTQ1 string
	FASTQ2 string

	// SampleName prefixes every artifact. Defaults to the accession, or "sample".
	SampleName string

	// OutputDir receives every artifact and the run log. Required.
	OutputDir string

	// Threads is forwarded to the tools. Must be at least 1.
	Threads int
}

// Validate enforces the input invariants. Errors wrap [ErrUsage].
func (o Options) Validate() error {
	hasF1, hasF2 := o.FASTQ1 != "", o.FASTQ2 != ""
	switch {
	case hasF1 != hasF2:
		return usageErrorf("both --fastq1 and --fastq2 must be provided together")
	case o.Accession == "" && !hasF1:
		return usageErrorf("either --accession or both --fastq1 and --fastq2 must be provided")
	case o.Accession != "" && hasF1:
		return usageErrorf("you cannot provide both an accession and FASTQ files; choose one input method")
	case o.OutputDir == "":
		return usageErrorf("--output is required")
	case o.Threads < 1:
		return usageErrorf("--threads must be at least 1, got %d", o.Threads)
	case strings.ContainsAny(o.SampleName, `/\`):
		return usageErrorf("--sample_name %q must not contain path separators", o.SampleName)
	case hasF1 && filepath.Base(o.FASTQ1) == filepath.Base(o.FASTQ2):
		return usageErrorf("--fastq1 and --fastq2 have the same file name %q", filepath.Base(o.FASTQ1))
	}
	return nil
}

// FromAccession reports whether reads are downloaded rather than supplied.
func (o Options) FromAccession() bool {
	return o.Accession != ""
}

// Sample returns the effective sample name.
func (o Options) Sample() string {
	switch {
	case o.SampleName != "":
		return o.SampleName
	case o.Accession != "":
		return o.Accession
	default:
		return DefaultSampleName
	}
}
