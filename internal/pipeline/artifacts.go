package pipeline

import (
	"fmt"
	"path/filepath"

	"sra2mito/internal/summary"
)

// Pair is a read-1/read-2 file pair handed from one stage to the next.
type Pair struct {
	R1 string
	R2 string
}

// Layout derives every artifact path of a run from the output directory and
// sample name. Names are {sample}_{suffix}_{1|2}.fastq.gz.
type Layout struct {
	Dir    string
	Sample string
}

func (l Layout) pair(suffix string) Pair {
	name := func(mate int) string {
		if suffix == "" {
			return fmt.Sprintf("%s_%d.fastq.gz", l.Sample, mate)
		}
		return fmt.Sprintf("%s_%s_%d.fastq.gz", l.Sample, suffix, mate)
	}
	return Pair{
		R1: filepath.Join(l.Dir, name(1)),
		R2: filepath.Join(l.Dir, name(2)),
	}
}

// Raw is where the downloader writes reads.
func (l Layout) Raw() Pair { return l.pair("") }

// Trimmed is the trimmer's output pair.
func (l Layout) Trimmed() Pair { return l.pair("trimmed") }

// Sampled is the sampler's output pair.
func (l Layout) Sampled() Pair { return l.pair("sampled") }

// QCJSON is the trimmer's machine-readable report.
func (l Layout) QCJSON() string {
	return filepath.Join(l.Dir, l.Sample+"_trimmed.json")
}

// QCHTML is the trimmer's human-readable report.
func (l Layout) QCHTML() string {
	return filepath.Join(l.Dir, l.Sample+"_trimmed.html")
}

// AssemblyDir is the assembler's output directory.
func (l Layout) AssemblyDir() string {
	return filepath.Join(l.Dir, "spades_"+l.Sample)
}

// ContigChart is the HTML contig length chart.
func (l Layout) ContigChart() string {
	return filepath.Join(l.Dir, l.Sample+"_contigs.html")
}

// Summary is the run summary file.
func (l Layout) Summary() string {
	return filepath.Join(l.Dir, summary.FileName(l.Sample))
}
