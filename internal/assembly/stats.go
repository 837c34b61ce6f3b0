// Package assembly summarises assembler output.
package assembly

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/stat"
)

// ContigsFile is the name of the contig FASTA inside an assembler output directory.
const ContigsFile = "contigs.fasta"

// Stats are length statistics over a set of contigs, in base pairs.
type Stats struct {
	Contigs int     `yaml:"contigs"`
	Total   int     `yaml:"total_length"`
	Min     int     `yaml:"min_length"`
	Max     int     `yaml:"max_length"`
	Mean    float64 `yaml:"mean_length"`
	N50     int     `yaml:"n50"`
}

// String formats the stats for a single log line.
func (s Stats) String() string {
	return fmt.Sprintf("%d contigs, total %d bp, min %d bp, max %d bp, mean %.1f bp, N50 %d bp",
		s.Contigs, s.Total, s.Min, s.Max, s.Mean, s.N50)
}

// ReadStats computes [Stats] for the contigs.fasta inside an assembler output directory.
func ReadStats(fs afero.Fs, assemblyDir string) (Stats, error) {
	lengths, err := ReadLengths(fs, assemblyDir)
	if err != nil {
		return Stats{}, err
	}
	return Compute(lengths), nil
}

// ReadLengths returns the length of every contig in the contigs.fasta inside
// an assembler output directory on fs, in file order. An empty file is an error.
func ReadLengths(fs afero.Fs, assemblyDir string) ([]int, error) {
	path := filepath.Join(assemblyDir, ContigsFile)
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contigs: %w", err)
	}
	defer f.Close()

	var lengths []int
	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		lengths = append(lengths, sc.Seq().Len())
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("failed to read contigs %s: %w", path, err)
	}
	if len(lengths) == 0 {
		return nil, fmt.Errorf("no contigs in %s", path)
	}
	return lengths, nil
}

// Compute derives [Stats] from contig lengths. lengths must be non-empty.
func Compute(lengths []int) Stats {
	sorted := append([]int(nil), lengths...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	s := Stats{
		Contigs: len(sorted),
		Max:     sorted[0],
		Min:     sorted[len(sorted)-1],
	}
	xs := make([]float64, len(sorted))
	for i, l := range sorted {
		s.Total += l
		xs[i] = float64(l)
	}
	s.Mean = stat.Mean(xs, nil)
	s.N50 = n50(sorted, s.Total)
	return s
}

// n50 expects lengths sorted in descending order.
func n50(desc []int, total int) int {
	csum := 0
	for _, l := range desc {
		csum += l
		if 2*csum >= total {
			return l
		}
	}
	return 0
}
