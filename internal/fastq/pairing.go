// Package fastq inspects paired-end FASTQ files.
//
// The sampler draws reads from each mate file independently, relying on a
// shared seed to pick the same positions in both. [CheckPairing] verifies
// that assumption by comparing the read IDs at the head of both files.
package fastq

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Report is the outcome of a pairing check.
type Report struct {
	// Compared is the number of record positions compared.
	Compared int

	// Mismatches counts positions whose read IDs differ.
	Mismatches int

	// FirstMismatch describes the first differing position, if any.
	FirstMismatch string

	// LengthsDiffer is set when one file ran out of records before the other
	// within the compared window.
	LengthsDiffer bool
}

// OK reports whether the mates looked correctly paired.
func (r Report) OK() bool {
	return r.Mismatches == 0 && !r.LengthsDiffer
}

// String summarises the report for logs.
func (r Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%d read pairs checked, IDs match", r.Compared)
	}
	msg := fmt.Sprintf("%d of %d read pairs have mismatched IDs", r.Mismatches, r.Compared)
	if r.FirstMismatch != "" {
		msg += " (first: " + r.FirstMismatch + ")"
	}
	if r.LengthsDiffer {
		msg += "; mate files hold different numbers of records"
	}
	return msg
}

// CheckPairing reads up to n leading records from both mate files and
// compares their IDs position by position. The two files are read concurrently.
func CheckPairing(ctx context.Context, fs afero.Fs, path1, path2 string, n int) (Report, error) {
	var ids1, ids2 []string

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ids1, err = ReadIDs(ctx, fs, path1, n)
		return err
	})
	g.Go(func() error {
		var err error
		ids2, err = ReadIDs(ctx, fs, path2, n)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return compare(ids1, ids2), nil
}

func compare(ids1, ids2 []string) Report {
	rep := Report{Compared: min(len(ids1), len(ids2))}
	rep.LengthsDiffer = len(ids1) != len(ids2)
	for i := 0; i < rep.Compared; i++ {
		a, b := MateID(ids1[i]), MateID(ids2[i])
		if a == b {
			continue
		}
		rep.Mismatches++
		if rep.FirstMismatch == "" {
			rep.FirstMismatch = fmt.Sprintf("record %d: %s vs %s", i+1, ids1[i], ids2[i])
		}
	}
	return rep
}

// ReadIDs returns the IDs of up to n leading records of a FASTQ file on fs.
// Gzip-compressed input is detected from its magic bytes.
func ReadIDs(ctx context.Context, fs afero.Fs, path string, n int) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r, err := decompress(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	reader := fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	ids := make([]string, 0, n)
	for len(ids) < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s record %d: %w", path, len(ids)+1, err)
		}
		ids = append(ids, s.Name())
	}
	return ids, nil
}

func decompress(f io.Reader) (io.Reader, error) {
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

// MateID strips the /1 or /2 mate suffix from a read ID.
func MateID(id string) string {
	if strings.HasSuffix(id, "/1") || strings.HasSuffix(id, "/2") {
		return id[:len(id)-2]
	}
	return id
}
