package fastq

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) string {
	return fmt.Sprintf("@%s\nACGTACGT\n+\nIIIIIIII\n", id)
}

func writeFastq(t *testing.T, path string, gz bool, ids ...string) {
	t.Helper()
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(record(id))
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	if !gz {
		_, err = f.WriteString(b.String())
		require.NoError(t, err)
		return
	}
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(b.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestMateID(t *testing.T) {
	assert.Equal(t, "read7", MateID("read7/1"))
	assert.Equal(t, "read7", MateID("read7/2"))
	assert.Equal(t, "SRR000001.7", MateID("SRR000001.7"))
	assert.Equal(t, "read/3", MateID("read/3"))
}

func TestReadIDs(t *testing.T) {
	tests := []struct {
		name string
		gz   bool
		n    int
		want []string
	}{
		{name: "plain text, limit", gz: false, n: 2, want: []string{"r1", "r2"}},
		{name: "gzip, limit above count", gz: true, n: 10, want: []string{"r1", "r2", "r3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reads.fastq.gz")
			writeFastq(t, path, tt.gz, "r1", "r2", "r3")

			ids, err := ReadIDs(context.Background(), afero.NewOsFs(), path, tt.n)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCheckPairing_InMemory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/s_1.fq", []byte(record("a/1")+record("b/1")), 0644))
	require.NoError(t, afero.WriteFile(fs, "/out/s_2.fq", []byte(record("a/2")+record("c/2")), 0644))

	rep, err := CheckPairing(context.Background(), fs, "/out/s_1.fq", "/out/s_2.fq", 10)

	require.NoError(t, err)
	assert.Equal(t, 2, rep.Compared)
	assert.Equal(t, 1, rep.Mismatches)
	assert.Equal(t, "record 2: b/1 vs c/2", rep.FirstMismatch)
}

func TestReadIDs_MissingFile(t *testing.T) {
	_, err := ReadIDs(context.Background(), afero.NewOsFs(), filepath.Join(t.TempDir(), "nope.fq"), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestCheckPairing(t *testing.T) {
	tests := []struct {
		name          string
		mate1         []string
		mate2         []string
		wantOK        bool
		wantMismatch  int
		wantFirst     string
		wantLenDiffer bool
	}{
		{
			name:   "identical IDs",
			mate1:  []string{"SRR1.1", "SRR1.2", "SRR1.3"},
			mate2:  []string{"SRR1.1", "SRR1.2", "SRR1.3"},
			wantOK: true,
		},
		{
			name:   "mate suffixes ignored",
			mate1:  []string{"a/1", "b/1"},
			mate2:  []string{"a/2", "b/2"},
			wantOK: true,
		},
		{
			name:         "shuffled mates",
			mate1:        []string{"a", "b", "c"},
			mate2:        []string{"a", "c", "b"},
			wantMismatch: 2,
			wantFirst:    "record 2: b vs c",
		},
		{
			name:          "different record counts",
			mate1:         []string{"a", "b"},
			mate2:         []string{"a"},
			wantLenDiffer: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			p1 := filepath.Join(dir, "s_sampled_1.fastq.gz")
			p2 := filepath.Join(dir, "s_sampled_2.fastq.gz")
			writeFastq(t, p1, true, tt.mate1...)
			writeFastq(t, p2, true, tt.mate2...)

			rep, err := CheckPairing(context.Background(), afero.NewOsFs(), p1, p2, 100)

			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, rep.OK())
			assert.Equal(t, tt.wantMismatch, rep.Mismatches)
			assert.Equal(t, tt.wantFirst, rep.FirstMismatch)
			assert.Equal(t, tt.wantLenDiffer, rep.LengthsDiffer)
			assert.NotEmpty(t, rep.String())
		})
	}
}

func TestCheckPairing_MissingMate(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.fq")
	writeFastq(t, p1, false, "x")

	_, err := CheckPairing(context.Background(), afero.NewOsFs(), p1, filepath.Join(dir, "b.fq"), 10)

	require.Error(t, err)
}

func TestReport_String(t *testing.T) {
	ok := Report{Compared: 3}
	assert.Equal(t, "3 read pairs checked, IDs match", ok.String())

	bad := Report{Compared: 3, Mismatches: 1, FirstMismatch: "record 2: b vs c", LengthsDiffer: true}
	assert.Contains(t, bad.String(), "1 of 3 read pairs have mismatched IDs")
	assert.Contains(t, bad.String(), "record 2: b vs c")
	assert.Contains(t, bad.String(), "different numbers of records")
}
