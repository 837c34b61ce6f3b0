// Package samplesheet reads batch sample sheets.
//
// A sample sheet is a CSV file with one pipeline run per row:
//
//	sample,accession,fastq1,fastq2
//	ERR123,ERR123,,
//	isolate7,,reads/i7_R1.fastq.gz,reads/i7_R2.fastq.gz
//
// Columns are matched by header name, case-insensitively, and may appear in
// any order. The sample column is optional; each row must name either an
// accession or both FASTQ files.
package samplesheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one row of a sample sheet.
type Entry struct {
	// Line is the 1-based line number in the source file.
	Line int

	Sample    string
	Accession string
	FASTQ1    string
	FASTQ2    string
}

// Name returns the sample name the run will use: the explicit sample,
// else the accession, else "sample".
func (e Entry) Name() string {
	switch {
	case e.Sample != "":
		return e.Sample
	case e.Accession != "":
		return e.Accession
	default:
		return "sample"
	}
}

// Sheet holds all entries of a sample sheet in file order.
type Sheet struct {
	Entries []Entry
}

// ReadFromFile reads and validates a sample sheet.
func ReadFromFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample sheet: %w", err)
	}
	defer f.Close()

	return readFromReader(f)
}

// ReadFromString parses a sample sheet held in memory.
func ReadFromString(data string) (*Sheet, error) {
	return readFromReader(strings.NewReader(data))
}

func readFromReader(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read sample sheet header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	if err := validateColumns(colIndex); err != nil {
		return nil, err
	}

	var entries []Entry
	var errs []error
	seen := make(map[string]int)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sample sheet: %w", err)
		}
		line, _ := reader.FieldPos(0)

		entry := Entry{
			Line:      line,
			Sample:    getField(record, colIndex, "sample"),
			Accession: getField(record, colIndex, "accession"),
			FASTQ1:    getField(record, colIndex, "fastq1"),
			FASTQ2:    getField(record, colIndex, "fastq2"),
		}
		if entry.Sample == "" && entry.Accession == "" && entry.FASTQ1 == "" && entry.FASTQ2 == "" {
			continue
		}
		if err := entry.validate(); err != nil {
			errs = append(errs, fmt.Errorf("sample sheet line %d: %w", line, err))
			continue
		}
		if prev, dup := seen[entry.Name()]; dup {
			errs = append(errs, fmt.Errorf("sample sheet line %d: sample %q already defined on line %d", line, entry.Name(), prev))
			continue
		}
		seen[entry.Name()] = line
		entries = append(entries, entry)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(entries) == 0 {
		return nil, errors.New("sample sheet contains no samples")
	}
	return &Sheet{Entries: entries}, nil
}

func (e Entry) validate() error {
	hasPair := e.FASTQ1 != "" || e.FASTQ2 != ""
	switch {
	case (e.FASTQ1 == "") != (e.FASTQ2 == ""):
		return errors.New("fastq1 and fastq2 must be provided together")
	case e.Accession != "" && hasPair:
		return errors.New("give either an accession or a FASTQ pair, not both")
	case e.Accession == "" && !hasPair:
		return errors.New("either an accession or both fastq1 and fastq2 are required")
	case strings.ContainsAny(e.Name(), `/\`):
		return fmt.Errorf("sample name %q must not contain path separators", e.Name())
	}
	return nil
}

// requiredColumns must be present in the header. sample is optional.
var requiredColumns = []string{"accession", "fastq1", "fastq2"}

func buildColumnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func validateColumns(colIndex map[string]int) error {
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return fmt.Errorf("sample sheet missing required column: %s", col)
		}
	}
	return nil
}

func getField(record []string, colIndex map[string]int, column string) string {
	idx, ok := colIndex[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
