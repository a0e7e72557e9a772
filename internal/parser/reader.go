// Package parser provides row stream reading for pipe-delimited data files
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"datafile-loader/internal/config"
)

// Row maps a column name to the raw field value for one data line.
// An empty string is the NULL sentinel: a field that was present but empty
// and a field missing from a short line are indistinguishable downstream.
type Row map[string]string

// IsNull reports whether the value for the given column is absent or empty
func (r Row) IsNull(column string) bool {
	return r[column] == ""
}

// RowReader reads a delimited data file one record at a time.
// The first line of the file is consumed as the header when the reader is
// created; every Next call returns one data row.
type RowReader struct {
	file    *os.File
	csv     *csv.Reader
	headers []string
	line    int
}

// NewRowReader opens the file at path and reads its header line.
// The caller must Close the reader when done.
func NewRowReader(path string) (*RowReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	reader := csv.NewReader(file)
	reader.Comma = config.FieldDelimiter
	reader.FieldsPerRecord = -1 // Allow variable number of fields for flexibility
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		file.Close()
		return nil, fmt.Errorf("data file is empty: no header line")
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("error reading header line: %w", err)
	}
	if len(header) == 1 && header[0] == "" {
		file.Close()
		return nil, fmt.Errorf("data file has an empty header line")
	}

	return &RowReader{
		file:    file,
		csv:     reader,
		headers: dedupeHeaders(header),
		line:    1,
	}, nil
}

// Headers returns the column names from the file's first line, in file order.
// Duplicate names are suffixed _2, _3, ... so every column keeps its own
// statistics downstream.
func (r *RowReader) Headers() []string {
	return r.headers
}

// Next returns the next data row, or io.EOF when the file is exhausted.
// Fields are aligned positionally with the header: a short line leaves its
// trailing columns absent (NULL), extra fields beyond the header are dropped.
func (r *RowReader) Next() (Row, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("error reading data file at line %d: %w", r.line+1, err)
	}
	r.line++

	row := make(Row, len(r.headers))
	for i, name := range r.headers {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}

// Close releases the underlying file
func (r *RowReader) Close() error {
	return r.file.Close()
}

// ReadFile reads an entire pipe-delimited data file, returning its column
// names and every data row. Rows are fully buffered: the loader scans them
// once for type inference and again for insertion.
func ReadFile(path string) ([]string, []Row, error) {
	reader, err := NewRowReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	var rows []Row
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Stream error: report to the caller, no partial result
			return nil, nil, err
		}
		rows = append(rows, row)
	}

	return reader.Headers(), rows, nil
}

// dedupeHeaders disambiguates repeated column names by suffixing later
// occurrences with their ordinal (_2, _3, ...)
func dedupeHeaders(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		seen[name]++
		if seen[name] > 1 {
			out[i] = fmt.Sprintf("%s_%d", name, seen[name])
		} else {
			out[i] = name
		}
	}
	return out
}
