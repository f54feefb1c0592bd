// Package beastlog reads BEAST2 MCMC trace logs. The format is
// tab-separated: `#` comment lines, a single header line, then one numeric
// row per logged state. Rows that fail numeric conversion are dropped, which
// matches how tracer-style tools treat truncated final lines.
package beastlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Sentinel errors for malformed log files.
var (
	// ErrNoHeader indicates the file contains no header line.
	ErrNoHeader = errors.New("no header found in log file")
	// ErrNoData indicates the file contains a header but no usable rows.
	ErrNoData = errors.New("no data rows found in log file")
	// ErrColumnMismatch indicates a row's width differs from the header's.
	ErrColumnMismatch = errors.New("data columns don't match header")
)

// Log is a parsed trace log: an ordered header and a samples-by-parameters
// matrix. Row order is the chain order; it carries the autocorrelation
// structure the ESS estimator depends on.
type Log struct {
	Header []string
	Rows   [][]float64
}

// NumSamples returns the number of logged states.
func (l *Log) NumSamples() int {
	return len(l.Rows)
}

// Column returns the values of the named column in chain order.
// The second return is false when the header does not contain name.
func (l *Log) Column(name string) ([]float64, bool) {
	for i, h := range l.Header {
		if h != name {
			continue
		}

		values := make([]float64, len(l.Rows))
		for j, row := range l.Rows {
			values[j] = row[i]
		}

		return values, true
	}

	return nil, false
}

// ReadFile opens and parses a BEAST log file. Files ending in .gz or .lz4
// are decompressed transparently; cluster runs routinely compress logs.
func ReadFile(path string) (*Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file

	switch filepath.Ext(path) {
	case ".gz":
		gzReader, gzErr := gzip.NewReader(file)
		if gzErr != nil {
			return nil, fmt.Errorf("open gzip log %s: %w", path, gzErr)
		}
		defer gzReader.Close()

		reader = gzReader
	case ".lz4":
		reader = lz4.NewReader(file)
	}

	log, err := Read(reader)
	if err != nil {
		return nil, fmt.Errorf("read log file %s: %w", path, err)
	}

	return log, nil
}

// Read parses a BEAST log from r.
func Read(r io.Reader) (*Log, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	var (
		header []string
		rows   [][]float64
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}

		if header == nil {
			if line == "" {
				continue
			}

			header = strings.Split(line, "\t")

			continue
		}

		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")

		row, ok := parseRow(fields)
		if !ok {
			continue
		}

		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row has %d columns, header has %d",
				ErrColumnMismatch, len(row), len(header))
		}

		rows = append(rows, row)
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, fmt.Errorf("scan log: %w", scanErr)
	}

	if header == nil {
		return nil, ErrNoHeader
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	return &Log{Header: header, Rows: rows}, nil
}

// maxLineBytes bounds a single log line. Wide logs from large analyses can
// exceed bufio's default 64 KiB token size.
const maxLineBytes = 16 * 1024 * 1024

func parseRow(fields []string) ([]float64, bool) {
	row := make([]float64, len(fields))

	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}

		row[i] = value
	}

	return row, true
}
