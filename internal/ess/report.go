package ess

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output format names accepted by WriteReport.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat indicates an unrecognized report format name.
var ErrUnknownFormat = fmt.Errorf("unknown report format (want %s, %s, %s or %s)",
	FormatTable, FormatCSV, FormatJSON, FormatYAML)

// WriteReport writes the report to w in the named format.
func WriteReport(w io.Writer, report *Report, format string) error {
	switch format {
	case FormatTable:
		return writeTable(w, report)
	case FormatCSV:
		return writeCSV(w, report)
	case FormatJSON:
		return writeJSON(w, report)
	case FormatYAML:
		return writeYAML(w, report)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MarshalJSON renders an infinite ESS as the string "inf". encoding/json
// rejects +Inf, and zero-variance traces legitimately produce it.
func (r Result) MarshalJSON() ([]byte, error) {
	if math.IsInf(r.ESS, 1) {
		return json.Marshal(struct {
			Parameter string `json:"parameter"`
			ESS       string `json:"ess"`
		}{Parameter: r.Parameter, ESS: "inf"})
	}

	type plain Result

	return json.Marshal(plain(r))
}

// formatESS renders an ESS value for textual output. Zero-variance traces
// produce +Inf, written as "inf".
func formatESS(value float64) string {
	if math.IsInf(value, 1) {
		return "inf"
	}

	return strconv.FormatFloat(value, 'f', 2, 64)
}

func writeTable(w io.Writer, report *Report) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Parameter", "ESS"})

	for _, result := range report.Results {
		tbl.AppendRow(table.Row{result.Parameter, formatESS(result.ESS)})
	}

	tbl.AppendFooter(table.Row{"Parameters", len(report.Results)})
	tbl.Render()

	return nil
}

func writeCSV(w io.Writer, report *Report) error {
	writer := csv.NewWriter(w)

	writeErr := writer.Write([]string{"Parameter", "ESS"})
	if writeErr != nil {
		return fmt.Errorf("write csv header: %w", writeErr)
	}

	for _, result := range report.Results {
		writeErr = writer.Write([]string{result.Parameter, formatESS(result.ESS)})
		if writeErr != nil {
			return fmt.Errorf("write csv row: %w", writeErr)
		}
	}

	writer.Flush()

	flushErr := writer.Error()
	if flushErr != nil {
		return fmt.Errorf("flush csv: %w", flushErr)
	}

	return nil
}

func writeJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(report)
	if encodeErr != nil {
		return fmt.Errorf("encode json report: %w", encodeErr)
	}

	return nil
}

func writeYAML(w io.Writer, report *Report) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	encodeErr := encoder.Encode(report)
	if encodeErr != nil {
		return fmt.Errorf("encode yaml report: %w", encodeErr)
	}

	return nil
}
