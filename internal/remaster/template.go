package remaster

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Template placeholders replaced by FillTemplate. Plain text markers inside
// the XML; substitution is string replacement, not DOM manipulation, so the
// template's formatting survives untouched.
const (
	PlaceholderSequences = "INSERTSEQUENCES"
	PlaceholderDates     = "INSERTTRAITDATES"
	PlaceholderTypes     = "INSERTTRAITTYPES"
)

// outputFilePerm is the mode for generated XML files.
const outputFilePerm = 0o644

// TemplateData carries the per-taxon values substituted into a template.
type TemplateData struct {
	Sequences map[string]string
	Dates     map[string]string
	Types     map[string]string
}

// FillTemplate reads the template, substitutes the placeholder markers, and
// writes the populated XML to outputPath. Every date is validated against
// the YYYY/MM/DD layout before anything is written.
func FillTemplate(templatePath, outputPath string, data *TemplateData) error {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read template %s: %w", templatePath, err)
	}

	for taxon, date := range data.Dates {
		_, parseErr := time.Parse(DateLayout, date)
		if parseErr != nil {
			return fmt.Errorf("invalid date format for taxon %q: %q (expected YYYY/MM/DD): %w",
				taxon, date, parseErr)
		}
	}

	content := string(raw)

	if strings.Contains(content, PlaceholderSequences) {
		content = strings.ReplaceAll(content, PlaceholderSequences, sequenceBlock(data.Sequences))
	}

	if strings.Contains(content, PlaceholderDates) {
		content = strings.ReplaceAll(content, PlaceholderDates, traitString(data.Dates))
	}

	if strings.Contains(content, PlaceholderTypes) {
		content = strings.ReplaceAll(content, PlaceholderTypes, traitString(data.Types))
	}

	writeErr := os.WriteFile(outputPath, []byte(content), outputFilePerm)
	if writeErr != nil {
		return fmt.Errorf("write output %s: %w", outputPath, writeErr)
	}

	return nil
}

// sequenceBlock renders one <sequence/> element per taxon, sorted by taxon
// for deterministic output.
func sequenceBlock(sequences map[string]string) string {
	lines := make([]string, 0, len(sequences))

	for _, taxon := range sortedKeys(sequences) {
		lines = append(lines, fmt.Sprintf(
			`    <sequence id="seq_%s" spec="Sequence" taxon="%s" totalcount="4" value="%s"/>`,
			taxon, taxon, sequences[taxon]))
	}

	return strings.Join(lines, "\n")
}

// traitString renders a BEAST2 trait value: comma-joined taxon=value pairs,
// sorted by taxon.
func traitString(values map[string]string) string {
	pairs := make([]string, 0, len(values))

	for _, taxon := range sortedKeys(values) {
		pairs = append(pairs, taxon+"="+values[taxon])
	}

	return strings.Join(pairs, ",")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
