// Package remaster converts ReMASTER simulation output (a Nexus alignment
// plus an annotated trees file) into a populated BEAST2 input XML.
//
// Deliberately not a general Nexus/Newick parser: the alignment matrix is
// read line by line, leaf annotations are pulled out of the Newick text with
// regular expressions, and ReMASTER's malformed translate block (a trailing
// comma on the final entry) is patched with line-level surgery before any
// extraction happens.
package remaster

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors for malformed simulation output.
var (
	// ErrNoMatrix indicates the alignment file has no matrix block.
	ErrNoMatrix = errors.New("no matrix block found in alignment")
	// ErrNoTree indicates the trees file has no tree statement.
	ErrNoTree = errors.New("no tree statement found in trees file")
)

// SimData is the extracted simulation output: per-taxon sequences, sampling
// times (in simulation years), and trait types.
type SimData struct {
	Sequences map[string]string
	Times     map[string]float64
	Types     map[string]string
}

// Extract reads a Nexus alignment and a ReMASTER trees file and returns the
// per-taxon data needed to fill a BEAST2 template.
func Extract(alignmentPath, treePath string) (*SimData, error) {
	sequences, err := readAlignment(alignmentPath)
	if err != nil {
		return nil, fmt.Errorf("read alignment %s: %w", alignmentPath, err)
	}

	times, types, err := readTreeAnnotations(treePath)
	if err != nil {
		return nil, fmt.Errorf("read trees %s: %w", treePath, err)
	}

	return &SimData{Sequences: sequences, Times: times, Types: types}, nil
}

// readAlignment parses the matrix block of a Nexus alignment: one
// "taxon sequence" pair per line until the closing semicolon. Sequences are
// lowercased to match BEAST2 input conventions.
func readAlignment(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sequences := make(map[string]string)
	inMatrix := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !inMatrix {
			if strings.EqualFold(line, "matrix") {
				inMatrix = true
			}

			continue
		}

		if line == ";" || strings.HasSuffix(line, ";") {
			line = strings.TrimSuffix(line, ";")
			if entry := strings.TrimSpace(line); entry != "" {
				addMatrixEntry(sequences, entry)
			}

			break
		}

		if line == "" {
			continue
		}

		addMatrixEntry(sequences, line)
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, scanErr
	}

	if len(sequences) == 0 {
		return nil, ErrNoMatrix
	}

	return sequences, nil
}

func addMatrixEntry(sequences map[string]string, line string) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return
	}

	taxon := strings.Trim(fields[0], "'\"")
	sequences[taxon] = strings.ToLower(fields[1])
}

// leafPattern matches a labeled tip with a BEAST-style comment: the label
// must follow '(' or ',' (an annotation after ')' belongs to an internal
// node and carries no taxon).
var leafPattern = regexp.MustCompile(`[(,]\s*([^(),\[\]:\s]+)\[&([^\]]*)\]`)

// typePattern and timePattern pull individual fields out of a leaf comment
// body such as `type="I",time=12.5`.
var (
	typePattern = regexp.MustCompile(`(?:^|,)type=("?[^",]+"?)`)
	timePattern = regexp.MustCompile(`(?:^|,)time=([-+0-9.eE]+)`)
)

// readTreeAnnotations extracts per-leaf time and type annotations from a
// ReMASTER trees file, mapping translate-table indices back to taxon labels.
func readTreeAnnotations(path string) (map[string]float64, map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	lines := strings.Split(string(raw), "\n")
	patchTranslateBlock(lines)

	translate := parseTranslate(lines)

	times := make(map[string]float64)
	types := make(map[string]string)

	sawTree := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(trimmed), "tree ") {
			continue
		}

		sawTree = true

		for _, match := range leafPattern.FindAllStringSubmatch(trimmed, -1) {
			label := strings.Trim(match[1], "'\"")
			if real, ok := translate[label]; ok {
				label = real
			}

			body := match[2]

			if typeMatch := typePattern.FindStringSubmatch(body); typeMatch != nil {
				value := strings.Trim(typeMatch[1], `"`)
				value = strings.ReplaceAll(value, "{", "")
				value = strings.ReplaceAll(value, "}", "")
				types[label] = value
			}

			timeMatch := timePattern.FindStringSubmatch(body)
			if timeMatch == nil {
				continue
			}

			value, parseErr := strconv.ParseFloat(timeMatch[1], 64)
			if parseErr != nil {
				return nil, nil, fmt.Errorf("parse time annotation for %s: %w", label, parseErr)
			}

			times[label] = value
		}
	}

	if !sawTree {
		return nil, nil, ErrNoTree
	}

	return times, types, nil
}

// patchTranslateBlock removes the trailing comma ReMASTER leaves on the
// last translate entry: find the line closing the block, walk back over
// blank lines, strip one comma.
func patchTranslateBlock(lines []string) {
	inTranslate := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(strings.ToLower(trimmed), "translate") {
			inTranslate = true

			continue
		}

		if !inTranslate || !strings.Contains(line, ";") {
			continue
		}

		prev := i - 1
		for prev > 0 && strings.TrimSpace(lines[prev]) == "" {
			prev--
		}

		if prev > 0 {
			prevLine := strings.TrimRight(lines[prev], "\n")
			if strings.HasSuffix(strings.TrimRight(prevLine, " \t"), ",") {
				lines[prev] = strings.TrimRight(strings.TrimRight(prevLine, " \t"), ",")
			}
		}

		return
	}
}

// parseTranslate builds the index-to-label map from the translate block.
// Entries look like `1 t1,`; quoting around labels is honored but ignored.
func parseTranslate(lines []string) map[string]string {
	translate := make(map[string]string)
	inTranslate := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !inTranslate {
			if strings.HasPrefix(strings.ToLower(trimmed), "translate") {
				inTranslate = true
			}

			continue
		}

		if trimmed == ";" {
			break
		}

		entry := strings.TrimSuffix(strings.TrimSuffix(trimmed, ";"), ",")

		fields := strings.Fields(entry)
		if len(fields) >= 2 {
			translate[fields[0]] = strings.Trim(strings.Join(fields[1:], " "), "'\"")
		}

		if strings.HasSuffix(trimmed, ";") {
			break
		}
	}

	return translate
}
