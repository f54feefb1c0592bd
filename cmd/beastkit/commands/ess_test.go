package commands

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTraceLog writes a synthetic BEAST log with white-noise posterior and
// prior columns.
func writeTraceLog(t *testing.T, samples int) string {
	t.Helper()

	rng := rand.New(rand.NewSource(42))

	var builder strings.Builder

	builder.WriteString("#BEAST v2.7\n")
	builder.WriteString("Sample\tposterior\tprior\n")

	for i := range samples {
		fmt.Fprintf(&builder, "%d\t%g\t%g\n", i*1000, rng.NormFloat64(), rng.NormFloat64())
	}

	path := filepath.Join(t.TempDir(), "trace.log")
	require.NoError(t, os.WriteFile(path, []byte(builder.String()), 0o644))

	return path
}

func TestEssCommandWritesCSV(t *testing.T) {
	logPath := writeTraceLog(t, 500)
	outPath := filepath.Join(t.TempDir(), "ess.csv")

	cmd := NewEssCommand()
	cmd.SetArgs([]string{logPath, "-o", outPath, "-f", "csv", "--no-threshold-check"})

	require.NoError(t, cmd.Execute())

	file, err := os.Open(outPath)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + posterior + prior

	assert.Equal(t, []string{"Parameter", "ESS"}, records[0])

	params := []string{records[1][0], records[2][0]}
	assert.ElementsMatch(t, []string{"posterior", "prior"}, params)
}

func TestEssCommandThresholdReport(t *testing.T) {
	logPath := writeTraceLog(t, 1000)
	outPath := filepath.Join(t.TempDir(), "ess.csv")

	cmd := NewEssCommand()
	cmd.SetArgs([]string{
		logPath, "-o", outPath, "-f", "csv",
		"--threshold", "150", "--no-color",
	})

	require.NoError(t, cmd.Execute())
	assert.FileExists(t, outPath)
}

func TestEssCommandMissingFile(t *testing.T) {
	cmd := NewEssCommand()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.log"), "--no-threshold-check"})

	assert.Error(t, cmd.Execute())
}

func TestEssCommandBadFormat(t *testing.T) {
	logPath := writeTraceLog(t, 200)

	cmd := NewEssCommand()
	cmd.SetArgs([]string{logPath, "-f", "xml", "--no-threshold-check"})

	assert.Error(t, cmd.Execute())
}

func TestEssCommandBadBurnin(t *testing.T) {
	logPath := writeTraceLog(t, 200)

	cmd := NewEssCommand()
	cmd.SetArgs([]string{logPath, "-b", "1.5", "--no-threshold-check"})

	assert.Error(t, cmd.Execute())
}
