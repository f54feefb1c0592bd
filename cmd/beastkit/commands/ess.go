// Package commands implements the beastkit subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/beastkit/beastkit/internal/beastlog"
	"github.com/beastkit/beastkit/internal/config"
	"github.com/beastkit/beastkit/internal/ess"
)

// essArgCount is the number of positional arguments the ess command takes.
const essArgCount = 1

// EssCommand holds the flags for the ess command.
type EssCommand struct {
	configPath       string
	output           string
	format           string
	burnin           float64
	threshold        float64
	maxLag           int
	skipColumns      []string
	noThresholdCheck bool
	noColor          bool
}

// NewEssCommand creates and configures the ess command.
func NewEssCommand() *cobra.Command {
	cmd := &EssCommand{}

	cobraCmd := &cobra.Command{
		Use:   "ess <log-file>",
		Short: "Compute effective sample sizes for a BEAST2 trace log",
		Long: `Compute per-parameter effective sample sizes (ESS) for a BEAST2 MCMC
trace log, after discarding a burn-in fraction. Also reports how many
samples the canonical posterior/prior/likelihood traces needed to reach
the ESS threshold. Files ending in .gz or .lz4 are decompressed on the fly.`,
		Args: cobra.ExactArgs(essArgCount),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.configPath, "config", "c", "", "config file path")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "output file (default: stdout)")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", config.DefaultEssFormat, "output format: table, csv, json, or yaml")
	cobraCmd.Flags().Float64VarP(&cmd.burnin, "burnin", "b", config.DefaultEssBurnin, "burn-in fraction to discard, in [0, 1)")
	cobraCmd.Flags().Float64VarP(&cmd.threshold, "threshold", "t", config.DefaultEssThreshold, "ESS threshold for the convergence report")
	cobraCmd.Flags().IntVar(&cmd.maxLag, "max-lag", config.DefaultEssMaxLag, "autocorrelation lag cap (0 = min(N-1, 10000))")
	cobraCmd.Flags().StringSliceVar(&cmd.skipColumns, "skip-columns", nil, "extra columns to exclude from ESS calculation")
	cobraCmd.Flags().BoolVar(&cmd.noThresholdCheck, "no-threshold-check", false, "skip the samples-to-threshold report")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "disable colored output")

	return cobraCmd
}

// Run executes the ess command.
func (c *EssCommand) Run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	c.applyConfig(cobraCmd, cfg)

	if c.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	log, err := beastlog.ReadFile(args[0])
	if err != nil {
		return err
	}

	report, err := ess.Analyze(log, ess.AnalyzeOptions{
		Burnin:           c.burnin,
		Threshold:        c.threshold,
		MaxLag:           c.maxLag,
		CheckThreshold:   !c.noThresholdCheck,
		ExtraSkipColumns: c.skipColumns,
	})
	if err != nil {
		return err
	}

	slog.Info("analyzed trace log",
		"file", args[0],
		"samples", report.TotalSamples,
		"kept", report.KeptSamples,
		"burnin", c.burnin,
	)

	writer, closeWriter, err := c.outputWriter()
	if err != nil {
		return err
	}
	defer closeWriter()

	writeErr := ess.WriteReport(writer, report, c.format)
	if writeErr != nil {
		return writeErr
	}

	if !c.noThresholdCheck {
		printThresholdReport(os.Stdout, report)
	}

	return nil
}

// applyConfig fills in any flag the user did not set from the loaded
// configuration, so file and env settings act as defaults.
func (c *EssCommand) applyConfig(cobraCmd *cobra.Command, cfg *config.Config) {
	flags := cobraCmd.Flags()

	if !flags.Changed("burnin") {
		c.burnin = cfg.Ess.Burnin
	}

	if !flags.Changed("threshold") {
		c.threshold = cfg.Ess.Threshold
	}

	if !flags.Changed("max-lag") {
		c.maxLag = cfg.Ess.MaxLag
	}

	if !flags.Changed("format") {
		c.format = cfg.Ess.Format
	}

	if !flags.Changed("skip-columns") && len(cfg.Ess.SkipColumns) > 0 {
		c.skipColumns = cfg.Ess.SkipColumns
	}
}

// outputWriter returns the report destination: stdout, or the --output
// file. The returned func closes the file when one was opened.
func (c *EssCommand) outputWriter() (io.Writer, func(), error) {
	if c.output == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(c.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, func() { file.Close() }, nil
}

// printThresholdReport writes the human-readable samples-to-threshold
// lines: green for traces that reached the target, yellow for misses.
func printThresholdReport(w io.Writer, report *ess.Report) {
	if len(report.Thresholds) == 0 {
		return
	}

	fmt.Fprintf(w, "\nSamples needed for ESS >= %g:\n", report.Thresholds[0].Threshold)

	for _, result := range report.Thresholds {
		if result.Reached {
			color.New(color.FgGreen).Fprintf(w, "  %s: reached after %s samples\n",
				result.Parameter, humanize.Comma(int64(result.SamplesNeeded)))

			continue
		}

		color.New(color.FgYellow).Fprintf(w, "  %s: not reached (final ESS: %.2f)\n",
			result.Parameter, result.FinalESS)
	}
}
