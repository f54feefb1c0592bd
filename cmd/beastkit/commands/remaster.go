package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/beastkit/beastkit/internal/config"
	"github.com/beastkit/beastkit/internal/remaster"
)

// Sentinel errors for missing required remaster flags.
var (
	// ErrNoAlignment is returned when the --alignment flag is not set.
	ErrNoAlignment = errors.New("alignment file is required (use --alignment)")
	// ErrNoTrees is returned when the --trees flag is not set.
	ErrNoTrees = errors.New("trees file is required (use --trees)")
	// ErrNoTemplate is returned when the --template flag is not set.
	ErrNoTemplate = errors.New("template file is required (use --template)")
	// ErrNoOutput is returned when the --output flag is not set.
	ErrNoOutput = errors.New("output file is required (use --output)")
)

// RemasterCommand holds the flags for the remaster command.
type RemasterCommand struct {
	configPath string
	alignment  string
	trees      string
	template   string
	output     string
	startDate  string
}

// NewRemasterCommand creates and configures the remaster command.
func NewRemasterCommand() *cobra.Command {
	cmd := &RemasterCommand{}

	cobraCmd := &cobra.Command{
		Use:   "remaster",
		Short: "Convert ReMASTER simulation output into BEAST2 input XML",
		Long: `Extract sequences, sampling dates, and trait types from ReMASTER
simulation output (a Nexus alignment plus an annotated trees file) and
substitute them into a BEAST2 XML template. Simulation times are
converted to calendar dates anchored at the start date.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.configPath, "config", "c", "", "config file path")
	cobraCmd.Flags().StringVarP(&cmd.alignment, "alignment", "a", "", "Nexus alignment file from the simulation")
	cobraCmd.Flags().StringVar(&cmd.trees, "trees", "", "annotated trees file from the simulation")
	cobraCmd.Flags().StringVar(&cmd.template, "template", "", "BEAST2 XML template with placeholder markers")
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "output XML file")
	cobraCmd.Flags().StringVar(&cmd.startDate, "start-date", "", "calendar date for simulation time zero (YYYY/MM/DD)")

	return cobraCmd
}

// Run executes the remaster command.
func (c *RemasterCommand) Run(cobraCmd *cobra.Command, _ []string) error {
	validateErr := c.validate()
	if validateErr != nil {
		return validateErr
	}

	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	if !cobraCmd.Flags().Changed("start-date") {
		c.startDate = cfg.Remaster.StartDate
	}

	data, err := remaster.Extract(c.alignment, c.trees)
	if err != nil {
		return err
	}

	slog.Info("extracted simulation data",
		"taxa", len(data.Sequences),
		"times", len(data.Times),
		"types", len(data.Types),
	)

	dates, err := remaster.TimesToDates(data.Times, c.startDate)
	if err != nil {
		return err
	}

	fillErr := remaster.FillTemplate(c.template, c.output, &remaster.TemplateData{
		Sequences: data.Sequences,
		Dates:     dates,
		Types:     data.Types,
	})
	if fillErr != nil {
		return fillErr
	}

	slog.Info("wrote populated template", "output", c.output)

	return nil
}

func (c *RemasterCommand) validate() error {
	switch {
	case c.alignment == "":
		return ErrNoAlignment
	case c.trees == "":
		return ErrNoTrees
	case c.template == "":
		return ErrNoTemplate
	case c.output == "":
		return ErrNoOutput
	}

	return nil
}
