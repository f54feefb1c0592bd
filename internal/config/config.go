// Package config loads beastkit configuration from file, environment, and
// defaults via viper.
package config

import "errors"

// Config is the top-level configuration struct for beastkit.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Ess      EssConfig      `mapstructure:"ess"`
	Remaster RemasterConfig `mapstructure:"remaster"`
}

// EssConfig holds ESS analysis settings.
type EssConfig struct {
	Burnin      float64  `mapstructure:"burnin"`
	Threshold   float64  `mapstructure:"threshold"`
	MaxLag      int      `mapstructure:"max_lag"`
	Format      string   `mapstructure:"format"`
	SkipColumns []string `mapstructure:"skip_columns"`
}

// RemasterConfig holds simulation-conversion settings.
type RemasterConfig struct {
	StartDate string `mapstructure:"start_date"`
}

// Default configuration values.
const (
	DefaultEssBurnin     = 0.1
	DefaultEssThreshold  = 200.0
	DefaultEssMaxLag     = 0
	DefaultEssFormat     = "table"
	DefaultRemasterStart = "2000/01/01"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidBurnin indicates the burn-in fraction is out of range.
	ErrInvalidBurnin = errors.New("ess.burnin must be in range [0, 1)")
	// ErrInvalidThreshold indicates the ESS threshold is not positive.
	ErrInvalidThreshold = errors.New("ess.threshold must be positive")
	// ErrInvalidMaxLag indicates the lag cap is negative.
	ErrInvalidMaxLag = errors.New("ess.max_lag must be non-negative")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Ess.Burnin < 0 || c.Ess.Burnin >= 1 {
		return ErrInvalidBurnin
	}

	if c.Ess.Threshold <= 0 {
		return ErrInvalidThreshold
	}

	if c.Ess.MaxLag < 0 {
		return ErrInvalidMaxLag
	}

	return nil
}
