package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "beastkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.InDelta(t, DefaultEssBurnin, cfg.Ess.Burnin, 0.0001)
	assert.InDelta(t, DefaultEssThreshold, cfg.Ess.Threshold, 0.0001)
	assert.Equal(t, DefaultEssMaxLag, cfg.Ess.MaxLag)
	assert.Equal(t, DefaultEssFormat, cfg.Ess.Format)
	assert.Equal(t, DefaultRemasterStart, cfg.Remaster.StartDate)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
ess:
  burnin: 0.2
  threshold: 300
  format: csv
remaster:
  start_date: 2019/01/01
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, cfg.Ess.Burnin, 0.0001)
	assert.InDelta(t, 300.0, cfg.Ess.Threshold, 0.0001)
	assert.Equal(t, "csv", cfg.Ess.Format)
	assert.Equal(t, "2019/01/01", cfg.Remaster.StartDate)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BEASTKIT_ESS_THRESHOLD", "500")

	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.InDelta(t, 500.0, cfg.Ess.Threshold, 0.0001)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected error
	}{
		{
			name:     "burnin_too_large",
			content:  "ess:\n  burnin: 1.5\n",
			expected: ErrInvalidBurnin,
		},
		{
			name:     "negative_burnin",
			content:  "ess:\n  burnin: -0.1\n",
			expected: ErrInvalidBurnin,
		},
		{
			name:     "zero_threshold",
			content:  "ess:\n  threshold: 0\n",
			expected: ErrInvalidThreshold,
		},
		{
			name:     "negative_max_lag",
			content:  "ess:\n  max_lag: -1\n",
			expected: ErrInvalidMaxLag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	// An explicit path that does not exist is an error; an empty path with
	// no discoverable config file falls back to defaults.
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
