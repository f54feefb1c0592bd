package ess

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// whiteNoise returns n standard-normal samples from a fixed-seed generator.
func whiteNoise(t *testing.T, n int, seed int64) []float64 {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))

	values := make([]float64, n)
	for i := range values {
		values[i] = rng.NormFloat64()
	}

	return values
}

func TestEffectiveSampleSizeDegenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []float64
		expected float64
	}{
		{name: "empty", input: nil, expected: 0},
		{name: "single_sample", input: []float64{3.14}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := EffectiveSampleSize(tt.input, 0)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestEffectiveSampleSizeConstant(t *testing.T) {
	t.Parallel()

	x := make([]float64, 100)
	for i := range x {
		x[i] = 1.0
	}

	got := EffectiveSampleSize(x, 0)
	assert.True(t, math.IsInf(got, 1), "constant trace should have infinite ESS, got %v", got)
}

func TestEffectiveSampleSizeConstantShort(t *testing.T) {
	t.Parallel()

	got := EffectiveSampleSize([]float64{7.0, 7.0}, 0)
	assert.True(t, math.IsInf(got, 1))
}

func TestEffectiveSampleSizeAlternating(t *testing.T) {
	t.Parallel()

	// Lag-1 autocorrelation is about -1, so the sweep stops before
	// accumulating anything and ESS equals N exactly.
	const n = 100

	x := make([]float64, n)
	for i := range x {
		if i%2 == 0 {
			x[i] = 5.0
		} else {
			x[i] = -5.0
		}
	}

	got := EffectiveSampleSize(x, 0)
	assert.InDelta(t, float64(n), got, 0.0001)
}

func TestEffectiveSampleSizeWhiteNoise(t *testing.T) {
	t.Parallel()

	const n = 1000

	x := whiteNoise(t, n, 42)

	got := EffectiveSampleSize(x, 0)
	assert.Greater(t, got, 800.0)
	assert.Less(t, got, 1200.0)
}

func TestEffectiveSampleSizeRamp(t *testing.T) {
	t.Parallel()

	// A monotone ramp is positively autocorrelated at every lag up to the
	// cap, so every coefficient accumulates and the estimate collapses.
	const n = 500

	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	got := EffectiveSampleSize(x, 0)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 50.0)
}

func TestEffectiveSampleSizeCorrelatedChain(t *testing.T) {
	t.Parallel()

	// AR(1) with strong persistence: far fewer effective samples than N.
	const (
		n   = 2000
		phi = 0.95
	)

	rng := rand.New(rand.NewSource(7))

	x := make([]float64, n)
	for i := 1; i < n; i++ {
		x[i] = phi*x[i-1] + rng.NormFloat64()
	}

	got := EffectiveSampleSize(x, 0)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, float64(n)/4)
}

func TestEffectiveSampleSizeMaxLagClamped(t *testing.T) {
	t.Parallel()

	x := whiteNoise(t, 50, 3)

	// A cap beyond N-1 must behave like the default cap.
	capped := EffectiveSampleSize(x, 49)
	excessive := EffectiveSampleSize(x, 1000)
	assert.InDelta(t, capped, excessive, 0.0001)
}

func TestFindThresholdReachable(t *testing.T) {
	t.Parallel()

	x := whiteNoise(t, 1000, 42)

	n, ok := FindThreshold(x, 150, 0)
	require.True(t, ok)
	assert.LessOrEqual(t, n, 1000)
	assert.GreaterOrEqual(t, n, 100)

	// The returned prefix itself must satisfy the threshold.
	assert.GreaterOrEqual(t, EffectiveSampleSize(x[:n], 0), 150.0)
}

func TestFindThresholdUnreachable(t *testing.T) {
	t.Parallel()

	x := whiteNoise(t, 300, 42)

	n, ok := FindThreshold(x, 1e6, 0)
	assert.False(t, ok)
	assert.Zero(t, n)
}

func TestFindThresholdShortSeriesFallback(t *testing.T) {
	t.Parallel()

	// Too short for the coarse sweep; only the whole-series check can hit.
	x := whiteNoise(t, 80, 11)

	n, ok := FindThreshold(x, 40, 0)
	require.True(t, ok)
	assert.Equal(t, 80, n)
}

func TestFindThresholdGranularityGap(t *testing.T) {
	t.Parallel()

	// An alternating series has ESS == N exactly at every prefix. With a
	// threshold between 100 and 150, the only coarse probe (n=100) misses
	// and the whole-series fallback answers with N, never an intermediate
	// prefix.
	x := make([]float64, 150)
	for i := range x {
		if i%2 == 0 {
			x[i] = 5.0
		} else {
			x[i] = -5.0
		}
	}

	n, ok := FindThreshold(x, 120, 0)
	require.True(t, ok)
	assert.Equal(t, 150, n)
}

func TestFindThresholdRefinesInTens(t *testing.T) {
	t.Parallel()

	x := whiteNoise(t, 1000, 42)

	n, ok := FindThreshold(x, 150, 0)
	require.True(t, ok)

	// The refined answer moves in steps of 10 from a multiple of 100.
	assert.Zero(t, n%10)
}

func TestFindThresholdEmptyInput(t *testing.T) {
	t.Parallel()

	n, ok := FindThreshold(nil, 200, 0)
	assert.False(t, ok)
	assert.Zero(t, n)
}
