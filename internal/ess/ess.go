// Package ess estimates effective sample sizes for MCMC parameter traces.
// The estimator matches the behavior of R's effectiveSize: demean, sum the
// positive autocorrelations up to a lag cap, and divide N by (1 + 2*sum).
// All variance calculations use population variance (÷n, not ÷(n−1)).
package ess

import "math"

// DefaultMaxLag caps the autocorrelation sweep when no explicit cap is given.
const DefaultMaxLag = 10000

// EffectiveSampleSize estimates how many independent samples the trace x is
// worth, given its within-chain autocorrelation.
//
// maxLag bounds the autocorrelation sweep; a value <= 0 selects the default
// min(N-1, DefaultMaxLag). An explicit maxLag is still clamped to N-1.
//
// Degenerate inputs are defined values, not errors: a trace shorter than two
// samples yields 0, and a constant trace (zero variance) yields +Inf.
func EffectiveSampleSize(x []float64, maxLag int) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}

	var mean float64
	for _, v := range x {
		mean += v
	}

	mean /= float64(n)

	demeaned := make([]float64, n)

	var sumSq float64

	for i, v := range x {
		d := v - mean
		demeaned[i] = d
		sumSq += d * d
	}

	variance := sumSq / float64(n)
	if variance == 0 {
		return math.Inf(1)
	}

	if maxLag <= 0 || maxLag > n-1 {
		maxLag = min(n-1, DefaultMaxLag)
	}

	// Sum autocorrelations until the first non-positive coefficient. The
	// early stop keeps noisy negative-lag terms out of the estimate.
	var positiveSum float64

	for lag := 1; lag <= maxLag; lag++ {
		var cov float64
		for i := range n - lag {
			cov += demeaned[i] * demeaned[i+lag]
		}

		cov /= float64(n - lag)

		acf := cov / variance
		if acf <= 0 {
			break
		}

		positiveSum += acf
	}

	return float64(n) / (1 + 2*positiveSum)
}

// Search granularity for FindThreshold. The coarse sweep probes prefixes
// that are multiples of coarseStep; a hit is then refined in refineStep
// increments within the preceding coarse window.
const (
	coarseStep = 100
	refineStep = 10
)

// FindThreshold returns the smallest prefix length n for which the trace's
// first n samples reach the given ESS threshold, following a coarse sweep
// in steps of 100 refined in steps of 10. Prefixes between the last probed
// multiple of 100 and the full length are only considered by the final
// whole-trace check. Keep this stepping as is: R's coda and tracer-style
// tools report the same granularity, and downstream pipelines compare
// against their numbers.
//
// The second return is false when even the full trace misses the threshold.
// That is a normal diagnostic outcome, not an error.
func FindThreshold(x []float64, threshold float64, maxLag int) (int, bool) {
	n := len(x)

	for coarse := coarseStep; coarse <= n; coarse += coarseStep {
		if EffectiveSampleSize(x[:coarse], maxLag) < threshold {
			continue
		}

		for refined := max(coarseStep, coarse-coarseStep); refined <= coarse; refined += refineStep {
			if EffectiveSampleSize(x[:refined], maxLag) >= threshold {
				return refined, true
			}
		}

		return coarse, true
	}

	if EffectiveSampleSize(x, maxLag) >= threshold {
		return n, true
	}

	return 0, false
}
