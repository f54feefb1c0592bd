package ess

import (
	"errors"
	"fmt"
	"sort"

	"github.com/beastkit/beastkit/internal/beastlog"
)

// Analysis defaults. These flow in through AnalyzeOptions so the estimator
// itself stays free of policy.
const (
	// DefaultBurnin is the fraction of initial samples discarded before
	// per-parameter ESS is computed.
	DefaultBurnin = 0.1
	// DefaultThreshold is the conventional "good enough" ESS target.
	DefaultThreshold = 200
)

// ErrEmptyLog indicates the analyzed log holds no samples.
var ErrEmptyLog = errors.New("input data is empty")

// ErrBurninRange indicates the burn-in fraction is outside [0, 1).
var ErrBurninRange = errors.New("burn-in must be in range [0, 1)")

// identifierColumns are per-state index columns excluded from ESS
// calculation. A state counter is a deterministic ramp, not a parameter.
var identifierColumns = map[string]struct{}{
	"sample": {},
	"Sample": {},
	"state":  {},
	"State":  {},
}

// thresholdColumns are the canonical trace columns the threshold report
// inspects when present. Matching is exact-case.
var thresholdColumns = []string{"posterior", "prior", "likelihood"}

// AnalyzeOptions configures a log analysis run.
type AnalyzeOptions struct {
	// Burnin is the fraction of initial samples to discard, in [0, 1).
	Burnin float64
	// Threshold is the ESS target for the threshold report.
	Threshold float64
	// MaxLag caps the autocorrelation sweep; <= 0 selects the default.
	MaxLag int
	// CheckThreshold enables the samples-to-threshold report for the
	// canonical posterior/prior/likelihood columns.
	CheckThreshold bool
	// ExtraSkipColumns names additional columns to exclude from ESS
	// calculation, on top of the built-in identifier columns.
	ExtraSkipColumns []string
}

// Result is the ESS estimate for one logged parameter.
type Result struct {
	Parameter string  `json:"parameter" yaml:"parameter"`
	ESS       float64 `json:"ess" yaml:"ess"`
}

// ThresholdResult reports how many samples a canonical column needed to
// reach the ESS target. Reached is false when even the full trace misses
// it; FinalESS then carries the post-burn-in ESS for context.
type ThresholdResult struct {
	Parameter     string  `json:"parameter" yaml:"parameter"`
	Threshold     float64 `json:"threshold" yaml:"threshold"`
	SamplesNeeded int     `json:"samples_needed,omitempty" yaml:"samples_needed,omitempty"`
	Reached       bool    `json:"reached" yaml:"reached"`
	FinalESS      float64 `json:"final_ess,omitempty" yaml:"final_ess,omitempty"`
}

// Report is the outcome of analyzing one log: per-parameter ESS sorted by
// ascending ESS, plus the optional threshold report.
type Report struct {
	TotalSamples   int               `json:"total_samples" yaml:"total_samples"`
	BurninFraction float64           `json:"burnin_fraction" yaml:"burnin_fraction"`
	KeptSamples    int               `json:"kept_samples" yaml:"kept_samples"`
	Results        []Result          `json:"results" yaml:"results"`
	Thresholds     []ThresholdResult `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// Analyze computes per-parameter ESS for a parsed log. Identifier columns
// are skipped. The threshold report deliberately searches the full
// pre-burn-in series: the question it answers is how long the chain had to
// run, counted from state zero.
func Analyze(log *beastlog.Log, opts AnalyzeOptions) (*Report, error) {
	total := log.NumSamples()
	if total == 0 {
		return nil, ErrEmptyLog
	}

	if opts.Burnin < 0 || opts.Burnin >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrBurninRange, opts.Burnin)
	}

	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}

	burninRows := int(float64(total) * opts.Burnin)

	skip := make(map[string]struct{}, len(identifierColumns)+len(opts.ExtraSkipColumns))
	for name := range identifierColumns {
		skip[name] = struct{}{}
	}

	for _, name := range opts.ExtraSkipColumns {
		skip[name] = struct{}{}
	}

	report := &Report{
		TotalSamples:   total,
		BurninFraction: opts.Burnin,
		KeptSamples:    total - burninRows,
	}

	for _, name := range log.Header {
		if _, skipped := skip[name]; skipped {
			continue
		}

		column, _ := log.Column(name)

		report.Results = append(report.Results, Result{
			Parameter: name,
			ESS:       EffectiveSampleSize(column[burninRows:], opts.MaxLag),
		})
	}

	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].ESS < report.Results[j].ESS
	})

	if opts.CheckThreshold {
		report.Thresholds = thresholdReport(log, burninRows, opts)
	}

	return report, nil
}

func thresholdReport(log *beastlog.Log, burninRows int, opts AnalyzeOptions) []ThresholdResult {
	var results []ThresholdResult

	for _, name := range thresholdColumns {
		column, ok := log.Column(name)
		if !ok {
			continue
		}

		needed, reached := FindThreshold(column, opts.Threshold, opts.MaxLag)

		result := ThresholdResult{
			Parameter: name,
			Threshold: opts.Threshold,
			Reached:   reached,
		}

		if reached {
			result.SamplesNeeded = needed
		} else {
			result.FinalESS = EffectiveSampleSize(column[burninRows:], opts.MaxLag)
		}

		results = append(results, result)
	}

	return results
}
