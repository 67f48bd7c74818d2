package evaluate

import (
	"fmt"

	"ai-research-assistant-be/pkg/rag/state"
)

// SufficiencyConfig holds the numeric gate for the first retrieval wave.
type SufficiencyConfig struct {
	MinResults int
	MinScore   float64
}

// DefaultSufficiencyConfig mirrors the gate the pipeline was designed with:
// fewer than 3 results or an average relevance below 0.5 triggers web search.
func DefaultSufficiencyConfig() SufficiencyConfig {
	return SufficiencyConfig{
		MinResults: 3,
		MinScore:   0.5,
	}
}

// SufficiencyVerdict is the outcome of evaluating the first wave.
type SufficiencyVerdict struct {
	ResultCount    int
	AverageScore   float64
	NeedsWebSearch bool
	Reason         string
}

// SufficiencyEvaluator decides whether accumulated first-wave evidence
// warrants the extra (costlier) web-search pass. Pure function of its input.
type SufficiencyEvaluator struct {
	cfg SufficiencyConfig
}

func NewSufficiencyEvaluator(cfg SufficiencyConfig) *SufficiencyEvaluator {
	if cfg.MinResults <= 0 {
		cfg = DefaultSufficiencyConfig()
	}
	return &SufficiencyEvaluator{cfg: cfg}
}

// Evaluate inspects the given results. With zero results the average score is
// defined as 0 and web search always triggers; there is no division by zero.
func (e *SufficiencyEvaluator) Evaluate(results []state.RankedResult) SufficiencyVerdict {
	n := len(results)

	var avg float64
	if n > 0 {
		var sum float64
		for _, r := range results {
			sum += r.RelevanceScore
		}
		avg = sum / float64(n)
	}

	verdict := SufficiencyVerdict{
		ResultCount:  n,
		AverageScore: avg,
	}

	switch {
	case n == 0:
		verdict.NeedsWebSearch = true
		verdict.Reason = "no local, knowledge-base or repository results found, will search web"
	case n < e.cfg.MinResults:
		verdict.NeedsWebSearch = true
		verdict.Reason = fmt.Sprintf("only %d results found, will search web", n)
	case avg < e.cfg.MinScore:
		verdict.NeedsWebSearch = true
		verdict.Reason = fmt.Sprintf("low average relevance %.2f, will search web", avg)
	default:
		verdict.NeedsWebSearch = false
		verdict.Reason = fmt.Sprintf("sufficient evidence: %d results, average relevance %.2f", n, avg)
	}

	return verdict
}
