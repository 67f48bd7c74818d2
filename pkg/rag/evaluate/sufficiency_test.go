package evaluate

import (
	"strings"
	"testing"

	"ai-research-assistant-be/pkg/rag/state"
)

func resultsWithScores(scores ...float64) []state.RankedResult {
	var out []state.RankedResult
	for _, s := range scores {
		out = append(out, state.RankedResult{Kind: state.SourceLocalDocument, RelevanceScore: s})
	}
	return out
}

func TestSufficiencyEvaluate(t *testing.T) {
	e := NewSufficiencyEvaluator(DefaultSufficiencyConfig())

	tests := []struct {
		name     string
		results  []state.RankedResult
		wantWeb  bool
		wantAvg  float64
		inReason string
	}{
		{
			name:     "zero results always trigger web search",
			results:  nil,
			wantWeb:  true,
			wantAvg:  0,
			inReason: "no local",
		},
		{
			name:     "fewer than three results trigger web search even with high scores",
			results:  resultsWithScores(0.95, 0.92),
			wantWeb:  true,
			wantAvg:  0.935,
			inReason: "only 2 results",
		},
		{
			name:     "low average relevance triggers web search",
			results:  resultsWithScores(0.4, 0.45, 0.4),
			wantWeb:  true,
			inReason: "low average relevance",
		},
		{
			name:    "sufficient evidence skips web search",
			results: resultsWithScores(0.6, 0.7, 0.8),
			wantWeb: false,
		},
		{
			name:    "average exactly at threshold is sufficient",
			results: resultsWithScores(0.5, 0.5, 0.5),
			wantWeb: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.Evaluate(tt.results)
			if v.NeedsWebSearch != tt.wantWeb {
				t.Errorf("NeedsWebSearch = %v, want %v (reason: %s)", v.NeedsWebSearch, tt.wantWeb, v.Reason)
			}
			if v.ResultCount != len(tt.results) {
				t.Errorf("ResultCount = %d, want %d", v.ResultCount, len(tt.results))
			}
			if tt.inReason != "" && !strings.Contains(v.Reason, tt.inReason) {
				t.Errorf("Reason %q does not contain %q", v.Reason, tt.inReason)
			}
		})
	}
}

func TestSufficiencyZeroConfigFallsBackToDefault(t *testing.T) {
	e := NewSufficiencyEvaluator(SufficiencyConfig{})
	v := e.Evaluate(resultsWithScores(0.9, 0.9))
	if !v.NeedsWebSearch {
		t.Error("expected default MinResults=3 gate to apply")
	}
}
