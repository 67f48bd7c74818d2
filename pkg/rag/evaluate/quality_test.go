package evaluate

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-research-assistant-be/pkg/llm"
	"ai-research-assistant-be/pkg/rag/state"
)

type scriptedLLM struct {
	response string
	err      error
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestQualityConfidenceIsMean(t *testing.T) {
	s := QualityScores{Completeness: 0.9, Accuracy: 0.6, Clarity: 0.9}
	if got := s.Confidence(); got != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", got)
	}
}

func TestQualityAcceptGate(t *testing.T) {
	e := NewQualityEvaluator(&scriptedLLM{}, DefaultQualityConfig(), discardLogger())

	tests := []struct {
		name       string
		confidence float64
		iteration  int
		maxIter    int
		want       bool
	}{
		{"above threshold accepts", 0.85, 0, 3, true},
		{"exactly at threshold accepts", 0.8, 0, 3, true},
		{"below threshold iterates", 0.79, 0, 3, false},
		{"below threshold but bound hit accepts", 0.1, 3, 3, true},
		{"below threshold mid-run iterates", 0.1, 2, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Accept(tt.confidence, tt.iteration, tt.maxIter); got != tt.want {
				t.Errorf("Accept(%v, %d, %d) = %v, want %v", tt.confidence, tt.iteration, tt.maxIter, got, tt.want)
			}
		})
	}
}

func TestQualityScoreParsesModelJSON(t *testing.T) {
	provider := &scriptedLLM{response: `Here you go: {"completeness": 0.9, "accuracy": 0.8, "clarity": 0.7} hope that helps`}
	e := NewQualityEvaluator(provider, DefaultQualityConfig(), discardLogger())

	scores := e.Score(context.Background(), "q", "answer", 1, nil)
	if scores.Completeness != 0.9 || scores.Accuracy != 0.8 || scores.Clarity != 0.7 {
		t.Errorf("unexpected scores: %+v", scores)
	}
}

func TestQualityScoreClampsOutOfRangeJSON(t *testing.T) {
	provider := &scriptedLLM{response: `{"completeness": 1.7, "accuracy": -0.5, "clarity": 0.5}`}
	e := NewQualityEvaluator(provider, DefaultQualityConfig(), discardLogger())

	scores := e.Score(context.Background(), "q", "answer", 0, nil)
	if scores.Completeness != 1 || scores.Accuracy != 0 {
		t.Errorf("scores not clamped to [0,1]: %+v", scores)
	}
}

func TestQualityScoreFallsBackToHeuristicOnError(t *testing.T) {
	provider := &scriptedLLM{err: errors.New("model down")}
	e := NewQualityEvaluator(provider, DefaultQualityConfig(), discardLogger())

	retrieved := []state.RankedResult{
		{Snippet: "kubernetes deployment strategies"},
		{Snippet: "container orchestration basics"},
	}
	answer := strings.Repeat("kubernetes deployment is described here. ", 12)

	scores := e.Score(context.Background(), "q", answer, 1, retrieved)

	for _, v := range []float64{scores.Completeness, scores.Accuracy, scores.Clarity, scores.Confidence()} {
		if v < 0 || v > 1 {
			t.Fatalf("heuristic produced out-of-range score: %+v", scores)
		}
	}
	// answer is longer than the target length, completeness saturates
	if scores.Completeness != 1 {
		t.Errorf("Completeness = %v, want 1", scores.Completeness)
	}
	// 1 citation over 2 retrieved results
	if scores.Accuracy != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", scores.Accuracy)
	}
}

func TestHeuristicWithNoRetrievedResults(t *testing.T) {
	scores := heuristicScores("short answer", 0, nil)
	if scores.Accuracy != 0 || scores.Clarity != 0 {
		t.Errorf("expected zero accuracy and clarity with no evidence, got %+v", scores)
	}
}

func TestQualityScoreFallsBackOnUnparseableOutput(t *testing.T) {
	provider := &scriptedLLM{response: "I cannot rate this answer."}
	e := NewQualityEvaluator(provider, DefaultQualityConfig(), discardLogger())

	scores := e.Score(context.Background(), "q", "", 0, nil)
	if scores.Confidence() != 0 {
		t.Errorf("expected zero-confidence heuristic result, got %+v", scores)
	}
}
