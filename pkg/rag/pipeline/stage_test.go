package pipeline

import (
	"testing"

	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

func TestStageMachineHappyPath(t *testing.T) {
	st := state.NewRunState("q", uuid.New(), 3)
	m := newStageMachine(st)

	path := []Stage{
		StageAnalyzing,
		StageRetrievingLocalWave,
		StageEvaluatingSufficiency,
		StageRetrievingWeb,
		StageGenerating,
		StageEvaluatingQuality,
		StageSynthesizing,
		StageDone,
	}

	for _, s := range path {
		if err := m.Advance(s, "ok"); err != nil {
			t.Fatalf("Advance(%s) failed: %v", s, err)
		}
	}

	if len(st.ReasoningTrace) != len(path) {
		t.Errorf("expected exactly one trace entry per transition, got %d for %d transitions",
			len(st.ReasoningTrace), len(path))
	}
	for i, s := range path {
		if st.ReasoningTrace[i].Stage != string(s) {
			t.Errorf("trace[%d].Stage = %s, want %s", i, st.ReasoningTrace[i].Stage, s)
		}
	}
}

func TestStageMachineIterationLoop(t *testing.T) {
	st := state.NewRunState("q", uuid.New(), 3)
	m := newStageMachine(st)

	path := []Stage{
		StageAnalyzing,
		StageRetrievingLocalWave,
		StageEvaluatingSufficiency,
		StageGenerating, // web skipped
		StageEvaluatingQuality,
		StageIterating,
		StageRetrievingWeb, // iteration always goes back through web
		StageGenerating,
		StageEvaluatingQuality,
		StageSynthesizing,
		StageDone,
	}

	for _, s := range path {
		if err := m.Advance(s, "ok"); err != nil {
			t.Fatalf("Advance(%s) failed: %v", s, err)
		}
	}
}

func TestStageMachineRejectsIllegalTransitions(t *testing.T) {
	illegal := []struct {
		from, to Stage
	}{
		{stageStart, StageGenerating},
		{StageAnalyzing, StageEvaluatingSufficiency},
		{StageEvaluatingSufficiency, StageSynthesizing},
		{StageIterating, StageGenerating}, // must re-retrieve first
		{StageDone, StageAnalyzing},       // terminal
		{StageSynthesizing, StageGenerating},
	}

	for _, tt := range illegal {
		st := state.NewRunState("q", uuid.New(), 3)
		m := newStageMachine(st)
		m.current = tt.from

		if err := m.Advance(tt.to, "nope"); err == nil {
			t.Errorf("expected %q -> %q to be rejected", tt.from, tt.to)
		}
		if len(st.ReasoningTrace) != 0 {
			t.Errorf("rejected transition %q -> %q still traced", tt.from, tt.to)
		}
	}
}

func TestGenerationFailureTransition(t *testing.T) {
	// A failed generation forces the run straight into synthesis.
	st := state.NewRunState("q", uuid.New(), 3)
	m := newStageMachine(st)
	m.current = StageGenerating

	if err := m.Advance(StageSynthesizing, "generation failed"); err != nil {
		t.Errorf("generating -> synthesizing must be legal: %v", err)
	}
}
