package pipeline

import (
	"fmt"

	"ai-research-assistant-be/pkg/rag/state"
)

// Stage names the states of one pipeline run.
type Stage string

const (
	stageStart Stage = ""

	StageAnalyzing             Stage = "analyzing"
	StageRetrievingLocalWave   Stage = "retrieving_local_wave"
	StageEvaluatingSufficiency Stage = "evaluating_sufficiency"
	StageRetrievingWeb         Stage = "retrieving_web"
	StageGenerating            Stage = "generating"
	StageEvaluatingQuality     Stage = "evaluating_quality"
	StageIterating             Stage = "iterating"
	StageSynthesizing          Stage = "synthesizing"
	StageDone                  Stage = "done"
)

// traceStageSourceUnavailable marks non-fatal retrieval failures recorded
// inside a retrieval stage. It is not a state transition.
const traceStageSourceUnavailable = "source_unavailable"

// transitions is the legal-move table. Keeping the two decision points here
// (skip web search; accept vs iterate) makes the bounded-iteration guarantee
// checkable instead of being spread over free-form branching.
var transitions = map[Stage][]Stage{
	stageStart:                 {StageAnalyzing},
	StageAnalyzing:             {StageRetrievingLocalWave},
	StageRetrievingLocalWave:   {StageEvaluatingSufficiency},
	StageEvaluatingSufficiency: {StageRetrievingWeb, StageGenerating},
	StageRetrievingWeb:         {StageGenerating},
	StageGenerating:            {StageEvaluatingQuality, StageSynthesizing},
	StageEvaluatingQuality:     {StageIterating, StageSynthesizing},
	StageIterating:             {StageRetrievingWeb},
	StageSynthesizing:          {StageDone},
	StageDone:                  {},
}

// stageMachine tracks the current stage of one run. Advance moves to the
// next stage and appends exactly one trace entry describing what that stage
// did, so replaying the trace reconstructs the visited state sequence.
type stageMachine struct {
	current Stage
	st      *state.RunState
}

func newStageMachine(st *state.RunState) *stageMachine {
	return &stageMachine{
		current: stageStart,
		st:      st,
	}
}

func (m *stageMachine) Advance(to Stage, action string) error {
	if !legal(m.current, to) {
		return fmt.Errorf("illegal stage transition %q -> %q", m.current, to)
	}
	m.current = to
	m.st.Trace(string(to), action)
	return nil
}

func legal(from, to Stage) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
