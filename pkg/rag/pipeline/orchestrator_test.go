package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-research-assistant-be/internal/constant"
	"ai-research-assistant-be/pkg/llm"
	"ai-research-assistant-be/pkg/rag/evaluate"
	"ai-research-assistant-be/pkg/rag/generate"
	"ai-research-assistant-be/pkg/rag/source"
	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM scripts the three model roles the pipeline exercises: analysis and
// quality evaluation go through Generate, answer generation through Chat.
type fakeLLM struct {
	mu sync.Mutex

	qualityResponses []string // popped per evaluation call
	answers          []string // popped per generation call
	chatErr          error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.HasPrefix(prompt, "Evaluate this answer") {
		if len(f.qualityResponses) == 0 {
			return `{"completeness": 0.9, "accuracy": 0.9, "clarity": 0.9}`, nil
		}
		r := f.qualityResponses[0]
		f.qualityResponses = f.qualityResponses[1:]
		return r, nil
	}
	// Question analysis.
	return `{"complexity": 2, "type": "factual", "sources": ["documents"]}`, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.chatErr != nil {
		return "", f.chatErr
	}
	if len(f.answers) == 0 {
		return "a generated answer", nil
	}
	a := f.answers[0]
	f.answers = f.answers[1:]
	return a, nil
}

func qualityJSON(v float64) string {
	return fmt.Sprintf(`{"completeness": %.2f, "accuracy": %.2f, "clarity": %.2f}`, v, v, v)
}

// fakeSource is a scriptable retrieval source.
type fakeSource struct {
	kind    state.SourceKind
	enabled bool
	results []state.RankedResult
	err     error
	delay   time.Duration

	mu    sync.Mutex
	calls int
}

func (f *fakeSource) Kind() state.SourceKind       { return f.kind }
func (f *fakeSource) Enabled(question string) bool { return f.enabled }

func (f *fakeSource) Retrieve(ctx context.Context, question string, userScope uuid.UUID) ([]state.RankedResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func rankedResult(kind state.SourceKind, locator string, score float64) state.RankedResult {
	return state.RankedResult{Kind: kind, Title: locator, Snippet: "snippet about " + locator, Locator: locator, RelevanceScore: score}
}

func sufficientLocal() *fakeSource {
	return &fakeSource{
		kind:    state.SourceLocalDocument,
		enabled: true,
		results: []state.RankedResult{
			rankedResult(state.SourceLocalDocument, "doc://a#chunk-0", 0.8),
			rankedResult(state.SourceLocalDocument, "doc://a#chunk-1", 0.7),
			rankedResult(state.SourceLocalDocument, "doc://b#chunk-0", 0.6),
		},
	}
}

func newTestOrchestrator(model *fakeLLM, firstWave []source.RetrievalSource, web source.RetrievalSource) *Orchestrator {
	logger := log.New(io.Discard, "", 0)
	return NewOrchestrator(
		firstWave,
		web,
		NewAnalyzer(model, logger),
		evaluate.NewSufficiencyEvaluator(evaluate.DefaultSufficiencyConfig()),
		evaluate.NewQualityEvaluator(model, evaluate.DefaultQualityConfig(), logger),
		generate.NewGenerator(model, logger),
		logger,
		DefaultMaxIterations,
	)
}

func traceStages(steps []state.TraceStep) []string {
	var out []string
	for _, s := range steps {
		out = append(out, s.Stage)
	}
	return out
}

func TestRunInvalidScope(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{}, nil, &fakeSource{kind: state.SourceWeb, enabled: true})

	_, err := o.Run(context.Background(), "q", uuid.Nil, Options{})
	require.ErrorIs(t, err, ErrInvalidScope)
}

func TestRunSufficientEvidenceSkipsWeb(t *testing.T) {
	model := &fakeLLM{qualityResponses: []string{qualityJSON(0.9)}}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{sufficientLocal()}, web)

	resp, err := o.Run(context.Background(), "what does my thesis say?", uuid.New(), Options{VerboseTrace: true})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.IterationsUsed)
	assert.Equal(t, 0, web.callCount(), "web source must not be called when evidence is sufficient")
	assert.InDelta(t, 0.9, resp.Confidence, 0.001)
	assert.Len(t, resp.Sources, 3)

	stages := traceStages(resp.ReasoningSteps)
	assert.NotContains(t, stages, string(StageRetrievingWeb))
	assert.Equal(t, string(StageDone), stages[len(stages)-1])
}

func TestRunInsufficientEvidenceTriggersWeb(t *testing.T) {
	model := &fakeLLM{qualityResponses: []string{qualityJSON(0.9)}}
	local := &fakeSource{kind: state.SourceLocalDocument, enabled: true} // zero results
	web := &fakeSource{
		kind:    state.SourceWeb,
		enabled: true,
		results: []state.RankedResult{rankedResult(state.SourceWeb, "https://example.com", 0.9)},
	}
	o := newTestOrchestrator(model, []source.RetrievalSource{local}, web)

	resp, err := o.Run(context.Background(), "latest release notes?", uuid.New(), Options{VerboseTrace: true})
	require.NoError(t, err)

	assert.Equal(t, 1, web.callCount())
	assert.Contains(t, traceStages(resp.ReasoningSteps), string(StageRetrievingWeb))
	assert.Len(t, resp.Sources, 1)
}

func TestRunIteratesUntilQualityAccepts(t *testing.T) {
	// Two weak candidates, then a strong one: two iterations used and the
	// final answer is the third candidate.
	model := &fakeLLM{
		qualityResponses: []string{qualityJSON(0.5), qualityJSON(0.5), qualityJSON(0.9)},
		answers:          []string{"answer one", "answer two", "answer three"},
	}
	web := &fakeSource{
		kind:    state.SourceWeb,
		enabled: true,
		results: []state.RankedResult{rankedResult(state.SourceWeb, "https://example.com", 0.9)},
	}
	o := newTestOrchestrator(model, []source.RetrievalSource{sufficientLocal()}, web)

	resp, err := o.Run(context.Background(), "a hard question", uuid.New(), Options{VerboseTrace: true})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.IterationsUsed)
	assert.Equal(t, "answer three", resp.Answer)
	assert.InDelta(t, 0.9, resp.Confidence, 0.001)
	assert.Equal(t, 2, web.callCount(), "each iteration re-retrieves from the web")

	stages := traceStages(resp.ReasoningSteps)
	assert.Contains(t, stages, string(StageIterating))
	assert.Equal(t, string(StageDone), stages[len(stages)-1])
}

func TestRunTerminatesAtIterationBound(t *testing.T) {
	// Quality never reaches the threshold; the bound forces acceptance.
	model := &fakeLLM{
		qualityResponses: []string{qualityJSON(0.3), qualityJSON(0.3), qualityJSON(0.3), qualityJSON(0.3), qualityJSON(0.3)},
	}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{sufficientLocal()}, web)

	resp, err := o.Run(context.Background(), "q", uuid.New(), Options{MaxIterations: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.IterationsUsed)
	assert.InDelta(t, 0.3, resp.Confidence, 0.001)
}

func TestRunSourceFailureDegradesGracefully(t *testing.T) {
	model := &fakeLLM{qualityResponses: []string{qualityJSON(0.9)}}
	local := sufficientLocal()
	broken := &fakeSource{
		kind:    state.SourceKnowledgeBase,
		enabled: true,
		err:     errors.New("index offline"),
	}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{local, broken}, web)

	resp, err := o.Run(context.Background(), "uva vpn setup", uuid.New(), Options{VerboseTrace: true})
	require.NoError(t, err, "a failing source must never abort the run")

	var sawUnavailable bool
	for _, step := range resp.ReasoningSteps {
		if step.Stage == traceStageSourceUnavailable {
			sawUnavailable = true
			assert.Contains(t, step.Action, "index offline")
		}
	}
	assert.True(t, sawUnavailable, "source failure must be traced")
	assert.Len(t, resp.Sources, 3, "surviving sources still contribute")
}

func TestRunFirstWaveOrderIndependentOfCompletion(t *testing.T) {
	// The slower source comes first in kind order; its results must still
	// lead the compiled sources.
	model := &fakeLLM{qualityResponses: []string{qualityJSON(0.9)}}
	slowLocal := sufficientLocal()
	slowLocal.delay = 50 * time.Millisecond
	fastKB := &fakeSource{
		kind:    state.SourceKnowledgeBase,
		enabled: true,
		results: []state.RankedResult{rankedResult(state.SourceKnowledgeBase, "kb://1", 0.9)},
	}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{slowLocal, fastKB}, web)

	resp, err := o.Run(context.Background(), "uva question about my thesis", uuid.New(), Options{})
	require.NoError(t, err)

	require.Len(t, resp.Sources, 4)
	assert.Equal(t, state.SourceLocalDocument, resp.Sources[0].Kind)
	assert.Equal(t, state.SourceKnowledgeBase, resp.Sources[3].Kind)
}

func TestRunGenerationFailureYieldsPlaceholder(t *testing.T) {
	model := &fakeLLM{chatErr: errors.New("model unavailable")}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{sufficientLocal()}, web)

	resp, err := o.Run(context.Background(), "q", uuid.New(), Options{VerboseTrace: true})
	require.NoError(t, err, "generation failure must not surface as a run error")

	assert.Equal(t, constant.ApologyAnswer, resp.Answer)
	assert.Equal(t, 0.0, resp.Confidence)

	stages := traceStages(resp.ReasoningSteps)
	assert.Equal(t, string(StageDone), stages[len(stages)-1])
	assert.NotContains(t, stages, string(StageEvaluatingQuality))
}

func TestRunDisabledSourceIsSkipped(t *testing.T) {
	model := &fakeLLM{qualityResponses: []string{qualityJSON(0.9)}}
	gated := &fakeSource{
		kind:    state.SourceCodeRepository,
		enabled: false,
		results: []state.RankedResult{rankedResult(state.SourceCodeRepository, "owner/repo", 0.8)},
	}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{sufficientLocal(), gated}, web)

	resp, err := o.Run(context.Background(), "plain question", uuid.New(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, gated.callCount())
	for _, s := range resp.Sources {
		assert.NotEqual(t, state.SourceCodeRepository, s.Kind)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	model := &fakeLLM{}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{sufficientLocal()}, web)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, "q", uuid.New(), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunTraceSuppressedWithoutVerbose(t *testing.T) {
	model := &fakeLLM{qualityResponses: []string{qualityJSON(0.9)}}
	web := &fakeSource{kind: state.SourceWeb, enabled: true}
	o := newTestOrchestrator(model, []source.RetrievalSource{sufficientLocal()}, web)

	resp, err := o.Run(context.Background(), "q", uuid.New(), Options{VerboseTrace: false})
	require.NoError(t, err)
	assert.Empty(t, resp.ReasoningSteps)
}
