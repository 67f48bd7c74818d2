package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ai-research-assistant-be/internal/constant"
	"ai-research-assistant-be/pkg/rag/evaluate"
	"ai-research-assistant-be/pkg/rag/generate"
	"ai-research-assistant-be/pkg/rag/source"
	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidScope aborts a run whose user scope cannot identify a caller.
// Together with context cancellation it is the only error Run returns.
var ErrInvalidScope = errors.New("invalid user scope")

// DefaultMaxIterations bounds the generate-evaluate loop.
const DefaultMaxIterations = 3

// Options tune one run.
type Options struct {
	VerboseTrace  bool
	MaxIterations int
}

// Response is the structured outcome of one run. Degraded evidence shows up
// as lower confidence and fewer sources, never as an error.
type Response struct {
	Answer         string
	Confidence     float64
	Sources        []state.RankedResult
	ReasoningSteps []state.TraceStep
	IterationsUsed int
}

// Orchestrator sequences retrieval, evaluation, generation and synthesis
// over a run-local state object. It is safe for concurrent use: all mutable
// state lives in the RunState created per call.
type Orchestrator struct {
	firstWave []source.RetrievalSource
	web       source.RetrievalSource

	analyzer    *Analyzer
	sufficiency *evaluate.SufficiencyEvaluator
	quality     *evaluate.QualityEvaluator
	generator   *generate.Generator

	logger        *log.Logger
	maxIterations int
}

func NewOrchestrator(
	firstWave []source.RetrievalSource,
	web source.RetrievalSource,
	analyzer *Analyzer,
	sufficiency *evaluate.SufficiencyEvaluator,
	quality *evaluate.QualityEvaluator,
	generator *generate.Generator,
	logger *log.Logger,
	maxIterations int,
) *Orchestrator {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Orchestrator{
		firstWave:     firstWave,
		web:           web,
		analyzer:      analyzer,
		sufficiency:   sufficiency,
		quality:       quality,
		generator:     generator,
		logger:        logger,
		maxIterations: maxIterations,
	}
}

// Run executes the full pipeline for one question. Partial source failures
// degrade gracefully; only an invalid scope or caller cancellation aborts.
func (o *Orchestrator) Run(ctx context.Context, question string, userScope uuid.UUID, opts Options) (*Response, error) {
	if userScope == uuid.Nil {
		return nil, ErrInvalidScope
	}

	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = o.maxIterations
	}

	st := state.NewRunState(question, userScope, maxIterations)
	m := newStageMachine(st)

	o.logger.Printf("[PIPELINE] Run started: %s", truncate(question, 80))

	// Stage: analyze the question (best effort, never aborts).
	analysis := o.analyzer.Analyze(ctx, question)
	o.advance(m, StageAnalyzing, fmt.Sprintf(
		"analyzed question: complexity %d, type %s", analysis.Complexity, analysis.Type))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage: first retrieval wave, fanned out across the enabled sources.
	retrieved, unavailable := o.retrieveFirstWave(ctx, st)
	o.advance(m, StageRetrievingLocalWave, fmt.Sprintf(
		"first wave retrieved %d results (%d sources unavailable)", retrieved, unavailable))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage: sufficiency gate.
	verdict := o.sufficiency.Evaluate(st.FirstWaveResults())
	o.advance(m, StageEvaluatingSufficiency, fmt.Sprintf(
		"n=%d avgScore=%.2f needsWebSearch=%v: %s",
		verdict.ResultCount, verdict.AverageScore, verdict.NeedsWebSearch, verdict.Reason))

	needWeb := verdict.NeedsWebSearch
	webQuery := question
	generationFailed := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if needWeb {
			o.retrieveWeb(ctx, st, webQuery)
			o.advance(m, StageRetrievingWeb, fmt.Sprintf(
				"web search retrieved %d results total", len(st.ResultsBySource[state.SourceWeb])))
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Stage: generate a candidate answer from everything retrieved.
		candidate, ok := o.generator.Generate(ctx, question, st.ResultsBySource, nil)
		if !ok {
			// Zero-confidence placeholder, forced accept. The run still
			// terminates through synthesis.
			st.AppendAnswer(candidate)
			o.advance(m, StageGenerating, "generation failed, substituting placeholder answer")
			generationFailed = true
			break
		}
		o.advance(m, StageGenerating, fmt.Sprintf(
			"generated candidate answer with %d citations", len(candidate.SourcesCited)))

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Stage: quality gate.
		scores := o.quality.Score(ctx, question, candidate.Text, len(candidate.SourcesCited), st.AllResults())
		candidate.Completeness = scores.Completeness
		candidate.Accuracy = scores.Accuracy
		candidate.Clarity = scores.Clarity
		candidate.Confidence = scores.Confidence()
		st.AppendAnswer(candidate)

		if o.quality.Accept(candidate.Confidence, st.Iteration, maxIterations) {
			o.advance(m, StageEvaluatingQuality, fmt.Sprintf(
				"accepted answer with confidence %.2f", candidate.Confidence))
			break
		}

		o.advance(m, StageEvaluatingQuality, fmt.Sprintf(
			"confidence %.2f below threshold, iterating", candidate.Confidence))

		st.Iteration++
		o.advance(m, StageIterating, fmt.Sprintf(
			"iteration %d of %d", st.Iteration, maxIterations))

		needWeb = true
		webQuery = question + constant.WebQueryVariantSuffix
	}

	// Stage: synthesis. The latest candidate becomes the final answer and
	// sources are compiled across all kinds without re-ranking.
	final := *st.LatestAnswer()
	st.FinalAnswer = &final
	sources := st.CompileSources()

	synthNote := fmt.Sprintf("compiled final answer and %d sources", len(sources))
	if generationFailed {
		synthNote = fmt.Sprintf("compiled placeholder answer and %d sources after generation failure", len(sources))
	}
	o.advance(m, StageSynthesizing, synthNote)
	o.advance(m, StageDone, fmt.Sprintf("run complete after %d iterations", st.Iteration))

	resp := &Response{
		Answer:         final.Text,
		Confidence:     final.Confidence,
		Sources:        sources,
		IterationsUsed: st.Iteration,
	}
	if opts.VerboseTrace {
		resp.ReasoningSteps = st.ReasoningTrace
	}

	return resp, nil
}

// retrieveFirstWave fans the enabled first-wave sources out concurrently and
// collects their results in fixed kind order once all have returned or timed
// out. A failing source is logged into the trace and excluded; it never
// cancels its siblings.
func (o *Orchestrator) retrieveFirstWave(ctx context.Context, st *state.RunState) (retrieved, unavailable int) {
	type waveSlot struct {
		kind    state.SourceKind
		results []state.RankedResult
		err     error
	}

	var enabled []source.RetrievalSource
	for _, src := range o.firstWave {
		if src.Enabled(st.Question) {
			enabled = append(enabled, src)
		}
	}

	slots := make([]waveSlot, len(enabled))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range enabled {
		g.Go(func() error {
			results, err := src.Retrieve(gctx, st.Question, st.UserScope)
			slots[i] = waveSlot{kind: src.Kind(), results: results, err: err}
			// Retrieval failures are non-fatal; never propagate them into
			// the group so the other sources keep running.
			return nil
		})
	}
	_ = g.Wait()

	// Merge in fixed kind order so the outcome is independent of
	// completion order.
	for _, kind := range state.KindOrder {
		for _, slot := range slots {
			if slot.kind != kind {
				continue
			}
			if slot.err != nil {
				unavailable++
				st.Trace(traceStageSourceUnavailable, fmt.Sprintf(
					"%s source unavailable: %v", slot.kind, slot.err))
				o.logger.Printf("[WARN] %s retrieval failed: %v", slot.kind, slot.err)
				continue
			}
			st.AppendResults(kind, slot.results)
			retrieved += len(slot.results)
		}
	}

	return retrieved, unavailable
}

func (o *Orchestrator) retrieveWeb(ctx context.Context, st *state.RunState, query string) {
	results, err := o.web.Retrieve(ctx, query, st.UserScope)
	if err != nil {
		st.Trace(traceStageSourceUnavailable, fmt.Sprintf(
			"%s source unavailable: %v", state.SourceWeb, err))
		o.logger.Printf("[WARN] web retrieval failed: %v", err)
		return
	}
	st.AppendResults(state.SourceWeb, results)
}

// advance moves the stage machine. An illegal transition is a programming
// error in the pipeline itself; it is logged rather than surfaced because
// the run contract guarantees the caller always gets a response.
func (o *Orchestrator) advance(m *stageMachine, to Stage, action string) {
	if err := m.Advance(to, action); err != nil {
		o.logger.Printf("[ERROR] %v", err)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
