package state

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies which retrieval source produced a result.
type SourceKind string

const (
	SourceLocalDocument  SourceKind = "local_document"
	SourceKnowledgeBase  SourceKind = "knowledge_base"
	SourceCodeRepository SourceKind = "code_repository"
	SourceWeb            SourceKind = "web"
)

// KindOrder is the fixed order used for context assembly and source
// compilation. Never re-ordered at synthesis time.
var KindOrder = []SourceKind{
	SourceLocalDocument,
	SourceKnowledgeBase,
	SourceCodeRepository,
	SourceWeb,
}

// RankedResult is one piece of evidence returned by a retrieval source.
// Immutable once produced.
type RankedResult struct {
	Kind           SourceKind `json:"kind"`
	Title          string     `json:"title"`
	Snippet        string     `json:"snippet"`
	Locator        string     `json:"locator"` // page ref, URL or repo path
	RelevanceScore float64    `json:"relevance_score"`
}

// CandidateAnswer is one generated answer attempt with quality scores.
// Immutable once appended to the run state.
type CandidateAnswer struct {
	Text         string         `json:"text"`
	SourcesCited []RankedResult `json:"sources_cited"`
	Completeness float64        `json:"completeness"`
	Accuracy     float64        `json:"accuracy"`
	Clarity      float64        `json:"clarity"`
	Confidence   float64        `json:"confidence"`
}

// TraceStep is one append-only audit entry. Every stage transition records
// exactly one.
type TraceStep struct {
	Stage     string    `json:"stage"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// RunState is the single mutable record threaded through one pipeline
// execution. It is owned exclusively by the orchestrator for the lifetime of
// one request and discarded once the response is assembled.
type RunState struct {
	Question  string
	UserScope uuid.UUID

	Iteration     int
	MaxIterations int

	ResultsBySource  map[SourceKind][]RankedResult
	CandidateAnswers []CandidateAnswer
	ReasoningTrace   []TraceStep

	FinalAnswer *CandidateAnswer
}

// NewRunState creates a fresh state for one question.
func NewRunState(question string, userScope uuid.UUID, maxIterations int) *RunState {
	return &RunState{
		Question:        question,
		UserScope:       userScope,
		MaxIterations:   maxIterations,
		ResultsBySource: make(map[SourceKind][]RankedResult),
	}
}

// AppendResults adds a retrieval pass for one source. Insertion order is the
// source's own relevance order and is preserved.
func (s *RunState) AppendResults(kind SourceKind, results []RankedResult) {
	if len(results) == 0 {
		return
	}
	s.ResultsBySource[kind] = append(s.ResultsBySource[kind], results...)
}

// AppendAnswer records one generation pass. Prior answers are never mutated.
func (s *RunState) AppendAnswer(answer CandidateAnswer) {
	s.CandidateAnswers = append(s.CandidateAnswers, answer)
}

// Trace appends one audit entry for the named stage.
func (s *RunState) Trace(stage, action string) {
	s.ReasoningTrace = append(s.ReasoningTrace, TraceStep{
		Stage:     stage,
		Action:    action,
		Timestamp: time.Now().UTC(),
	})
}

// LatestAnswer returns the most recent generation pass, or nil before the
// first one.
func (s *RunState) LatestAnswer() *CandidateAnswer {
	if len(s.CandidateAnswers) == 0 {
		return nil
	}
	return &s.CandidateAnswers[len(s.CandidateAnswers)-1]
}

// FirstWaveResults returns the results of the three first-wave sources in
// fixed kind order. Web results are excluded.
func (s *RunState) FirstWaveResults() []RankedResult {
	var all []RankedResult
	for _, kind := range []SourceKind{SourceLocalDocument, SourceKnowledgeBase, SourceCodeRepository} {
		all = append(all, s.ResultsBySource[kind]...)
	}
	return all
}

// AllResults returns every retrieved result in fixed kind order.
func (s *RunState) AllResults() []RankedResult {
	var all []RankedResult
	for _, kind := range KindOrder {
		all = append(all, s.ResultsBySource[kind]...)
	}
	return all
}

// CompileSources deduplicates results across all kinds, preserving the fixed
// kind order and each source's own relevance order. Deduplication is by
// (kind, locator); scores are kept exactly as produced.
func (s *RunState) CompileSources() []RankedResult {
	seen := make(map[string]bool)
	var sources []RankedResult
	for _, r := range s.AllResults() {
		key := string(r.Kind) + "|" + r.Locator
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, r)
	}
	return sources
}
