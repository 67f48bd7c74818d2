package source

import (
	"context"
	"time"

	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

// WebSearcher is the external web-search service.
type WebSearcher interface {
	Search(ctx context.Context, text string, topK int) ([]state.RankedResult, error)
}

// WebSource performs web search. It is never part of the first wave; the
// orchestrator activates it only on the sufficiency evaluator's decision, so
// Enabled always reports true.
type WebSource struct {
	searcher WebSearcher
	topK     int
	timeout  time.Duration
}

func NewWebSource(searcher WebSearcher, topK int, timeout time.Duration) *WebSource {
	return &WebSource{searcher: searcher, topK: topK, timeout: timeout}
}

func (s *WebSource) Kind() state.SourceKind { return state.SourceWeb }

func (s *WebSource) Enabled(question string) bool { return true }

func (s *WebSource) Retrieve(ctx context.Context, question string, userScope uuid.UUID) ([]state.RankedResult, error) {
	return retrieveBounded(ctx, s.timeout, s.topK, func(ctx context.Context) ([]state.RankedResult, error) {
		return s.searcher.Search(ctx, question, s.topK)
	})
}
