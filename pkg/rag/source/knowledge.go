package source

import (
	"context"
	"time"

	"ai-research-assistant-be/internal/constant"
	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

// KnowledgeIndex is the vector-similarity store over the shared,
// admin-curated institutional corpus.
type KnowledgeIndex interface {
	Query(ctx context.Context, text string, topK int) ([]state.RankedResult, error)
}

// KnowledgeBaseSource searches institutional resources. Activated only when
// the question mentions institutional terms.
type KnowledgeBaseSource struct {
	index   KnowledgeIndex
	topK    int
	timeout time.Duration
}

func NewKnowledgeBaseSource(index KnowledgeIndex, topK int, timeout time.Duration) *KnowledgeBaseSource {
	return &KnowledgeBaseSource{index: index, topK: topK, timeout: timeout}
}

func (s *KnowledgeBaseSource) Kind() state.SourceKind { return state.SourceKnowledgeBase }

func (s *KnowledgeBaseSource) Enabled(question string) bool {
	return matchesAny(question, constant.KnowledgeBaseKeywords)
}

func (s *KnowledgeBaseSource) Retrieve(ctx context.Context, question string, userScope uuid.UUID) ([]state.RankedResult, error) {
	return retrieveBounded(ctx, s.timeout, s.topK, func(ctx context.Context) ([]state.RankedResult, error) {
		return s.index.Query(ctx, question, s.topK)
	})
}
