package source

import (
	"context"
	"time"

	"ai-research-assistant-be/internal/constant"
	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

// CodeIndex searches a user's connected code-hosting account. An absent
// connection yields an empty result set, not an error.
type CodeIndex interface {
	Query(ctx context.Context, userScope uuid.UUID, question string, topK int) ([]state.RankedResult, error)
}

// CodeRepositorySource searches the user's repositories. Activated only when
// the question mentions code or repository terms.
type CodeRepositorySource struct {
	index   CodeIndex
	topK    int
	timeout time.Duration
}

func NewCodeRepositorySource(index CodeIndex, topK int, timeout time.Duration) *CodeRepositorySource {
	return &CodeRepositorySource{index: index, topK: topK, timeout: timeout}
}

func (s *CodeRepositorySource) Kind() state.SourceKind { return state.SourceCodeRepository }

func (s *CodeRepositorySource) Enabled(question string) bool {
	return matchesAny(question, constant.CodeRepositoryKeywords)
}

func (s *CodeRepositorySource) Retrieve(ctx context.Context, question string, userScope uuid.UUID) ([]state.RankedResult, error) {
	return retrieveBounded(ctx, s.timeout, s.topK, func(ctx context.Context) ([]state.RankedResult, error) {
		return s.index.Query(ctx, userScope, question, s.topK)
	})
}
