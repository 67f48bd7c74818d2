package source

import (
	"context"
	"time"

	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

// DocumentIndex is the vector-similarity store over one user's uploaded
// documents. Implemented outside the pipeline.
type DocumentIndex interface {
	Query(ctx context.Context, userScope uuid.UUID, text string, topK int) ([]state.RankedResult, error)
}

// LocalDocumentSource searches the user's own document corpus. Always
// enabled.
type LocalDocumentSource struct {
	index   DocumentIndex
	topK    int
	timeout time.Duration
}

func NewLocalDocumentSource(index DocumentIndex, topK int, timeout time.Duration) *LocalDocumentSource {
	return &LocalDocumentSource{index: index, topK: topK, timeout: timeout}
}

func (s *LocalDocumentSource) Kind() state.SourceKind { return state.SourceLocalDocument }

func (s *LocalDocumentSource) Enabled(question string) bool { return true }

func (s *LocalDocumentSource) Retrieve(ctx context.Context, question string, userScope uuid.UUID) ([]state.RankedResult, error) {
	return retrieveBounded(ctx, s.timeout, s.topK, func(ctx context.Context) ([]state.RankedResult, error) {
		return s.index.Query(ctx, userScope, question, s.topK)
	})
}
