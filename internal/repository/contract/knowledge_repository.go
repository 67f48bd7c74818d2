package contract

import (
	"context"

	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type KnowledgeRepository interface {
	Create(ctx context.Context, resource *entity.KnowledgeResource) error
	Update(ctx context.Context, resource *entity.KnowledgeResource) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeResource, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeResource, error)
}

// ScoredKnowledgeChunk wraps a knowledge chunk with its similarity score.
type ScoredKnowledgeChunk struct {
	Chunk      *entity.KnowledgeChunk
	Similarity float64
}

type KnowledgeChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error
	DeleteByResourceId(ctx context.Context, resourceId uuid.UUID) error
	// SearchSimilarWithScore searches the shared knowledge base; no user
	// scoping, every caller reads the same corpus.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredKnowledgeChunk, error)
}
