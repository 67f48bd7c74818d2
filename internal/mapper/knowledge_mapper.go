package mapper

import (
	"time"

	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(r *model.KnowledgeResource) *entity.KnowledgeResource {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.KnowledgeResource{
		Id:        r.Id,
		Title:     r.Title,
		Content:   r.Content,
		SourceURL: r.SourceURL,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *KnowledgeMapper) ToModel(r *entity.KnowledgeResource) *model.KnowledgeResource {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.KnowledgeResource{
		Id:        r.Id,
		Title:     r.Title,
		Content:   r.Content,
		SourceURL: r.SourceURL,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *KnowledgeMapper) ChunkToEntity(c *model.KnowledgeChunk) *entity.KnowledgeChunk {
	if c == nil {
		return nil
	}
	return &entity.KnowledgeChunk{
		Id:             c.Id,
		ResourceId:     c.ResourceId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *KnowledgeMapper) ChunkToModel(c *entity.KnowledgeChunk) *model.KnowledgeChunk {
	if c == nil {
		return nil
	}
	return &model.KnowledgeChunk{
		Id:             c.Id,
		ResourceId:     c.ResourceId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
	}
}
