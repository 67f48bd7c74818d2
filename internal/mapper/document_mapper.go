package mapper

import (
	"time"

	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:         d.Id,
		UserId:     d.UserId,
		Filename:   d.Filename,
		Content:    d.Content,
		Status:     entity.DocumentStatus(d.Status),
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:         d.Id,
		UserId:     d.UserId,
		Filename:   d.Filename,
		Content:    d.Content,
		Status:     string(d.Status),
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ChunkToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	return &entity.DocumentChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *DocumentMapper) ChunkToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	return &model.DocumentChunk{
		Id:             c.Id,
		DocumentId:     c.DocumentId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
	}
}
