package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeResource is one entry in the shared institutional knowledge base.
// Unlike documents these are not scoped to a user; every run may read them.
type KnowledgeResource struct {
	Id        uuid.UUID
	Title     string
	Content   string
	SourceURL string
	Category  string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// KnowledgeChunk is one embedded slice of a knowledge resource.
type KnowledgeChunk struct {
	Id             uuid.UUID
	ResourceId     uuid.UUID
	ChunkIndex     int
	Content        string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
