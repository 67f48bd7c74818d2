package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusIndexed DocumentStatus = "indexed"
	DocumentStatusFailed  DocumentStatus = "failed"
)

// Document is one file a user uploaded for retrieval.
type Document struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Filename   string
	Content    string
	Status     DocumentStatus
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// DocumentChunk is one embedded slice of a document. The embedding is stored
// in pgvector; chunks are replaced wholesale when a document is re-indexed.
type DocumentChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	ChunkIndex     int
	Content        string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
