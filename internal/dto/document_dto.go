package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentRequest struct {
	Filename string `json:"filename" validate:"required,max=512"`
	Content  string `json:"content" validate:"required"`
}

type DocumentResponse struct {
	Id         uuid.UUID  `json:"id"`
	Filename   string     `json:"filename"`
	Status     string     `json:"status"`
	ChunkCount int        `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// IndexDocumentMessage is published when a document needs (re)indexing.
type IndexDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
