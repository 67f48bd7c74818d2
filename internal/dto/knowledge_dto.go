package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateKnowledgeResourceRequest struct {
	Title     string `json:"title" validate:"required,max=512"`
	Content   string `json:"content" validate:"required"`
	SourceURL string `json:"source_url,omitempty" validate:"omitempty,url"`
	Category  string `json:"category,omitempty" validate:"omitempty,max=100"`
}

type KnowledgeResourceResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	SourceURL string    `json:"source_url,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
