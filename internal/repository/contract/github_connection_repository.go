package contract

import (
	"context"

	"ai-research-assistant-be/internal/entity"

	"github.com/google/uuid"
)

type GitHubConnectionRepository interface {
	// Upsert stores the connection, replacing any prior token for the user.
	Upsert(ctx context.Context, conn *entity.GitHubConnection) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.GitHubConnection, error)
	DeleteByUserId(ctx context.Context, userId uuid.UUID) error
}
