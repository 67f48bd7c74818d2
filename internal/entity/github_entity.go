package entity

import (
	"time"

	"github.com/google/uuid"
)

// GitHubConnection stores the OAuth token a user linked for repository
// retrieval. One row per user; relinking overwrites the token.
type GitHubConnection struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	GitHubLogin string
	AccessToken string
	Scopes      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
