package mapper

import (
	"time"

	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/model"
)

type GitHubMapper struct{}

func NewGitHubMapper() *GitHubMapper {
	return &GitHubMapper{}
}

func (m *GitHubMapper) ToEntity(c *model.GitHubConnection) *entity.GitHubConnection {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.GitHubConnection{
		Id:          c.Id,
		UserId:      c.UserId,
		GitHubLogin: c.GitHubLogin,
		AccessToken: c.AccessToken,
		Scopes:      c.Scopes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *GitHubMapper) ToModel(c *entity.GitHubConnection) *model.GitHubConnection {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.GitHubConnection{
		Id:          c.Id,
		UserId:      c.UserId,
		GitHubLogin: c.GitHubLogin,
		AccessToken: c.AccessToken,
		Scopes:      c.Scopes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}
