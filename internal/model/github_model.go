package model

import (
	"time"

	"github.com/google/uuid"
)

type GitHubConnection struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	GitHubLogin string    `gorm:"type:varchar(255)"`
	AccessToken string    `gorm:"type:text;not null"`
	Scopes      string    `gorm:"type:varchar(255)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (GitHubConnection) TableName() string {
	return "github_connections"
}
