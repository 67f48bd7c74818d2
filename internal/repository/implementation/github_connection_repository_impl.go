package implementation

import (
	"context"
	"errors"

	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/mapper"
	"ai-research-assistant-be/internal/model"
	"ai-research-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GitHubConnectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GitHubMapper
}

func NewGitHubConnectionRepository(db *gorm.DB) contract.GitHubConnectionRepository {
	return &GitHubConnectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewGitHubMapper(),
	}
}

func (r *GitHubConnectionRepositoryImpl) Upsert(ctx context.Context, conn *entity.GitHubConnection) error {
	m := r.mapper.ToModel(conn)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"github_login", "access_token", "scopes", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*conn = *r.mapper.ToEntity(m)
	return nil
}

func (r *GitHubConnectionRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.GitHubConnection, error) {
	var m model.GitHubConnection
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GitHubConnectionRepositoryImpl) DeleteByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.GitHubConnection{}).Error
}
