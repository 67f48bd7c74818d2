package implementation

import (
	"context"

	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/mapper"
	"ai-research-assistant-be/internal/model"
	"ai-research-assistant-be/internal/repository/contract"
	"ai-research-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type QueryRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QueryRecordMapper
}

func NewQueryRecordRepository(db *gorm.DB) contract.QueryRecordRepository {
	return &QueryRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewQueryRecordMapper(),
	}
}

func (r *QueryRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QueryRecordRepositoryImpl) Create(ctx context.Context, record *entity.QueryRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *QueryRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error) {
	var models []*model.QueryRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QueryRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *QueryRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.QueryRecord{}).Count(&count).Error
	return count, err
}
