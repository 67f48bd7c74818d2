package implementation

import (
	"context"
	"errors"

	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/mapper"
	"ai-research-assistant-be/internal/model"
	"ai-research-assistant-be/internal/repository/contract"
	"ai-research-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeRepository(db *gorm.DB) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeRepositoryImpl) Create(ctx context.Context, resource *entity.KnowledgeResource) error {
	m := r.mapper.ToModel(resource)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*resource = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeRepositoryImpl) Update(ctx context.Context, resource *entity.KnowledgeResource) error {
	m := r.mapper.ToModel(resource)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*resource = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeResource{}, id).Error
}

func (r *KnowledgeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeResource, error) {
	var m model.KnowledgeResource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KnowledgeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeResource, error) {
	var models []*model.KnowledgeResource
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeResource, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

type KnowledgeChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeChunkRepository(db *gorm.DB) contract.KnowledgeChunkRepository {
	return &KnowledgeChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *KnowledgeChunkRepositoryImpl) DeleteByResourceId(ctx context.Context, resourceId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("resource_id = ?", resourceId).Delete(&model.KnowledgeChunk{}).Error
}

func (r *KnowledgeChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgeChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KnowledgeChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_chunks").
		Select("knowledge_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("knowledge_chunks.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKnowledgeChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKnowledgeChunk{
			Chunk:      r.mapper.ChunkToEntity(&res.KnowledgeChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
