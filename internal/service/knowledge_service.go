package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-research-assistant-be/internal/dto"
	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/repository/specification"
	"ai-research-assistant-be/internal/repository/unitofwork"
	"ai-research-assistant-be/pkg/embedding"
	"ai-research-assistant-be/pkg/utils"

	"github.com/google/uuid"
)

type IKnowledgeService interface {
	Create(ctx context.Context, req dto.CreateKnowledgeResourceRequest) (*dto.KnowledgeResourceResponse, error)
	List(ctx context.Context) ([]dto.KnowledgeResourceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type knowledgeService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewKnowledgeService(uowFactory unitofwork.RepositoryFactory, embeddingProvider embedding.EmbeddingProvider) IKnowledgeService {
	return &knowledgeService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

// Create stores and indexes a knowledge resource in one call. This is an
// admin operation so the synchronous embedding cost is acceptable.
func (s *knowledgeService) Create(ctx context.Context, req dto.CreateKnowledgeResourceRequest) (*dto.KnowledgeResourceResponse, error) {
	resource := &entity.KnowledgeResource{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		SourceURL: req.SourceURL,
		Category:  req.Category,
		CreatedAt: time.Now(),
	}

	chunks := utils.SplitText(req.Content, chunkSize, chunkOverlap)
	var newChunks []*entity.KnowledgeChunk
	for i, chunk := range chunks {
		res, err := s.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		newChunks = append(newChunks, &entity.KnowledgeChunk{
			Id:             uuid.New(),
			ResourceId:     resource.Id,
			ChunkIndex:     i,
			Content:        chunk,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.KnowledgeRepository().Create(ctx, resource); err != nil {
		return nil, err
	}
	if err := uow.KnowledgeChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Knowledge resource %s indexed with %d chunks", resource.Id, len(newChunks))

	return toKnowledgeResponse(resource), nil
}

func (s *knowledgeService) List(ctx context.Context) ([]dto.KnowledgeResourceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	resources, err := uow.KnowledgeRepository().FindAll(ctx, specification.NewestFirst{})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.KnowledgeResourceResponse, len(resources))
	for i, r := range resources {
		responses[i] = *toKnowledgeResponse(r)
	}
	return responses, nil
}

func (s *knowledgeService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.KnowledgeChunkRepository().DeleteByResourceId(ctx, id); err != nil {
		return err
	}
	if err := uow.KnowledgeRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func toKnowledgeResponse(r *entity.KnowledgeResource) *dto.KnowledgeResourceResponse {
	return &dto.KnowledgeResourceResponse{
		Id:        r.Id,
		Title:     r.Title,
		SourceURL: r.SourceURL,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
	}
}
