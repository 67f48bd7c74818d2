package service

import (
	"context"
	"errors"
	"log"
	"time"

	"ai-research-assistant-be/internal/dto"
	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/repository/specification"
	"ai-research-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("document not found")

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, req dto.UploadDocumentRequest) (*dto.DocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]dto.DocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, publisher IPublisherService) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Upload stores the document and queues it for chunking and embedding. The
// document is searchable once the consumer marks it indexed.
func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, req dto.UploadDocumentRequest) (*dto.DocumentResponse, error) {
	doc := &entity.Document{
		Id:        uuid.New(),
		UserId:    userId,
		Filename:  req.Filename,
		Content:   req.Content,
		Status:    entity.DocumentStatusPending,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishIndexDocument(dto.IndexDocumentMessage{DocumentId: doc.Id}); err != nil {
		log.Printf("[ERROR] Failed to queue document %s for indexing: %v", doc.Id, err)
	}

	return toDocumentResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.NewestFirst{},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = *toDocumentResponse(d)
	}
	return responses, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:         d.Id,
		Filename:   d.Filename,
		Status:     string(d.Status),
		ChunkCount: d.ChunkCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
