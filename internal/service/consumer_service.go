package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-research-assistant-be/internal/dto"
	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/repository/specification"
	"ai-research-assistant-be/internal/repository/unitofwork"
	"ai-research-assistant-be/pkg/embedding"
	"ai-research-assistant-be/pkg/events"
	pkgNats "ai-research-assistant-be/pkg/nats"
	"ai-research-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	// ChunkSize keeps each embedded slice well inside embedding context
	// limits; overlap preserves continuity across boundaries.
	chunkSize    = 1500
	chunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	indexTopic        string
	queryRecordTopic  string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	natsPub           *pkgNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	indexTopic string,
	queryRecordTopic string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	natsPub *pkgNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		indexTopic:        indexTopic,
		queryRecordTopic:  queryRecordTopic,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		natsPub:           natsPub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	indexMessages, err := cs.pubSub.Subscribe(ctx, cs.indexTopic)
	if err != nil {
		return err
	}
	recordMessages, err := cs.pubSub.Subscribe(ctx, cs.queryRecordTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range indexMessages {
			cs.processIndexDocument(ctx, msg)
		}
	}()
	go func() {
		for msg := range recordMessages {
			cs.processQueryRecord(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processIndexDocument(ctx context.Context, msg *message.Message) {
	var payload dto.IndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal index message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing document %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to load document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if doc == nil {
		log.Printf("[WARN] Document not found, probably deleted: %s", payload.DocumentId)
		msg.Ack()
		return
	}

	chunks := utils.SplitText(doc.Content, chunkSize, chunkOverlap)
	log.Printf("[INFO] Document %s split into %d chunks", doc.Id, len(chunks))

	var newChunks []*entity.DocumentChunk
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", i, doc.Id, err)
			cs.markDocumentStatus(ctx, doc, entity.DocumentStatusFailed)
			msg.Nack()
			return
		}
		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			DocumentId:     doc.Id,
			ChunkIndex:     i,
			Content:        chunk,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		log.Printf("[ERROR] Failed to store chunks: %v", err)
		msg.Nack()
		return
	}

	doc.Status = entity.DocumentStatusIndexed
	doc.ChunkCount = len(newChunks)
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		log.Printf("[ERROR] Failed to update document status: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Document indexed: %d chunks for %s", len(newChunks), doc.Id)
	msg.Ack()
}

func (cs *consumerService) processQueryRecord(ctx context.Context, msg *message.Message) {
	var payload dto.RecordQueryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal query record message: %v", err)
		msg.Ack()
		return
	}

	sources, err := json.Marshal(payload.Sources)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal sources: %v", err)
		msg.Ack()
		return
	}
	trace, err := json.Marshal(payload.ReasoningSteps)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal trace: %v", err)
		msg.Ack()
		return
	}

	record := &entity.QueryRecord{
		Id:             uuid.New(),
		UserId:         payload.UserId,
		Question:       payload.Question,
		Answer:         payload.Answer,
		Confidence:     payload.Confidence,
		IterationsUsed: payload.IterationsUsed,
		Sources:        sources,
		ReasoningTrace: trace,
		CreatedAt:      time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QueryRecordRepository().Create(ctx, record); err != nil {
		log.Printf("[ERROR] Failed to persist query record: %v", err)
		msg.Nack()
		return
	}

	// Mirror to NATS for downstream consumers (analytics, audit).
	if cs.natsPub != nil {
		event := events.BaseEvent{
			Type: "QUERY_ANSWERED",
			Data: map[string]interface{}{
				"record_id":       record.Id.String(),
				"user_id":         record.UserId.String(),
				"confidence":      record.Confidence,
				"iterations_used": record.IterationsUsed,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish QUERY_ANSWERED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Query record persisted for user %s", record.UserId)
	msg.Ack()
}

func (cs *consumerService) markDocumentStatus(ctx context.Context, doc *entity.Document, status entity.DocumentStatus) {
	doc.Status = status
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as %s: %v", doc.Id, status, err)
	}
}
