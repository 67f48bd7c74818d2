package service

import (
	"context"
	"errors"
	"log"
	"time"

	"ai-research-assistant-be/internal/dto"
	"ai-research-assistant-be/internal/repository/memory"
	"ai-research-assistant-be/internal/repository/specification"
	"ai-research-assistant-be/internal/repository/unitofwork"
	"ai-research-assistant-be/pkg/rag/pipeline"
	"ai-research-assistant-be/pkg/rag/state"
	"ai-research-assistant-be/pkg/store"

	"github.com/google/uuid"
)

var ErrQuestionRequired = errors.New("question is required")

type IAssistantService interface {
	Ask(ctx context.Context, userId uuid.UUID, req dto.AskRequest) (*dto.AskResponse, error)
	History(ctx context.Context, userId uuid.UUID, limit int) ([]dto.QueryHistoryResponse, error)
}

type assistantService struct {
	orchestrator *pipeline.Orchestrator
	uowFactory   unitofwork.RepositoryFactory
	publisher    IPublisherService
	runCache     *memory.RunCache
}

func NewAssistantService(
	orchestrator *pipeline.Orchestrator,
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	runCache *memory.RunCache,
) IAssistantService {
	return &assistantService{
		orchestrator: orchestrator,
		uowFactory:   uowFactory,
		publisher:    publisher,
		runCache:     runCache,
	}
}

func (s *assistantService) Ask(ctx context.Context, userId uuid.UUID, req dto.AskRequest) (*dto.AskResponse, error) {
	if req.Question == "" {
		return nil, ErrQuestionRequired
	}

	cacheKey := userId.String() + "|" + req.Question
	if !req.Verbose {
		if cached, found := s.runCache.Get(cacheKey); found {
			log.Printf("[INFO] Serving cached answer for user %s", userId)
			return &dto.AskResponse{
				Answer:         cached.Answer,
				Confidence:     cached.Confidence,
				Sources:        toSourceDTOs(cached.Sources),
				IterationsUsed: cached.IterationsUsed,
				Cached:         true,
			}, nil
		}
	}

	result, err := s.orchestrator.Run(ctx, req.Question, userId, pipeline.Options{
		VerboseTrace:  true,
		MaxIterations: req.MaxIterations,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.AskResponse{
		Answer:         result.Answer,
		Confidence:     result.Confidence,
		Sources:        toSourceDTOs(result.Sources),
		IterationsUsed: result.IterationsUsed,
	}
	traceDTOs := toTraceDTOs(result.ReasoningSteps)
	if req.Verbose {
		resp.ReasoningSteps = traceDTOs
	}

	// Persist off the request path; a publish failure costs only history.
	if err := s.publisher.PublishQueryRecord(dto.RecordQueryMessage{
		UserId:         userId,
		Question:       req.Question,
		Answer:         resp.Answer,
		Confidence:     resp.Confidence,
		IterationsUsed: resp.IterationsUsed,
		Sources:        resp.Sources,
		ReasoningSteps: traceDTOs,
	}); err != nil {
		log.Printf("[WARN] Failed to publish query record: %v", err)
	}

	s.runCache.Save(&store.CachedRun{
		Key:            cacheKey,
		Answer:         resp.Answer,
		Confidence:     resp.Confidence,
		Sources:        result.Sources,
		IterationsUsed: resp.IterationsUsed,
		CachedAt:       time.Now(),
	})

	return resp, nil
}

func (s *assistantService) History(ctx context.Context, userId uuid.UUID, limit int) ([]dto.QueryHistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.QueryRecordRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.NewestFirst{},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	history := make([]dto.QueryHistoryResponse, len(records))
	for i, r := range records {
		history[i] = dto.QueryHistoryResponse{
			Id:             r.Id,
			Question:       r.Question,
			Answer:         r.Answer,
			Confidence:     r.Confidence,
			IterationsUsed: r.IterationsUsed,
			CreatedAt:      r.CreatedAt,
		}
	}
	return history, nil
}

func toSourceDTOs(sources []state.RankedResult) []dto.SourceDTO {
	dtos := make([]dto.SourceDTO, len(sources))
	for i, s := range sources {
		dtos[i] = dto.SourceDTO{
			Kind:           string(s.Kind),
			Title:          s.Title,
			Snippet:        s.Snippet,
			Locator:        s.Locator,
			RelevanceScore: s.RelevanceScore,
		}
	}
	return dtos
}

func toTraceDTOs(steps []state.TraceStep) []dto.TraceStepDTO {
	dtos := make([]dto.TraceStepDTO, len(steps))
	for i, s := range steps {
		dtos[i] = dto.TraceStepDTO{
			Stage:     s.Stage,
			Action:    s.Action,
			Timestamp: s.Timestamp,
		}
	}
	return dtos
}
