package index

import (
	"context"
	"fmt"
	"log"

	"ai-research-assistant-be/internal/repository/specification"
	"ai-research-assistant-be/internal/repository/unitofwork"
	"ai-research-assistant-be/pkg/embedding"
	"ai-research-assistant-be/pkg/rag/state"
)

// KnowledgeBaseIndex serves the institutional-resources source over the
// shared knowledge corpus. No user scoping.
type KnowledgeBaseIndex struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	threshold         float64
	logger            *log.Logger
}

func NewKnowledgeBaseIndex(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	threshold float64,
	logger *log.Logger,
) *KnowledgeBaseIndex {
	return &KnowledgeBaseIndex{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		threshold:         threshold,
		logger:            logger,
	}
}

func (idx *KnowledgeBaseIndex) Query(ctx context.Context, text string, topK int) ([]state.RankedResult, error) {
	res, err := idx.embeddingProvider.Generate(text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := idx.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.KnowledgeChunkRepository().SearchSimilarWithScore(
		ctx, res.Embedding.Values, topK, idx.threshold)
	if err != nil {
		return nil, fmt.Errorf("search knowledge chunks: %w", err)
	}

	type resourceInfo struct {
		title   string
		locator string
	}
	resources := make(map[string]resourceInfo)

	var results []state.RankedResult
	for _, s := range scored {
		resKey := s.Chunk.ResourceId.String()
		info, ok := resources[resKey]
		if !ok {
			resource, err := uow.KnowledgeRepository().FindOne(ctx, specification.ByID{ID: s.Chunk.ResourceId})
			if err != nil {
				idx.logger.Printf("[WARN] Failed to resolve knowledge resource %s: %v", resKey, err)
			}
			if resource != nil {
				info = resourceInfo{title: resource.Title, locator: resource.SourceURL}
				if info.locator == "" {
					info.locator = "kb://" + resKey
				}
			} else {
				info = resourceInfo{title: "Knowledge Base", locator: "kb://" + resKey}
			}
			resources[resKey] = info
		}

		results = append(results, state.RankedResult{
			Kind:           state.SourceKnowledgeBase,
			Title:          info.title,
			Snippet:        s.Chunk.Content,
			Locator:        info.locator,
			RelevanceScore: s.Similarity,
		})
	}

	return results, nil
}
