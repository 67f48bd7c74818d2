package index

import (
	"context"
	"fmt"
	"log"

	"ai-research-assistant-be/internal/repository/specification"
	"ai-research-assistant-be/internal/repository/unitofwork"
	"ai-research-assistant-be/pkg/embedding"
	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

// LocalDocumentIndex serves the uploaded-documents source: it embeds the
// question and searches the user's document chunks in pgvector.
type LocalDocumentIndex struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	threshold         float64
	logger            *log.Logger
}

func NewLocalDocumentIndex(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	threshold float64,
	logger *log.Logger,
) *LocalDocumentIndex {
	return &LocalDocumentIndex{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		threshold:         threshold,
		logger:            logger,
	}
}

func (idx *LocalDocumentIndex) Query(ctx context.Context, userScope uuid.UUID, text string, topK int) ([]state.RankedResult, error) {
	res, err := idx.embeddingProvider.Generate(text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := idx.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(
		ctx, res.Embedding.Values, topK, userScope, idx.threshold)
	if err != nil {
		return nil, fmt.Errorf("search document chunks: %w", err)
	}

	// Resolve filenames once per document so locators are human readable.
	filenames := make(map[string]string)
	var results []state.RankedResult
	for _, s := range scored {
		docKey := s.Chunk.DocumentId.String()
		filename, ok := filenames[docKey]
		if !ok {
			doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: s.Chunk.DocumentId})
			if err != nil {
				idx.logger.Printf("[WARN] Failed to resolve document %s: %v", docKey, err)
			}
			if doc != nil {
				filename = doc.Filename
			} else {
				filename = docKey
			}
			filenames[docKey] = filename
		}

		results = append(results, state.RankedResult{
			Kind:           state.SourceLocalDocument,
			Title:          filename,
			Snippet:        s.Chunk.Content,
			Locator:        fmt.Sprintf("doc://%s#chunk-%d", filename, s.Chunk.ChunkIndex),
			RelevanceScore: s.Similarity,
		})
	}

	return results, nil
}
