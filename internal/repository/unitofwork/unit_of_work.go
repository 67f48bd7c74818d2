package unitofwork

import (
	"context"

	"ai-research-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	KnowledgeRepository() contract.KnowledgeRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
	GitHubConnectionRepository() contract.GitHubConnectionRepository
	QueryRecordRepository() contract.QueryRecordRepository
}
