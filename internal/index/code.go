package index

import (
	"context"

	"ai-research-assistant-be/internal/repository/unitofwork"
	"ai-research-assistant-be/pkg/github"
	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

// CodeRepositoryIndex serves the repository source through the GitHub REST
// client, using the token the user linked via OAuth.
type CodeRepositoryIndex struct {
	client *github.Client
}

func NewCodeRepositoryIndex(client *github.Client) *CodeRepositoryIndex {
	return &CodeRepositoryIndex{client: client}
}

func (idx *CodeRepositoryIndex) Query(ctx context.Context, userScope uuid.UUID, question string, topK int) ([]state.RankedResult, error) {
	return idx.client.Search(ctx, question, userScope.String(), topK)
}

// ConnectionTokenResolver resolves stored GitHub tokens from the database.
// It satisfies github.TokenResolver.
type ConnectionTokenResolver struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConnectionTokenResolver(uowFactory unitofwork.RepositoryFactory) *ConnectionTokenResolver {
	return &ConnectionTokenResolver{uowFactory: uowFactory}
}

func (r *ConnectionTokenResolver) AccessToken(ctx context.Context, userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", err
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	conn, err := uow.GitHubConnectionRepository().FindByUserId(ctx, id)
	if err != nil {
		return "", err
	}
	if conn == nil {
		return "", nil
	}
	return conn.AccessToken, nil
}
