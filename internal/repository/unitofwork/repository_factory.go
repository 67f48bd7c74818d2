package unitofwork

import "context"

// RepositoryFactory hands out a fresh unit of work per request or per
// pipeline run.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
