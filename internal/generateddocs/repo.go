package generateddocs

import "context"

// Repo defines persistence for generated documents.
type Repo interface {
	Create(ctx context.Context, doc GeneratedDocument) error
	GetByID(ctx context.Context, id string) (GeneratedDocument, error)
	ListByCase(ctx context.Context, caseID string) ([]GeneratedDocument, error)
}
