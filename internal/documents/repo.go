package documents

import "context"

// Repo defines persistence operations for source documents.
type Repo interface {
	Create(ctx context.Context, doc SourceDocument) error
	GetByID(ctx context.Context, id string) (SourceDocument, error)
	ListByCase(ctx context.Context, caseID string) ([]SourceDocument, error)
	Delete(ctx context.Context, id string) error
}
