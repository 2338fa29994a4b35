package documents

import (
	"context"
	"strings"

	"petition-backend/internal/shared/apperror"
)

// Service exposes read access to source documents. Writes go through the
// upload orchestrator so storage and metadata stay paired.
type Service struct {
	Repo Repo
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (SourceDocument, error) {
	if strings.TrimSpace(id) == "" {
		return SourceDocument{}, apperror.Validation("document id required")
	}
	return s.Repo.GetByID(ctx, id)
}

// ListByCase returns a case's documents ordered newest-first.
func (s *Service) ListByCase(ctx context.Context, caseID string) ([]SourceDocument, error) {
	return s.Repo.ListByCase(ctx, caseID)
}
