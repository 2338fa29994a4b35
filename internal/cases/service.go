package cases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"petition-backend/internal/companies"
	"petition-backend/internal/shared/apperror"
)

// CompanyReader resolves the owning company of a new case.
type CompanyReader interface {
	GetByID(ctx context.Context, id string) (companies.Company, error)
}

// NewCase is the input to Create.
type NewCase struct {
	Title         string
	ProcessNumber string
	Agency        string
	Description   string
}

// Service contains business logic for cases.
type Service struct {
	Repo      Repo
	Companies CompanyReader
}

// Create opens a new active case for a company.
func (s *Service) Create(ctx context.Context, companyID string, in NewCase) (Case, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ProcessNumber = strings.TrimSpace(in.ProcessNumber)
	in.Agency = strings.TrimSpace(in.Agency)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.ProcessNumber == "" || in.Agency == "" {
		return Case{}, apperror.Validation("Título, número do processo e órgão são obrigatórios")
	}
	if s.Companies != nil {
		if _, err := s.Companies.GetByID(ctx, companyID); err != nil {
			return Case{}, err
		}
	}

	now := time.Now().UTC()
	c := Case{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		Title:         in.Title,
		ProcessNumber: in.ProcessNumber,
		Agency:        in.Agency,
		Description:   in.Description,
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Case{}, err
	}
	return c, nil
}

// Get returns a case by ID.
func (s *Service) Get(ctx context.Context, id string) (Case, error) {
	if strings.TrimSpace(id) == "" {
		return Case{}, apperror.Validation("case id required")
	}
	return s.Repo.GetByID(ctx, id)
}

// ListByCompany returns a company's cases ordered newest-first.
func (s *Service) ListByCompany(ctx context.Context, companyID string) ([]Case, error) {
	return s.Repo.ListByCompany(ctx, companyID)
}

// UpdateStatus moves a case to status. Any transition is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Case, error) {
	if !status.Valid() {
		return Case{}, apperror.Validation("status must be one of active, archived, completed")
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return Case{}, err
	}
	return s.Repo.GetByID(ctx, id)
}
