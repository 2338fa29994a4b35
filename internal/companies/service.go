package companies

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"petition-backend/internal/shared/apperror"
)

// Settings are the user-editable company fields.
type Settings struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

func (s Settings) normalized() (Settings, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.TaxID = strings.TrimSpace(s.TaxID)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
	if s.Name == "" || s.TaxID == "" {
		return s, apperror.Validation("Nome e CNPJ são obrigatórios")
	}
	return s, nil
}

// Service contains business logic for companies.
type Service struct {
	Repo Repo
}

// Create registers a new company.
func (s *Service) Create(ctx context.Context, in Settings) (Company, error) {
	in, err := in.normalized()
	if err != nil {
		return Company{}, err
	}
	now := time.Now().UTC()
	company := Company{
		ID:        uuid.NewString(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

// Get returns a company by ID.
func (s *Service) Get(ctx context.Context, id string) (Company, error) {
	if strings.TrimSpace(id) == "" {
		return Company{}, apperror.Validation("company id required")
	}
	return s.Repo.GetByID(ctx, id)
}

// Update replaces the company settings and returns the stored company.
func (s *Service) Update(ctx context.Context, id string, in Settings) (Company, error) {
	in, err := in.normalized()
	if err != nil {
		return Company{}, err
	}
	company, err := s.Get(ctx, id)
	if err != nil {
		return Company{}, err
	}
	company.Name = in.Name
	company.TaxID = in.TaxID
	company.Email = in.Email
	company.Phone = in.Phone
	company.Address = in.Address
	company.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}

// SetLogo records the stored logo object for a company.
func (s *Service) SetLogo(ctx context.Context, id, logoURL, logoKey string) error {
	return s.Repo.UpdateLogo(ctx, id, logoURL, logoKey)
}
