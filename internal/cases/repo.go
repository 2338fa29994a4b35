package cases

import "context"

// Repo defines persistence operations for cases.
type Repo interface {
	Create(ctx context.Context, c Case) error
	GetByID(ctx context.Context, id string) (Case, error)
	ListByCompany(ctx context.Context, companyID string) ([]Case, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
