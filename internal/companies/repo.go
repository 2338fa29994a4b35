package companies

import "context"

// Repo defines persistence operations for companies.
type Repo interface {
	Create(ctx context.Context, company Company) error
	GetByID(ctx context.Context, id string) (Company, error)
	Update(ctx context.Context, company Company) error
	UpdateLogo(ctx context.Context, id, logoURL, logoKey string) error
}
