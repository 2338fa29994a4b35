package companies

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores companies in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Company
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Company)}
}

func (r *MemoryRepo) Create(ctx context.Context, company Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[company.ID] = company
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.byID[id]
	if !ok {
		return Company{}, ErrNotFound
	}
	return company, nil
}

func (r *MemoryRepo) Update(ctx context.Context, company Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[company.ID]
	if !ok {
		return ErrNotFound
	}
	company.LogoURL, company.LogoKey, company.CreatedAt = cur.LogoURL, cur.LogoKey, cur.CreatedAt
	r.byID[company.ID] = company
	return nil
}

func (r *MemoryRepo) UpdateLogo(ctx context.Context, id, logoURL, logoKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	company.LogoURL = logoURL
	company.LogoKey = logoKey
	company.UpdatedAt = time.Now().UTC()
	r.byID[id] = company
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
