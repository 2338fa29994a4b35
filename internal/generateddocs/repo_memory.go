package generateddocs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores generated documents in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]GeneratedDocument
	byCase map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]GeneratedDocument),
		byCase: make(map[string][]string),
	}
}

// Create stores the generated document.
func (r *MemoryRepo) Create(ctx context.Context, doc GeneratedDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	r.byCase[doc.CaseID] = append(r.byCase[doc.CaseID], doc.ID)
	return nil
}

// GetByID returns a generated document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (GeneratedDocument, error) {
	if err := ctx.Err(); err != nil {
		return GeneratedDocument{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[id]
	if !ok {
		return GeneratedDocument{}, ErrNotFound
	}
	return doc, nil
}

// ListByCase returns a case's generated documents, newest first.
func (r *MemoryRepo) ListByCase(ctx context.Context, caseID string) ([]GeneratedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]GeneratedDocument, 0, len(r.byCase[caseID]))
	for _, id := range r.byCase[caseID] {
		out = append(out, r.byID[id])
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
