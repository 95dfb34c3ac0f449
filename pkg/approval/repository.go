package approval

import (
	"context"
	"fmt"
	"sync"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
)

// Repository stores approval requests.
type Repository interface {
	Get(ctx context.Context, id string) (*Request, error)
	Create(ctx context.Context, req *Request) error
	Save(ctx context.Context, req *Request) error
	List(ctx context.Context, status Status) ([]Request, error)
}

// MemoryRepository is an in-memory Repository used by tests and by the CLI
// when no database is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*Request
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{requests: make(map[string]*Request)}
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("approval request %q: %w", id, verrors.ErrNotFound)
	}
	return req.Clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return fmt.Errorf("approval request %q already exists: %w", req.ID, verrors.ErrInvalidState)
	}
	r.requests[req.ID] = req.Clone()
	return nil
}

func (r *MemoryRepository) Save(ctx context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; !exists {
		return fmt.Errorf("approval request %q: %w", req.ID, verrors.ErrNotFound)
	}
	r.requests[req.ID] = req.Clone()
	return nil
}

// List returns requests with the given status, or all requests when status is
// empty.
func (r *MemoryRepository) List(ctx context.Context, status Status) ([]Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Request, 0, len(r.requests))
	for _, req := range r.requests {
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req.Clone())
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
