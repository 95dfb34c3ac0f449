package opportunity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
)

// Repository is the card store the pipeline engine works against. Reads must
// reflect preceding writes; the engine performs its read-validate-write
// sequence against this interface under its own per-card serialization.
type Repository interface {
	// Get returns the card with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Card, error)

	// Create inserts a new card.
	Create(ctx context.Context, card *Card) error

	// Save overwrites the stored card in a single atomic write.
	Save(ctx context.Context, card *Card) error

	// ListOpen returns all cards with status open.
	ListOpen(ctx context.Context) ([]Card, error)
}

// MemoryRepository is an in-process Repository used by tests and the demo
// seed. It hands out copies so callers cannot mutate stored state without an
// explicit Save.
type MemoryRepository struct {
	mu    sync.RWMutex
	cards map[string]*Card
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{cards: make(map[string]*Card)}
}

// Get returns the card with the given id.
func (r *MemoryRepository) Get(ctx context.Context, id string) (*Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %q: %w", id, verrors.ErrNotFound)
	}
	return card.Clone(), nil
}

// Create inserts a new card.
func (r *MemoryRepository) Create(ctx context.Context, card *Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cards[card.ID]; exists {
		return fmt.Errorf("card %q already exists: %w", card.ID, verrors.ErrInvalidState)
	}
	r.cards[card.ID] = card.Clone()
	return nil
}

// Save overwrites the stored card.
func (r *MemoryRepository) Save(ctx context.Context, card *Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[card.ID]; !ok {
		return fmt.Errorf("card %q: %w", card.ID, verrors.ErrNotFound)
	}
	r.cards[card.ID] = card.Clone()
	return nil
}

// ListOpen returns all open cards ordered by creation time, oldest first.
func (r *MemoryRepository) ListOpen(ctx context.Context) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Card
	for _, card := range r.cards {
		if card.Status == StatusOpen {
			out = append(out, *card.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
