package funnel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
)

// Registry is the read side of the funnel catalog, consumed by the pipeline
// engine. Implementations must tolerate stage lists changing between calls.
type Registry interface {
	ListFunnels(ctx context.Context) ([]Funnel, error)
	GetFunnel(ctx context.Context, id string) (*Funnel, error)
}

// Editor is the mutation side, used by the pipeline manager surface. The
// engine itself never mutates funnels.
type Editor interface {
	AddStage(ctx context.Context, funnelID string, stage Stage) error
	RenameStage(ctx context.Context, funnelID string, tag StageTag, label string) error
	MoveStage(ctx context.Context, funnelID string, tag StageTag, newIndex int) error
	DeleteStage(ctx context.Context, funnelID string, tag StageTag) error
	DeleteFunnel(ctx context.Context, funnelID string) error
}

// MemoryRegistry is an in-process Registry and Editor. It is the authoritative
// catalog for the CLI and the fixture for engine tests; a Redis read-through
// cache can sit in front of it (see Cache).
type MemoryRegistry struct {
	mu      sync.RWMutex
	funnels []Funnel
}

// NewMemoryRegistry creates a registry seeded with the given funnels.
func NewMemoryRegistry(funnels []Funnel) *MemoryRegistry {
	cloned := make([]Funnel, len(funnels))
	for i := range funnels {
		cloned[i] = *funnels[i].clone()
	}
	return &MemoryRegistry{funnels: cloned}
}

// NewBuiltinRegistry creates a registry seeded with the shipped catalog.
func NewBuiltinRegistry() *MemoryRegistry {
	return NewMemoryRegistry(BuiltinFunnels())
}

// ListFunnels returns all funnels in display order.
func (r *MemoryRegistry) ListFunnels(ctx context.Context) ([]Funnel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Funnel, len(r.funnels))
	for i := range r.funnels {
		out[i] = *r.funnels[i].clone()
	}
	return out, nil
}

// GetFunnel returns the funnel with the given id.
func (r *MemoryRegistry) GetFunnel(ctx context.Context, id string) (*Funnel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.funnels {
		if r.funnels[i].ID == id {
			return r.funnels[i].clone(), nil
		}
	}
	return nil, fmt.Errorf("funnel %q: %w", id, verrors.ErrNotFound)
}

func (r *MemoryRegistry) locate(id string) (*Funnel, error) {
	for i := range r.funnels {
		if r.funnels[i].ID == id {
			return &r.funnels[i], nil
		}
	}
	return nil, fmt.Errorf("funnel %q: %w", id, verrors.ErrNotFound)
}

func validateStageLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("stage label is required: %w", verrors.ErrValidation)
	}
	if len(label) > MaxStageLabelLen {
		return fmt.Errorf("stage label exceeds %d characters: %w", MaxStageLabelLen, verrors.ErrValidation)
	}
	return nil
}

// AddStage appends a stage to the funnel. Tags must be unique within one
// funnel and the stage count is capped at MaxStages.
func (r *MemoryRegistry) AddStage(ctx context.Context, funnelID string, stage Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.locate(funnelID)
	if err != nil {
		return err
	}
	if len(f.Stages) >= MaxStages {
		return fmt.Errorf("funnel %q already has %d stages: %w", funnelID, MaxStages, verrors.ErrValidation)
	}
	if stage.Tag == "" {
		return fmt.Errorf("stage tag is required: %w", verrors.ErrValidation)
	}
	if f.HasStage(stage.Tag) {
		return fmt.Errorf("stage %q already exists in funnel %q: %w", stage.Tag, funnelID, verrors.ErrValidation)
	}
	if err := validateStageLabel(stage.Label); err != nil {
		return err
	}
	if stage.SLAHours < 0 {
		return fmt.Errorf("sla hours must not be negative: %w", verrors.ErrValidation)
	}

	f.Stages = append(f.Stages, stage)
	return nil
}

// RenameStage changes a stage's display label.
func (r *MemoryRegistry) RenameStage(ctx context.Context, funnelID string, tag StageTag, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.locate(funnelID)
	if err != nil {
		return err
	}
	i := f.StageIndex(tag)
	if i < 0 {
		return fmt.Errorf("stage %q in funnel %q: %w", tag, funnelID, verrors.ErrNotFound)
	}
	if err := validateStageLabel(label); err != nil {
		return err
	}
	f.Stages[i].Label = strings.TrimSpace(label)
	return nil
}

// MoveStage repositions a stage within the funnel's order.
func (r *MemoryRegistry) MoveStage(ctx context.Context, funnelID string, tag StageTag, newIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.locate(funnelID)
	if err != nil {
		return err
	}
	i := f.StageIndex(tag)
	if i < 0 {
		return fmt.Errorf("stage %q in funnel %q: %w", tag, funnelID, verrors.ErrNotFound)
	}
	if newIndex < 0 || newIndex >= len(f.Stages) {
		return fmt.Errorf("index %d out of range: %w", newIndex, verrors.ErrValidation)
	}

	stage := f.Stages[i]
	f.Stages = append(f.Stages[:i], f.Stages[i+1:]...)
	rest := append([]Stage{}, f.Stages[newIndex:]...)
	f.Stages = append(append(f.Stages[:newIndex], stage), rest...)
	return nil
}

// DeleteStage removes a stage from the funnel. An empty stage list is allowed
// transiently while editing; the engine degrades to showing no cards for
// stages a funnel no longer carries.
func (r *MemoryRegistry) DeleteStage(ctx context.Context, funnelID string, tag StageTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.locate(funnelID)
	if err != nil {
		return err
	}
	i := f.StageIndex(tag)
	if i < 0 {
		return fmt.Errorf("stage %q in funnel %q: %w", tag, funnelID, verrors.ErrNotFound)
	}
	f.Stages = append(f.Stages[:i], f.Stages[i+1:]...)
	return nil
}

// DeleteFunnel removes a funnel from the catalog. The default funnel cannot
// be deleted.
func (r *MemoryRegistry) DeleteFunnel(ctx context.Context, funnelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.funnels {
		if r.funnels[i].ID != funnelID {
			continue
		}
		if r.funnels[i].Default {
			return fmt.Errorf("funnel %q is the default funnel: %w", funnelID, verrors.ErrInvalidState)
		}
		r.funnels = append(r.funnels[:i], r.funnels[i+1:]...)
		return nil
	}
	return fmt.Errorf("funnel %q: %w", funnelID, verrors.ErrNotFound)
}
