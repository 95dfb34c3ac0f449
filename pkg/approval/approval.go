// Package approval implements the discount approval workflow. Discounts above
// a fixed percentage threshold need a manager's sign-off before the discounted
// price can be offered; smaller discounts are auto-approved and never create a
// request.
package approval

import (
	"fmt"
	"strings"
	"time"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
)

// DiscountThreshold is the discount percentage above which a request is
// required. At or below the threshold the seller may apply the discount
// directly.
const DiscountThreshold = 10.0

// Status is the request's lifecycle state. Approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is a pending or resolved discount approval. Card title and person
// names are denormalized so the request list renders without extra lookups.
type Request struct {
	ID              string    `json:"id"`
	CardID          string    `json:"cardId"`
	CardTitle       string    `json:"cardTitle"`
	RequesterID     string    `json:"requesterId"`
	RequesterName   string    `json:"requesterName"`
	OriginalValue   float64   `json:"originalValue"`
	DiscountPercent float64   `json:"discountPercent"`
	Reason          string    `json:"reason"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`

	// Resolution fields, set together when the request leaves pending.
	ApproverID   string     `json:"approverId,omitempty"`
	ApproverName string     `json:"approverName,omitempty"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// DiscountedValue is the proposal value after the discount is applied. It is
// derived, never stored: storing it would let the two drift apart.
func (r *Request) DiscountedValue() float64 {
	return r.OriginalValue * (1 - r.DiscountPercent/100)
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	cp := *r
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}

// RequiresApproval reports whether a discount of the given percentage needs a
// manager's sign-off.
func RequiresApproval(discountPercent float64) bool {
	return discountPercent > DiscountThreshold
}

// validate checks the fields a new request must carry.
func (r *Request) validate() error {
	if r.CardID == "" {
		return fmt.Errorf("card id is required: %w", verrors.ErrValidation)
	}
	if r.RequesterID == "" {
		return fmt.Errorf("requester id is required: %w", verrors.ErrValidation)
	}
	if r.OriginalValue <= 0 {
		return fmt.Errorf("original value must be positive: %w", verrors.ErrValidation)
	}
	if r.DiscountPercent <= 0 || r.DiscountPercent > 100 {
		return fmt.Errorf("discount percent must be in (0, 100]: %w", verrors.ErrValidation)
	}
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("justification is required: %w", verrors.ErrValidation)
	}
	return nil
}
