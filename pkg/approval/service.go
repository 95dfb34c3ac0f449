package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
	"github.com/vendaflow/venda-cli/pkg/logging"
)

// TracerName is the name of the tracer for approval operations.
const TracerName = "approval"

// Service runs the approval state machine on top of a Repository.
//
// Resolutions on the same request are serialized by a per-request lock, so
// two managers racing to resolve the same request cannot both win: the loser
// observes a terminal status and gets ErrAlreadyResolved.
type Service struct {
	requests Repository
	logger   logging.Logger
	tracer   trace.Tracer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates an approval service. logger may be nil.
func NewService(requests Repository, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		requests: requests,
		logger:   logger.With(logging.F("component", "approval_service")),
		tracer:   otel.Tracer(TracerName),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockFor(requestID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[requestID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[requestID] = l
	}
	return l
}

// CreateRequest opens a pending approval for a discount above the threshold.
// A discount at or below the threshold is the seller's own call and is
// rejected here with ErrValidation so callers don't open needless requests.
func (s *Service) CreateRequest(ctx context.Context, req *Request, now time.Time) (*Request, error) {
	if !RequiresApproval(req.DiscountPercent) {
		return nil, fmt.Errorf("discount of %.1f%% does not require approval: %w", req.DiscountPercent, verrors.ErrValidation)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	req = req.Clone()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.Status = StatusPending
	req.CreatedAt = now
	req.ApproverID = ""
	req.ApproverName = ""
	req.ResolvedAt = nil

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.logger.Info("approval request opened",
		logging.F("request_id", req.ID),
		logging.F("card_id", req.CardID),
		logging.F("discount_percent", req.DiscountPercent))
	return req, nil
}

// Approve resolves a pending request as approved.
func (s *Service) Approve(ctx context.Context, requestID, approverID, approverName string, now time.Time) (*Request, error) {
	return s.resolve(ctx, requestID, approverID, approverName, StatusApproved, now)
}

// Reject resolves a pending request as rejected.
func (s *Service) Reject(ctx context.Context, requestID, approverID, approverName string, now time.Time) (*Request, error) {
	return s.resolve(ctx, requestID, approverID, approverName, StatusRejected, now)
}

func (s *Service) resolve(ctx context.Context, requestID, approverID, approverName string, target Status, now time.Time) (*Request, error) {
	ctx, span := s.tracer.Start(ctx, "approval.resolve",
		trace.WithAttributes(
			attribute.String("request_id", requestID),
			attribute.String("approver_id", approverID),
			attribute.String("target_status", string(target)),
		),
	)
	defer span.End()

	if approverID == "" {
		return nil, fmt.Errorf("approver id is required: %w", verrors.ErrValidation)
	}

	lock := s.lockFor(requestID)
	lock.Lock()
	defer lock.Unlock()

	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if req.Status.Terminal() {
		span.SetStatus(codes.Error, "already resolved")
		return nil, fmt.Errorf("request %q is already %s: %w", requestID, req.Status, verrors.ErrAlreadyResolved)
	}

	// Status, approver and timestamp land in one Save.
	req.Status = target
	req.ApproverID = approverID
	req.ApproverName = approverName
	req.ResolvedAt = &now

	if err := s.requests.Save(ctx, req); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("commit resolution: %w", err)
	}

	s.logger.Info("approval request resolved",
		logging.F("request_id", requestID),
		logging.F("status", string(target)),
		logging.F("approver_id", approverID))
	return req, nil
}

// Pending returns all pending requests.
func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	return s.requests.List(ctx, StatusPending)
}

// List returns requests with the given status, or all requests when status is
// empty.
func (s *Service) List(ctx context.Context, status Status) ([]Request, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, verrors.ErrValidation)
	}
	return s.requests.List(ctx, status)
}
