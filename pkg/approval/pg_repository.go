package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
	"github.com/vendaflow/venda-cli/pkg/logging"
)

// PgRepository is a PostgreSQL-backed Repository.
type PgRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPgRepository creates an approval repository on the given pool.
func NewPgRepository(pool *pgxpool.Pool, logger logging.Logger) *PgRepository {
	return &PgRepository{
		pool:   pool,
		logger: logger.With(logging.F("component", "approval_repository")),
	}
}

const requestColumns = `
	id, opportunity_id, opportunity_title,
	requester_id, requester_name,
	requested_discount, original_value, justification, status,
	approver_id, approver_name, resolved_at, created_at
`

// Get returns the request with the given id.
func (r *PgRepository) Get(ctx context.Context, id string) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("approval request %q: %w", id, verrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}
	return req, nil
}

// Create inserts a new request.
func (r *PgRepository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO approval_requests (
			id, opportunity_id, opportunity_title,
			requester_id, requester_name,
			requested_discount, original_value, justification, status,
			approver_id, approver_name, resolved_at, created_at
		) VALUES (
			$1, $2, $3,
			$4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.CardID, req.CardTitle,
		req.RequesterID, req.RequesterName,
		req.DiscountPercent, req.OriginalValue, req.Reason, string(req.Status),
		req.ApproverID, req.ApproverName, req.ResolvedAt, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create approval request: %w", err)
	}

	r.logger.Debug("approval request created",
		logging.F("id", req.ID),
		logging.F("card_id", req.CardID))
	return nil
}

// Save overwrites the stored request. Resolution writes status, approver and
// resolved_at in the same UPDATE, so a request is never half-resolved.
func (r *PgRepository) Save(ctx context.Context, req *Request) error {
	query := `
		UPDATE approval_requests SET
			status = $2, approver_id = $3, approver_name = $4, resolved_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		req.ID, string(req.Status), req.ApproverID, req.ApproverName, req.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("save approval request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("approval request %q: %w", req.ID, verrors.ErrNotFound)
	}
	return nil
}

// List returns requests with the given status, newest first. An empty status
// returns everything.
func (r *PgRepository) List(ctx context.Context, status Status) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list approval requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approval request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// scanRequest reads one request from a row.
func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	var status string

	err := row.Scan(
		&req.ID, &req.CardID, &req.CardTitle,
		&req.RequesterID, &req.RequesterName,
		&req.DiscountPercent, &req.OriginalValue, &req.Reason, &status,
		&req.ApproverID, &req.ApproverName, &req.ResolvedAt, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = Status(status)
	return &req, nil
}

var _ Repository = (*PgRepository)(nil)
