package opportunity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/logging"
)

// PgRepository is a PostgreSQL-backed Repository.
type PgRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPgRepository creates a card repository on the given pool.
func NewPgRepository(pool *pgxpool.Pool, logger logging.Logger) *PgRepository {
	return &PgRepository{
		pool:   pool,
		logger: logger.With(logging.F("component", "card_repository")),
	}
}

const cardColumns = `
	id, title, client_name, tags,
	responsible_id, responsible_name,
	value, monthly_value, temperature, stage, status,
	created_at, updated_at, expected_close_date, sla_deadline,
	loss_reason, loss_competitor, loss_notes
`

// Get returns the card with the given id.
func (r *PgRepository) Get(ctx context.Context, id string) (*Card, error) {
	query := `SELECT ` + cardColumns + ` FROM opportunities WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("card %q: %w", id, verrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// Create inserts a new card.
func (r *PgRepository) Create(ctx context.Context, card *Card) error {
	query := `
		INSERT INTO opportunities (
			id, title, client_name, tags,
			responsible_id, responsible_name,
			value, monthly_value, temperature, stage, status,
			created_at, updated_at, expected_close_date, sla_deadline,
			loss_reason, loss_competitor, loss_notes
		) VALUES (
			$1, $2, $3, $4,
			$5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18
		)
	`

	_, err := r.pool.Exec(ctx, query,
		card.ID, card.Title, card.ClientName, card.Tags,
		card.ResponsibleID, card.ResponsibleName,
		card.Value, card.MonthlyValue, string(card.Temperature), string(card.Stage), string(card.Status),
		card.CreatedAt, card.UpdatedAt, card.ExpectedCloseDate, card.SLADeadline,
		string(card.LossReason), card.LossCompetitor, card.LossNotes,
	)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}

	r.logger.Debug("card created",
		logging.F("id", card.ID),
		logging.F("stage", string(card.Stage)))
	return nil
}

// Save overwrites the stored card in a single UPDATE, keeping the move
// commit all-or-nothing.
func (r *PgRepository) Save(ctx context.Context, card *Card) error {
	query := `
		UPDATE opportunities SET
			title = $2, client_name = $3, tags = $4,
			responsible_id = $5, responsible_name = $6,
			value = $7, monthly_value = $8, temperature = $9, stage = $10, status = $11,
			updated_at = $12, expected_close_date = $13, sla_deadline = $14,
			loss_reason = $15, loss_competitor = $16, loss_notes = $17
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		card.ID, card.Title, card.ClientName, card.Tags,
		card.ResponsibleID, card.ResponsibleName,
		card.Value, card.MonthlyValue, string(card.Temperature), string(card.Stage), string(card.Status),
		card.UpdatedAt, card.ExpectedCloseDate, card.SLADeadline,
		string(card.LossReason), card.LossCompetitor, card.LossNotes,
	)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %q: %w", card.ID, verrors.ErrNotFound)
	}
	return nil
}

// ListOpen returns all open cards, oldest first.
func (r *PgRepository) ListOpen(ctx context.Context) ([]Card, error) {
	query := `SELECT ` + cardColumns + ` FROM opportunities WHERE status = 'open' ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

// scanCard reads one card from a row.
func scanCard(row pgx.Row) (*Card, error) {
	var c Card
	var temperature, stage, status, lossReason string

	err := row.Scan(
		&c.ID, &c.Title, &c.ClientName, &c.Tags,
		&c.ResponsibleID, &c.ResponsibleName,
		&c.Value, &c.MonthlyValue, &temperature, &stage, &status,
		&c.CreatedAt, &c.UpdatedAt, &c.ExpectedCloseDate, &c.SLADeadline,
		&lossReason, &c.LossCompetitor, &c.LossNotes,
	)
	if err != nil {
		return nil, err
	}

	c.Temperature = Temperature(temperature)
	c.Stage = funnel.StageTag(stage)
	c.Status = Status(status)
	c.LossReason = LossReason(lossReason)
	return &c, nil
}

var _ Repository = (*PgRepository)(nil)
