package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the DDL for the venda tables. Statements are idempotent so
// EnsureSchema can run on every CLI start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS opportunities (
		id                  TEXT PRIMARY KEY,
		title               TEXT NOT NULL,
		client_name         TEXT NOT NULL DEFAULT '',
		tags                TEXT[] NOT NULL DEFAULT '{}',
		responsible_id      TEXT NOT NULL,
		responsible_name    TEXT NOT NULL DEFAULT '',
		value               DOUBLE PRECISION NOT NULL DEFAULT 0,
		monthly_value       DOUBLE PRECISION NOT NULL DEFAULT 0,
		temperature         TEXT NOT NULL DEFAULT 'warm',
		stage               TEXT NOT NULL,
		status              TEXT NOT NULL DEFAULT 'open',
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL,
		expected_close_date TIMESTAMPTZ,
		sla_deadline        TIMESTAMPTZ,
		loss_reason         TEXT NOT NULL DEFAULT '',
		loss_competitor     TEXT NOT NULL DEFAULT '',
		loss_notes          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_opportunities_status_stage
		ON opportunities (status, stage)`,
	`CREATE INDEX IF NOT EXISTS idx_opportunities_responsible
		ON opportunities (responsible_id)`,
	`CREATE TABLE IF NOT EXISTS approval_requests (
		id                 TEXT PRIMARY KEY,
		opportunity_id     TEXT NOT NULL,
		opportunity_title  TEXT NOT NULL DEFAULT '',
		requester_id       TEXT NOT NULL,
		requester_name     TEXT NOT NULL DEFAULT '',
		requested_discount DOUBLE PRECISION NOT NULL,
		original_value     DOUBLE PRECISION NOT NULL,
		justification      TEXT NOT NULL,
		status             TEXT NOT NULL DEFAULT 'pending',
		approver_id        TEXT NOT NULL DEFAULT '',
		approver_name      TEXT NOT NULL DEFAULT '',
		resolved_at        TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_approval_requests_status
		ON approval_requests (status)`,
}

// EnsureSchema creates the venda tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("pool is nil")
	}
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
