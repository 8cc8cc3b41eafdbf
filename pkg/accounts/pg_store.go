package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a PostgreSQL implementation of the Store interface backed by
// the contractor_accounts table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed account store.
// Panics if pool is nil to fail fast during initialization.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("accounts: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, contractorID uuid.UUID) (*Account, error) {
	const query = `
		SELECT id, subscription_tier, billing_anchor, created_at
		FROM contractor_accounts
		WHERE id = $1`

	var acc Account
	err := s.pool.QueryRow(ctx, query, contractorID).Scan(
		&acc.ID, &acc.Tier, &acc.BillingAnchor, &acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContractorNotFound
		}
		return nil, err
	}
	return &acc, nil
}
