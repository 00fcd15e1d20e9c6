package postgres

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type savingsAccountRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.SavingsAccountRepository = (*savingsAccountRepository)(nil) // Ensure compliance

// NewSavingsAccountRepository creates a new repository for the derived
// savings aggregates.
func NewSavingsAccountRepository(db *DB, baseLogger *zerolog.Logger) ports.SavingsAccountRepository {
	return &savingsAccountRepository{
		db:  db,
		log: baseLogger.With().Str("component", "savings_account_repo").Logger(),
	}
}

// Replace upserts the whole aggregate row. Every column is overwritten:
// the row is a pure function of the entry history, so the newest replay
// always wins.
func (r *savingsAccountRepository) Replace(ctx context.Context, acct *domain.SavingsAccount) error {
	query := `
		INSERT INTO savings_accounts (
			wallet, account_type, principal_deposited, principal_withdrawn,
			interest_withdrawn, total_deposited, total_withdrawn, fees_paid, last_synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (wallet, account_type) DO UPDATE SET
			principal_deposited = EXCLUDED.principal_deposited,
			principal_withdrawn = EXCLUDED.principal_withdrawn,
			interest_withdrawn  = EXCLUDED.interest_withdrawn,
			total_deposited     = EXCLUDED.total_deposited,
			total_withdrawn     = EXCLUDED.total_withdrawn,
			fees_paid           = EXCLUDED.fees_paid,
			last_synced_at      = EXCLUDED.last_synced_at
	`
	_, err := r.db.pool.Exec(ctx, query,
		acct.Wallet,
		acct.AccountType,
		acct.PrincipalDeposited,
		acct.PrincipalWithdrawn,
		acct.InterestWithdrawn,
		acct.TotalDeposited,
		acct.TotalWithdrawn,
		acct.FeesPaid,
		acct.LastSyncedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("wallet", acct.Wallet).Msg("Failed to upsert savings account")
	}
	return err
}

// Get finds the aggregate for one (wallet, account type) key.
func (r *savingsAccountRepository) Get(ctx context.Context, wallet string, accountType domain.AccountType) (*domain.SavingsAccount, error) {
	query := `
		SELECT wallet, account_type, principal_deposited, principal_withdrawn,
		       interest_withdrawn, total_deposited, total_withdrawn, fees_paid, last_synced_at
		FROM savings_accounts
		WHERE wallet = $1 AND account_type = $2
	`
	var acct domain.SavingsAccount
	err := r.db.pool.QueryRow(ctx, query, wallet, accountType).Scan(
		&acct.Wallet,
		&acct.AccountType,
		&acct.PrincipalDeposited,
		&acct.PrincipalWithdrawn,
		&acct.InterestWithdrawn,
		&acct.TotalDeposited,
		&acct.TotalWithdrawn,
		&acct.FeesPaid,
		&acct.LastSyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Return nil, nil for "not found"
		}
		r.log.Error().Err(err).Str("wallet", wallet).Msg("Failed to scan savings account row")
		return nil, err
	}
	return &acct, nil
}
