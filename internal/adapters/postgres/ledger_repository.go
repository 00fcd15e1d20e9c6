package postgres

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

type ledgerRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.LedgerRepository = (*ledgerRepository)(nil) // Ensure compliance

// NewLedgerRepository creates a new repository for ledger entries.
func NewLedgerRepository(db *DB, baseLogger *zerolog.Logger) ports.LedgerRepository {
	return &ledgerRepository{
		db:  db,
		log: baseLogger.With().Str("component", "ledger_repo").Logger(),
	}
}

// InsertIfAbsent inserts the entry keyed by transaction signature. The
// unique index on signature makes the insert a no-op for retries and
// concurrent duplicates; rows affected tells the two cases apart.
func (r *ledgerRepository) InsertIfAbsent(ctx context.Context, entry *domain.LedgerEntry) (bool, error) {
	query := `
		INSERT INTO ledger_entries (
			id, wallet, account_type, direction, gross_amount,
			principal, interest, fee, signature, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (signature) DO NOTHING
	`
	tag, err := r.db.pool.Exec(ctx, query,
		entry.ID,
		entry.Wallet,
		entry.AccountType,
		entry.Direction,
		entry.GrossAmount,
		entry.Principal,
		entry.Interest,
		entry.Fee,
		entry.Signature,
		entry.CreatedAt,
	)
	if err != nil {
		r.log.Error().Err(err).Str("signature", entry.Signature).Msg("Failed to insert ledger entry")
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListByAccount returns the full entry history for one account, oldest
// first. Replay order must be stable, so ties on created_at break on id.
func (r *ledgerRepository) ListByAccount(ctx context.Context, wallet string, accountType domain.AccountType) ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, wallet, account_type, direction, gross_amount,
		       principal, interest, fee, signature, created_at
		FROM ledger_entries
		WHERE wallet = $1 AND account_type = $2
		ORDER BY created_at, id
	`
	rows, err := r.db.pool.Query(ctx, query, wallet, accountType)
	if err != nil {
		r.log.Error().Err(err).Str("wallet", wallet).Msg("Failed to list ledger entries")
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		err := rows.Scan(
			&e.ID,
			&e.Wallet,
			&e.AccountType,
			&e.Direction,
			&e.GrossAmount,
			&e.Principal,
			&e.Interest,
			&e.Fee,
			&e.Signature,
			&e.CreatedAt,
		)
		if err != nil {
			r.log.Error().Err(err).Msg("Failed to scan ledger entry row")
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
