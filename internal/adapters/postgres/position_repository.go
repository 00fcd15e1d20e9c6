package postgres

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type positionRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.PositionRepository = (*positionRepository)(nil) // Ensure compliance

// NewPositionRepository creates a new repository for wallet -> protocol
// sub-account mappings.
func NewPositionRepository(db *DB, baseLogger *zerolog.Logger) ports.PositionRepository {
	return &positionRepository{
		db:  db,
		log: baseLogger.With().Str("component", "position_repo").Logger(),
	}
}

// Get finds the stored position for a wallet.
func (r *positionRepository) Get(ctx context.Context, wallet string) (*domain.ProtocolPosition, error) {
	query := `SELECT wallet, account, created_at FROM protocol_positions WHERE wallet = $1`

	var pos domain.ProtocolPosition
	err := r.db.pool.QueryRow(ctx, query, wallet).Scan(&pos.Wallet, &pos.Account, &pos.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Return nil, nil for "not found"
		}
		r.log.Error().Err(err).Str("wallet", wallet).Msg("Failed to scan position row")
		return nil, err
	}
	return &pos, nil
}

// Save stores the mapping. The derivation is deterministic, so a
// concurrent writer storing the same wallet is harmless.
func (r *positionRepository) Save(ctx context.Context, pos *domain.ProtocolPosition) error {
	query := `
		INSERT INTO protocol_positions (wallet, account, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet) DO NOTHING
	`
	_, err := r.db.pool.Exec(ctx, query, pos.Wallet, pos.Account, pos.CreatedAt)
	if err != nil {
		r.log.Error().Err(err).Str("wallet", pos.Wallet).Msg("Failed to insert protocol position")
	}
	return err
}
