package ports

import (
	"NestVault/internal/core/domain"
	"context"
)

// LedgerRepository persists immutable ledger entries.
type LedgerRepository interface {
	// InsertIfAbsent stores the entry unless one with the same transaction
	// signature already exists. It reports whether this call was the first
	// writer. An existing row is not an error: the caller may be a retry.
	InsertIfAbsent(ctx context.Context, entry *domain.LedgerEntry) (firstWriter bool, err error)

	// ListByAccount returns every entry for one (wallet, account type) key,
	// oldest first.
	ListByAccount(ctx context.Context, wallet string, accountType domain.AccountType) ([]domain.LedgerEntry, error)
}

// SavingsAccountRepository persists the derived aggregates.
type SavingsAccountRepository interface {
	// Replace upserts the full aggregate row. Aggregates are only ever
	// written whole, after a replay of the entry history.
	Replace(ctx context.Context, acct *domain.SavingsAccount) error

	// Get returns the aggregate, or (nil, nil) when none exists yet.
	Get(ctx context.Context, wallet string, accountType domain.AccountType) (*domain.SavingsAccount, error)
}

// PositionRepository stores the lazily created wallet -> lending-protocol
// sub-account mapping.
type PositionRepository interface {
	// Get returns the stored position, or (nil, nil) when none exists.
	Get(ctx context.Context, wallet string) (*domain.ProtocolPosition, error)

	Save(ctx context.Context, pos *domain.ProtocolPosition) error
}
