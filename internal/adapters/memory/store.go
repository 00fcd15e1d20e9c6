package memory

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"context"
	"sort"
	"sync"
)

// Store is an in-memory implementation of the ledger and aggregate
// repositories. It backs tests and local development; the postgres
// adapter is the production implementation.
type Store struct {
	mu          sync.RWMutex
	bySignature map[string]domain.LedgerEntry
	accounts    map[string]domain.SavingsAccount
}

var (
	_ ports.LedgerRepository         = (*Store)(nil)
	_ ports.SavingsAccountRepository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		bySignature: make(map[string]domain.LedgerEntry),
		accounts:    make(map[string]domain.SavingsAccount),
	}
}

func accountKey(wallet string, accountType domain.AccountType) string {
	return wallet + "/" + string(accountType)
}

// InsertIfAbsent stores the entry unless the signature is already present.
func (s *Store) InsertIfAbsent(_ context.Context, entry *domain.LedgerEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySignature[entry.Signature]; exists {
		return false, nil
	}
	s.bySignature[entry.Signature] = *entry
	return true, nil
}

// ListByAccount returns entries for one (wallet, account type), oldest first.
func (s *Store) ListByAccount(_ context.Context, wallet string, accountType domain.AccountType) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range s.bySignature {
		if e.Wallet == wallet && e.AccountType == accountType {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Replace upserts the aggregate row whole.
func (s *Store) Replace(_ context.Context, acct *domain.SavingsAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[accountKey(acct.Wallet, acct.AccountType)] = *acct
	return nil
}

// Get returns the aggregate, or (nil, nil) when absent.
func (s *Store) Get(_ context.Context, wallet string, accountType domain.AccountType) (*domain.SavingsAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[accountKey(wallet, accountType)]
	if !ok {
		return nil, nil
	}
	return &acct, nil
}

// PositionStore is the in-memory wallet -> sub-account mapping.
type PositionStore struct {
	mu        sync.RWMutex
	positions map[string]domain.ProtocolPosition
}

var _ ports.PositionRepository = (*PositionStore)(nil)

func NewPositionStore() *PositionStore {
	return &PositionStore{positions: make(map[string]domain.ProtocolPosition)}
}

// Get returns the stored position, or (nil, nil) when absent.
func (p *PositionStore) Get(_ context.Context, wallet string) (*domain.ProtocolPosition, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pos, ok := p.positions[wallet]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

func (p *PositionStore) Save(_ context.Context, pos *domain.ProtocolPosition) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.positions[pos.Wallet] = *pos
	return nil
}
