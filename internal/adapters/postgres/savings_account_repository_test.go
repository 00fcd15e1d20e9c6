package postgres

import (
	"NestVault/internal/core/domain"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSavingsAccountRepository_ReplaceAndGet(t *testing.T) {
	requireDB(t)
	nopLogger := zerolog.Nop()
	repo := NewSavingsAccountRepository(testDB, &nopLogger)
	ctx := context.Background()

	wallet := fmt.Sprintf("wallet-%d", time.Now().UnixNano())
	defer cleanupSavingsAccount(t, wallet)

	// Absent account reads as nil, nil.
	acct, err := repo.Get(ctx, wallet, domain.AccountFlex)
	if err != nil {
		t.Fatalf("Get on empty table errored: %v", err)
	}
	if acct != nil {
		t.Fatalf("Expected nil for absent account, got %+v", acct)
	}

	first := &domain.SavingsAccount{
		Wallet:             wallet,
		AccountType:        domain.AccountFlex,
		PrincipalDeposited: 18_500_000,
		TotalDeposited:     20_000_000,
		FeesPaid:           1_500_000,
		LastSyncedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Replace(ctx, first); err != nil {
		t.Fatalf("Failed to insert aggregate: %v", err)
	}

	// A second replay overwrites every column.
	second := &domain.SavingsAccount{
		Wallet:             wallet,
		AccountType:        domain.AccountFlex,
		PrincipalDeposited: 18_500_000,
		PrincipalWithdrawn: 10_000_000,
		InterestWithdrawn:  500_000,
		TotalDeposited:     20_000_000,
		TotalWithdrawn:     10_500_000,
		FeesPaid:           1_500_000,
		LastSyncedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Replace(ctx, second); err != nil {
		t.Fatalf("Failed to upsert aggregate: %v", err)
	}

	found, err := repo.Get(ctx, wallet, domain.AccountFlex)
	if err != nil {
		t.Fatalf("Failed to get aggregate: %v", err)
	}
	if found == nil {
		t.Fatalf("Aggregate not found after upsert")
	}
	if found.PrincipalWithdrawn != second.PrincipalWithdrawn {
		t.Errorf("PrincipalWithdrawn mismatch: got %d, want %d", found.PrincipalWithdrawn, second.PrincipalWithdrawn)
	}
	if found.TotalWithdrawn != second.TotalWithdrawn {
		t.Errorf("TotalWithdrawn mismatch: got %d, want %d", found.TotalWithdrawn, second.TotalWithdrawn)
	}

	// Account types are independent rows.
	plus, err := repo.Get(ctx, wallet, domain.AccountPlus)
	if err != nil {
		t.Fatalf("Get plus account errored: %v", err)
	}
	if plus != nil {
		t.Errorf("Expected nil plus account, got %+v", plus)
	}
}

func TestPositionRepository_SaveAndGet(t *testing.T) {
	requireDB(t)
	nopLogger := zerolog.Nop()
	repo := NewPositionRepository(testDB, &nopLogger)
	ctx := context.Background()

	wallet := fmt.Sprintf("wallet-%d", time.Now().UnixNano())
	defer cleanupPosition(t, wallet)

	pos, err := repo.Get(ctx, wallet)
	if err != nil {
		t.Fatalf("Get on empty table errored: %v", err)
	}
	if pos != nil {
		t.Fatalf("Expected nil for absent position, got %+v", pos)
	}

	saved := &domain.ProtocolPosition{
		Wallet:    wallet,
		Account:   "derived-account",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := repo.Save(ctx, saved); err != nil {
		t.Fatalf("Failed to save position: %v", err)
	}

	// Saving again with a different account is a no-op: the first
	// derivation sticks.
	dup := &domain.ProtocolPosition{Wallet: wallet, Account: "other", CreatedAt: time.Now().UTC()}
	if err := repo.Save(ctx, dup); err != nil {
		t.Fatalf("Duplicate save errored: %v", err)
	}

	found, err := repo.Get(ctx, wallet)
	if err != nil {
		t.Fatalf("Failed to get position: %v", err)
	}
	if found == nil {
		t.Fatalf("Position not found after save")
	}
	if found.Account != "derived-account" {
		t.Errorf("Account mismatch: got %q, want %q", found.Account, saved.Account)
	}
}
