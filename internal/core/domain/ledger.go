package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AccountType is a custom type for the savings product ENUM.
type AccountType string

const (
	AccountFlex AccountType = "flex"
	AccountPlus AccountType = "plus"
)

// ParseAccountType validates a client-supplied account type string.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountFlex, AccountPlus:
		return AccountType(s), nil
	}
	return "", fmt.Errorf("%w: unknown account type %q", ErrInvalidTransaction, s)
}

// Direction of a settled token movement, from the user's point of view.
type Direction string

const (
	DirectionDeposit  Direction = "deposit"
	DirectionWithdraw Direction = "withdraw"
	// DirectionUnknown means the balance delta was zero and the movement
	// cannot be classified. Such transactions are never recorded.
	DirectionUnknown Direction = ""
)

// ParseDirection validates an optional client-declared direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionDeposit, DirectionWithdraw, DirectionUnknown:
		return Direction(s), nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidTransaction, s)
}

// LedgerEntry is one settled on-chain movement. Entries are immutable:
// inserted once, keyed by transaction signature, never updated or deleted.
// All amounts are minor units (10^-6).
type LedgerEntry struct {
	ID          uuid.UUID
	Wallet      string
	AccountType AccountType
	Direction   Direction
	GrossAmount int64
	Principal   int64
	Interest    int64
	Fee         int64
	Signature   string
	CreatedAt   time.Time
}

// SavingsAccount is the per (wallet, account type) aggregate. It is never
// hand-mutated; every value is recomputed from the full entry history.
type SavingsAccount struct {
	Wallet             string
	AccountType        AccountType
	PrincipalDeposited int64
	PrincipalWithdrawn int64
	InterestWithdrawn  int64
	TotalDeposited     int64
	TotalWithdrawn     int64
	FeesPaid           int64
	LastSyncedAt       time.Time
}

// RecomputeAccount replays all entries for one (wallet, account type) key
// into a fresh aggregate. Replay instead of increment means concurrent
// writers converge: last writer wins with an identical result.
func RecomputeAccount(wallet string, accountType AccountType, entries []LedgerEntry, syncedAt time.Time) SavingsAccount {
	acct := SavingsAccount{
		Wallet:       wallet,
		AccountType:  accountType,
		LastSyncedAt: syncedAt,
	}
	for _, e := range entries {
		switch e.Direction {
		case DirectionDeposit:
			acct.PrincipalDeposited += e.Principal
			acct.TotalDeposited += e.GrossAmount
		case DirectionWithdraw:
			acct.PrincipalWithdrawn += e.Principal
			acct.InterestWithdrawn += e.Interest
			acct.TotalWithdrawn += e.GrossAmount
		}
		acct.FeesPaid += e.Fee
	}
	return acct
}

// PrincipalRemaining is the deposited principal not yet withdrawn, floored
// at zero. Withdrawals are split against this: principal first, the
// remainder is interest.
func PrincipalRemaining(entries []LedgerEntry) int64 {
	var remaining int64
	for _, e := range entries {
		switch e.Direction {
		case DirectionDeposit:
			remaining += e.Principal
		case DirectionWithdraw:
			remaining -= e.Principal
		}
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ProtocolPosition maps a wallet to its lending-protocol sub-account,
// created lazily the first time a user builds a withdrawal.
type ProtocolPosition struct {
	Wallet    string
	Account   string
	CreatedAt time.Time
}
