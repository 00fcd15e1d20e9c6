package savings

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"

	"github.com/gagliardetto/solana-go"
)

// ReconcileResult is what actually moved on-chain, derived purely from
// balance deltas. The client's requested amount never enters here, so a
// mismatched or malicious client input cannot corrupt accounting.
type ReconcileResult struct {
	Direction domain.Direction
	Gross     int64
	Principal int64
	Interest  int64
	Fee       int64
	// Indeterminate is set when the user's net delta is zero: nothing
	// classifiable moved, and the transaction stays unrecorded.
	Indeterminate bool
}

func sumDelta(snap *ports.BalanceSnapshot, owner, mint solana.PublicKey) int64 {
	var delta int64
	for _, b := range snap.Post {
		if b.Owner.Equals(owner) && b.Mint.Equals(mint) {
			delta += b.Amount
		}
	}
	for _, b := range snap.Pre {
		if b.Owner.Equals(owner) && b.Mint.Equals(mint) {
			delta -= b.Amount
		}
	}
	return delta
}

// Reconcile derives direction, gross amount, fee and the principal and
// interest legs from a confirmed transaction's pre/post token balances.
//
// principalRemaining is the wallet's deposited-but-not-withdrawn principal,
// replayed from prior ledger entries by the caller. Withdrawals consume
// principal first; whatever exceeds it is interest. The fee is whatever
// the treasury gained. On deposits the user's outflow covers both the
// protocol deposit and the fee, so principal is gross minus fee.
func Reconcile(snap *ports.BalanceSnapshot, user, treasury, mint solana.PublicKey, declared domain.Direction, principalRemaining int64) ReconcileResult {
	userDelta := sumDelta(snap, user, mint)
	treasuryDelta := sumDelta(snap, treasury, mint)

	fee := treasuryDelta
	if fee < 0 {
		fee = 0
	}

	direction := declared
	if direction == domain.DirectionUnknown {
		switch {
		case userDelta > 0:
			direction = domain.DirectionWithdraw
		case userDelta < 0:
			direction = domain.DirectionDeposit
		}
	}
	if direction == domain.DirectionUnknown || userDelta == 0 {
		return ReconcileResult{Indeterminate: true, Fee: fee}
	}

	res := ReconcileResult{Direction: direction, Fee: fee}

	switch direction {
	case domain.DirectionWithdraw:
		received := userDelta
		if received < 0 {
			received = 0
		}
		res.Gross = received + fee
		res.Principal = res.Gross
		if res.Principal > principalRemaining {
			res.Principal = principalRemaining
		}
		if res.Principal < 0 {
			res.Principal = 0
		}
		res.Interest = res.Gross - res.Principal
		if res.Interest < 0 {
			res.Interest = 0
		}

	case domain.DirectionDeposit:
		paid := -userDelta
		if paid < 0 {
			paid = 0
		}
		res.Gross = paid
		res.Principal = res.Gross - fee
		if res.Principal < 0 {
			res.Principal = 0
		}
		res.Interest = 0
	}

	if res.Gross == 0 {
		return ReconcileResult{Indeterminate: true, Fee: fee}
	}
	return res
}
