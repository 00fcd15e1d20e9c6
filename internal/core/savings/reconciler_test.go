package savings

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func snapshot(user, treasury, mint solana.PublicKey, preUser, preTreasury, postUser, postTreasury int64) *ports.BalanceSnapshot {
	return &ports.BalanceSnapshot{
		Pre: []ports.TokenBalance{
			{Owner: user, Mint: mint, Amount: preUser},
			{Owner: treasury, Mint: mint, Amount: preTreasury},
		},
		Post: []ports.TokenBalance{
			{Owner: user, Mint: mint, Amount: postUser},
			{Owner: treasury, Mint: mint, Amount: postTreasury},
		},
	}
}

func TestReconcile_DepositInferred(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	// pre user 100, treasury 10; post user 80, treasury 11.5 (minor units).
	snap := snapshot(user, treasury, mint, 100_000_000, 10_000_000, 80_000_000, 11_500_000)

	res := Reconcile(snap, user, treasury, mint, domain.DirectionUnknown, 1_000_000_000)
	require.False(t, res.Indeterminate)
	require.Equal(t, domain.DirectionDeposit, res.Direction)
	require.Equal(t, int64(1_500_000), res.Fee)
	require.Equal(t, int64(20_000_000), res.Gross)
	require.Equal(t, int64(18_500_000), res.Principal)
	require.Equal(t, int64(0), res.Interest)

	// Recomputing from identical input yields identical output.
	require.Equal(t, res, Reconcile(snap, user, treasury, mint, domain.DirectionUnknown, 1_000_000_000))
}

func TestReconcile_WithdrawSplitsPrincipalAndInterest(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	// User received 50, treasury gained 0.5 in fees: gross 50.5.
	snap := snapshot(user, treasury, mint, 0, 0, 50_000_000, 500_000)

	// Only 30 of principal remains; the excess is interest.
	res := Reconcile(snap, user, treasury, mint, domain.DirectionUnknown, 30_000_000)
	require.Equal(t, domain.DirectionWithdraw, res.Direction)
	require.Equal(t, int64(50_500_000), res.Gross)
	require.Equal(t, int64(500_000), res.Fee)
	require.Equal(t, int64(30_000_000), res.Principal)
	require.Equal(t, int64(20_500_000), res.Interest)
}

func TestReconcile_WithdrawFullyPrincipal(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	snap := snapshot(user, treasury, mint, 0, 0, 10_000_000, 0)

	res := Reconcile(snap, user, treasury, mint, domain.DirectionUnknown, 100_000_000)
	require.Equal(t, int64(10_000_000), res.Gross)
	require.Equal(t, int64(10_000_000), res.Principal)
	require.Equal(t, int64(0), res.Interest)
	require.Equal(t, int64(0), res.Fee)
}

func TestReconcile_DeclaredDirectionWins(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	// Positive user delta would infer withdraw, but the caller declared
	// deposit; declared wins and the positive delta yields zero gross.
	snap := snapshot(user, treasury, mint, 0, 0, 10_000_000, 0)
	res := Reconcile(snap, user, treasury, mint, domain.DirectionDeposit, 0)
	require.True(t, res.Indeterminate)
}

func TestReconcile_ZeroDeltaIndeterminate(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	snap := snapshot(user, treasury, mint, 5_000_000, 0, 5_000_000, 0)
	res := Reconcile(snap, user, treasury, mint, domain.DirectionUnknown, 0)
	require.True(t, res.Indeterminate)
	require.Equal(t, domain.DirectionUnknown, res.Direction)
}

func TestReconcile_IgnoresOtherMintsAndOwners(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	otherMint := solana.NewWallet().PublicKey()
	stranger := solana.NewWallet().PublicKey()

	snap := snapshot(user, treasury, mint, 100_000_000, 0, 90_000_000, 0)
	snap.Pre = append(snap.Pre, ports.TokenBalance{Owner: user, Mint: otherMint, Amount: 1})
	snap.Post = append(snap.Post,
		ports.TokenBalance{Owner: user, Mint: otherMint, Amount: 999_000_000},
		ports.TokenBalance{Owner: stranger, Mint: mint, Amount: 7},
	)

	res := Reconcile(snap, user, treasury, mint, domain.DirectionUnknown, 100_000_000)
	require.Equal(t, domain.DirectionDeposit, res.Direction)
	require.Equal(t, int64(10_000_000), res.Gross)
}
