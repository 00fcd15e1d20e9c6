package ports

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountInfo is the slice of an on-chain account the pipeline needs:
// which program owns it and its raw data.
type AccountInfo struct {
	Owner solana.PublicKey
	Data  []byte
}

// Checkpoint is a recent blockhash plus the block height after which a
// transaction built against it can no longer land. Confirmation waits are
// bounded by this expiry, never by open-ended polling.
type Checkpoint struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// SignatureStatus is the cluster's view of a broadcast transaction.
type SignatureStatus struct {
	Confirmed bool
	Finalized bool
	// ExecutionErr is non-empty when the transaction landed but reverted.
	ExecutionErr string
}

// TokenBalance is one owner/mint token amount in minor units.
type TokenBalance struct {
	Owner  solana.PublicKey
	Mint   solana.PublicKey
	Amount int64
}

// BalanceSnapshot holds the pre/post token balances of a confirmed
// transaction. Reconciliation derives what actually moved from these,
// never from the client's claimed amount.
type BalanceSnapshot struct {
	Pre    []TokenBalance
	Post   []TokenBalance
	Failed bool
	Logs   []string
}

// ChainClient is the narrow RPC surface the core consumes.
type ChainClient interface {
	// AccountData fetches owner and raw data, or (nil, nil) when the
	// account does not exist.
	AccountData(ctx context.Context, key solana.PublicKey) (*AccountInfo, error)

	LatestCheckpoint(ctx context.Context) (Checkpoint, error)

	BlockHeight(ctx context.Context) (uint64, error)

	// SendTransaction broadcasts fully signed bytes. The returned signature
	// identifies the transaction whether or not confirmation is later
	// observed.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// Status returns the known status, or (nil, nil) while the cluster has
	// not seen the signature yet.
	Status(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)

	// BalanceSnapshot fetches the pre/post token balances of a landed
	// transaction.
	BalanceSnapshot(ctx context.Context, sig solana.Signature) (*BalanceSnapshot, error)
}
