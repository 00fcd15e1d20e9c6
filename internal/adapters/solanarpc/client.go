package solanarpc

import (
	"NestVault/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

// maxTransactionVersion must be set explicitly or the RPC node refuses
// to return v0 transactions.
var maxTransactionVersion uint64 = 0

// Client adapts a Solana JSON-RPC node to the ChainClient port.
type Client struct {
	rpc *rpc.Client
	log zerolog.Logger
}

var _ ports.ChainClient = (*Client)(nil) // Ensure compliance

// NewClient creates a chain client against one RPC endpoint.
func NewClient(endpoint string, baseLogger *zerolog.Logger) *Client {
	return &Client{
		rpc: rpc.New(endpoint),
		log: baseLogger.With().Str("component", "solana_rpc").Logger(),
	}
}

// AccountData fetches raw account bytes. A missing account is (nil, nil),
// not an error.
func (c *Client) AccountData(ctx context.Context, key solana.PublicKey) (*ports.AccountInfo, error) {
	out, err := c.rpc.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getAccountInfo %s: %w", key, err)
	}
	if out == nil || out.Value == nil {
		return nil, nil
	}
	return &ports.AccountInfo{
		Owner: out.Value.Owner,
		Data:  out.Value.Data.GetBinary(),
	}, nil
}

func (c *Client) LatestCheckpoint(ctx context.Context) (ports.Checkpoint, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return ports.Checkpoint{}, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	return ports.Checkpoint{
		Blockhash:            out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}

func (c *Client) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("getBlockHeight: %w", err)
	}
	return height, nil
}

// SendTransaction broadcasts with preflight enabled, so transactions
// that would trivially fail never consume a signature on-chain.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sendTransaction: %w", err)
	}
	return sig, nil
}

// Status reports signature confirmation. An unknown signature is
// (nil, nil) so the caller can keep polling.
func (c *Client) Status(ctx context.Context, sig solana.Signature) (*ports.SignatureStatus, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("getSignatureStatuses: %w", err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	v := out.Value[0]
	status := &ports.SignatureStatus{
		Confirmed: v.ConfirmationStatus == rpc.ConfirmationStatusConfirmed,
		Finalized: v.ConfirmationStatus == rpc.ConfirmationStatusFinalized,
	}
	if v.Err != nil {
		status.ExecutionErr = fmt.Sprintf("%v", v.Err)
	}
	return status, nil
}

// BalanceSnapshot fetches the settled transaction and extracts its pre
// and post token balances. A transaction the node has not indexed yet is
// (nil, nil).
func (c *Client) BalanceSnapshot(ctx context.Context, sig solana.Signature) (*ports.BalanceSnapshot, error) {
	out, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxTransactionVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getTransaction %s: %w", sig, err)
	}
	if out == nil || out.Meta == nil {
		return nil, nil
	}

	snap := &ports.BalanceSnapshot{
		Failed: out.Meta.Err != nil,
		Logs:   out.Meta.LogMessages,
	}
	snap.Pre, err = c.tokenBalances(out.Meta.PreTokenBalances)
	if err != nil {
		return nil, err
	}
	snap.Post, err = c.tokenBalances(out.Meta.PostTokenBalances)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// tokenBalances converts RPC token balances to minor units. The node
// reports raw amounts as decimal strings; anything over int64 range is
// a hard error rather than a silent truncation.
func (c *Client) tokenBalances(in []rpc.TokenBalance) ([]ports.TokenBalance, error) {
	out := make([]ports.TokenBalance, 0, len(in))
	for _, tb := range in {
		if tb.Owner == nil || tb.UiTokenAmount == nil {
			continue
		}
		amount, err := strconv.ParseInt(tb.UiTokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable token amount %q: %w", tb.UiTokenAmount.Amount, err)
		}
		out = append(out, ports.TokenBalance{
			Owner:  *tb.Owner,
			Mint:   tb.Mint,
			Amount: amount,
		})
	}
	return out, nil
}
