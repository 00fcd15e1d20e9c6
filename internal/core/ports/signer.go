package ports

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// RemoteSigner is the delegated-custody signing capability. The operator
// key never lives in this process; we send message bytes out and get an
// ed25519 signature back.
type RemoteSigner interface {
	Sign(ctx context.Context, message []byte, keyID string) (solana.Signature, error)
}
