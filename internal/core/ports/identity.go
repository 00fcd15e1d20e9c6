package ports

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// IdentityResolver maps a bearer token to a verified wallet address.
// Session issuance itself is an external collaborator; this service only
// consumes the resolved address.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (solana.PublicKey, error)
}
