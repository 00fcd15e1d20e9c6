package identity

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

const requestTimeout = 5 * time.Second

// HTTPResolver verifies bearer tokens against the auth service and maps
// them to the caller's wallet. The co-signing service itself holds no
// user credentials.
type HTTPResolver struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

var _ ports.IdentityResolver = (*HTTPResolver)(nil) // Ensure compliance

func NewHTTPResolver(url string, baseLogger *zerolog.Logger) *HTTPResolver {
	return &HTTPResolver{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		log:    baseLogger.With().Str("component", "identity_resolver").Logger(),
	}
}

type verifyResponse struct {
	Wallet string `json:"wallet"`
}

// Resolve exchanges a bearer token for the wallet it belongs to. Any
// non-OK answer is an authorization failure, not an internal error: the
// caller must not be told why.
func (r *HTTPResolver) Resolve(ctx context.Context, token string) (solana.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return solana.PublicKey{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Error().Err(err).Msg("Auth service unreachable")
		return solana.PublicKey{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return solana.PublicKey{}, fmt.Errorf("%w: auth service returned %d", domain.ErrUnauthorized, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return solana.PublicKey{}, err
	}
	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return solana.PublicKey{}, fmt.Errorf("undecodable auth response: %w", err)
	}

	wallet, err := solana.PublicKeyFromBase58(out.Wallet)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: auth service returned malformed wallet", domain.ErrUnauthorized)
	}
	return wallet, nil
}
