package signer

import (
	"NestVault/internal/core/ports"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

const requestTimeout = 10 * time.Second

// HTTPSigner talks to the remote custody service. The operator key never
// leaves that service; this adapter only moves message bytes out and a
// signature back.
type HTTPSigner struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

var _ ports.RemoteSigner = (*HTTPSigner)(nil) // Ensure compliance

func NewHTTPSigner(url string, baseLogger *zerolog.Logger) *HTTPSigner {
	return &HTTPSigner{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		log:    baseLogger.With().Str("component", "remote_signer").Logger(),
	}
}

type signRequest struct {
	KeyID   string `json:"keyId"`
	Message string `json:"message"`
}

type signResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

// Sign submits the serialized message for co-signing under the named key.
func (s *HTTPSigner) Sign(ctx context.Context, message []byte, keyID string) (solana.Signature, error) {
	body, err := json.Marshal(signRequest{
		KeyID:   keyID,
		Message: base64.StdEncoding.EncodeToString(message),
	})
	if err != nil {
		return solana.Signature{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return solana.Signature{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Msg("Signer request failed")
		return solana.Signature{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return solana.Signature{}, err
	}

	var out signResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return solana.Signature{}, fmt.Errorf("undecodable signer response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return solana.Signature{}, fmt.Errorf("signer refused: %s", out.Error)
		}
		return solana.Signature{}, fmt.Errorf("signer returned status %d", resp.StatusCode)
	}

	sig, err := solana.SignatureFromBase58(out.Signature)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("signer returned malformed signature: %w", err)
	}
	return sig, nil
}
