package signer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestHTTPSigner_Sign(t *testing.T) {
	nopLogger := zerolog.Nop()
	operator := solana.NewWallet()
	message := []byte("serialized message bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req signRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "op-key-1", req.KeyID)

		raw, err := base64.StdEncoding.DecodeString(req.Message)
		require.NoError(t, err)
		require.Equal(t, message, raw)

		sig, err := operator.PrivateKey.Sign(raw)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(signResponse{Signature: sig.String()})
	}))
	defer srv.Close()

	s := NewHTTPSigner(srv.URL, &nopLogger)
	sig, err := s.Sign(context.Background(), message, "op-key-1")
	require.NoError(t, err)
	require.True(t, sig.Verify(operator.PublicKey(), message))
}

func TestHTTPSigner_Refusal(t *testing.T) {
	nopLogger := zerolog.Nop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(signResponse{Error: "key disabled"})
	}))
	defer srv.Close()

	s := NewHTTPSigner(srv.URL, &nopLogger)
	_, err := s.Sign(context.Background(), []byte("msg"), "op-key-1")
	require.ErrorContains(t, err, "key disabled")
}

func TestHTTPSigner_MalformedSignature(t *testing.T) {
	nopLogger := zerolog.Nop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(signResponse{Signature: "not-base58!!"})
	}))
	defer srv.Close()

	s := NewHTTPSigner(srv.URL, &nopLogger)
	_, err := s.Sign(context.Background(), []byte("msg"), "op-key-1")
	require.ErrorContains(t, err, "malformed signature")
}
