package savings

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

const (
	broadcastAttempts = 3
	broadcastBackoff  = 500 * time.Millisecond
	confirmPoll       = 2 * time.Second

	// confirmMaxProbeFailures caps consecutive rounds in which neither the
	// signature status nor the block height could be observed. Without it a
	// dead RPC and a deadline-free context would poll forever.
	confirmMaxProbeFailures = 10
)

// Submitter co-signs a guard-approved transaction via the remote custody
// signer, broadcasts it and waits for confirmation. A once-broadcast
// payload is never resubmitted with altered contents: different content
// under a new signature would not match the prior signature and risks
// duplicate effects.
type Submitter struct {
	chain    ports.ChainClient
	signer   ports.RemoteSigner
	keyID    string
	operator solana.PublicKey
	poll     time.Duration
	log      zerolog.Logger
}

func NewSubmitter(chain ports.ChainClient, signer ports.RemoteSigner, keyID string, operator solana.PublicKey, baseLogger *zerolog.Logger) *Submitter {
	return &Submitter{
		chain:    chain,
		signer:   signer,
		keyID:    keyID,
		operator: operator,
		poll:     confirmPoll,
		log:      baseLogger.With().Str("component", "submitter").Logger(),
	}
}

// SponsorAndSubmit requests the operator signature, merges it into the fee
// payer slot, broadcasts with bounded retries and waits for confirmation
// until the checkpoint fetched after broadcast expires.
//
// Failure categories stay distinct: ErrSigningFailed and
// ErrBroadcastFailed mean nothing reached the chain and no signature is
// returned; ErrExecutionFailed means the transaction landed but reverted,
// and the signature is returned alongside the error. Expired confirmation
// waits return the signature with no error; reconciliation resolves the
// outcome later, never a resubmission.
func (s *Submitter) SponsorAndSubmit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	msgBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: cannot serialize message: %v", domain.ErrInvalidTransaction, err)
	}

	opSig, err := s.signer.Sign(ctx, msgBytes, s.keyID)
	if err != nil {
		s.log.Error().Err(err).Msg("Remote signer refused to co-sign")
		return solana.Signature{}, fmt.Errorf("%w: %v", domain.ErrSigningFailed, err)
	}
	// The guard has already proven slot 0 is the operator's and empty.
	tx.Signatures[0] = opSig

	sig, err := s.broadcast(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}

	checkpoint, err := s.chain.LatestCheckpoint(ctx)
	if err != nil {
		// Broadcast already happened; the effect is on-chain regardless of
		// whether we can bound the wait. Report unknown.
		s.log.Warn().Err(err).Str("signature", sig.String()).Msg("Broadcast succeeded but checkpoint fetch failed, confirmation unknown")
		return sig, nil
	}

	return s.awaitConfirmation(ctx, sig, checkpoint)
}

func (s *Submitter) broadcast(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var lastErr error
	for attempt := 1; attempt <= broadcastAttempts; attempt++ {
		sig, err := s.chain.SendTransaction(ctx, tx)
		if err == nil {
			s.log.Info().Str("signature", sig.String()).Int("attempt", attempt).Msg("Transaction broadcast")
			return sig, nil
		}
		lastErr = err
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("Broadcast attempt failed")

		if attempt == broadcastAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return solana.Signature{}, fmt.Errorf("%w: %v", domain.ErrBroadcastFailed, ctx.Err())
		case <-time.After(broadcastBackoff):
		}
	}
	return solana.Signature{}, fmt.Errorf("%w: %v", domain.ErrBroadcastFailed, lastErr)
}

// awaitConfirmation polls the signature status until confirmation or until
// the checkpoint's last valid block height passes. The wait is bounded by
// checkpoint expiry, and by a probe-failure cap when the RPC stops
// answering and expiry can no longer be observed.
func (s *Submitter) awaitConfirmation(ctx context.Context, sig solana.Signature, checkpoint ports.Checkpoint) (solana.Signature, error) {
	probeFailures := 0
	for {
		observed := false

		status, err := s.chain.Status(ctx, sig)
		if err == nil {
			observed = true
		}
		if err == nil && status != nil {
			if status.ExecutionErr != "" {
				s.log.Error().Str("signature", sig.String()).Str("execution_err", status.ExecutionErr).Msg("Transaction landed but reverted")
				return sig, fmt.Errorf("%w: %s", domain.ErrExecutionFailed, status.ExecutionErr)
			}
			if status.Confirmed || status.Finalized {
				return sig, nil
			}
		}

		height, hErr := s.chain.BlockHeight(ctx)
		if hErr == nil {
			observed = true
			if height > checkpoint.LastValidBlockHeight {
				s.log.Warn().Str("signature", sig.String()).Uint64("height", height).Msg("Checkpoint expired before confirmation, outcome unknown")
				return sig, nil
			}
		}

		if observed {
			probeFailures = 0
		} else {
			probeFailures++
			if probeFailures >= confirmMaxProbeFailures {
				s.log.Warn().Str("signature", sig.String()).Int("probe_failures", probeFailures).Msg("RPC unreachable during confirmation wait, outcome unknown")
				return sig, nil
			}
		}

		select {
		case <-ctx.Done():
			// Cancellation only stops the waiting; the broadcast effect is
			// irreversible and reconciliation will resolve it later.
			s.log.Warn().Str("signature", sig.String()).Msg("Confirmation wait cancelled")
			return sig, nil
		case <-time.After(s.poll):
		}
	}
}
