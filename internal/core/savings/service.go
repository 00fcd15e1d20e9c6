package savings

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"NestVault/internal/shared/fixedpoint"
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// SendRequest is a user-signed transaction awaiting sponsorship. The
// transaction bytes arrive base64-decoded from the handler.
type SendRequest struct {
	SignedTransaction []byte
	Wallet            solana.PublicKey
	AccountType       domain.AccountType
	Declared          domain.Direction
}

// Accounting is the UI-facing view of a recorded movement.
type Accounting struct {
	Direction   string `json:"direction"`
	AmountUI    string `json:"amountUi"`
	FeeUI       string `json:"feeUi"`
	PrincipalUI string `json:"principalUi"`
	InterestUI  string `json:"interestUi"`
}

// SendResult reports what happened to a sponsored transaction. Recorded
// can be false while Signature is set: funds moved but bookkeeping could
// not complete, and Reason says why. Custody correctness outranks
// bookkeeping completeness.
type SendResult struct {
	Signature  string
	Recorded   bool
	Reason     string
	Accounting *Accounting
}

// Service runs the co-signing pipeline: guard, sponsor and submit,
// reconcile from balance deltas, record.
type Service struct {
	guard     *Guard
	submitter *Submitter
	recorder  *Recorder
	entries   ports.LedgerRepository
	chain     ports.ChainClient
	notifier  ports.OpsNotifier
	treasury  solana.PublicKey
	mint      solana.PublicKey
	log       zerolog.Logger
}

// NewService wires the pipeline. notifier may be nil when ops alerts are
// disabled.
func NewService(guard *Guard, submitter *Submitter, recorder *Recorder, entries ports.LedgerRepository, chain ports.ChainClient, notifier ports.OpsNotifier, treasury, mint solana.PublicKey, baseLogger *zerolog.Logger) *Service {
	return &Service{
		guard:     guard,
		submitter: submitter,
		recorder:  recorder,
		entries:   entries,
		chain:     chain,
		notifier:  notifier,
		treasury:  treasury,
		mint:      mint,
		log:       baseLogger.With().Str("component", "savings_service").Logger(),
	}
}

// Send validates, co-signs, broadcasts and records one transaction.
// Guard approval happens before the sign request, which happens before
// broadcast; a failed guard check never broadcasts, and a failed
// broadcast returns no signature because nothing happened on-chain.
func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(req.SignedTransaction))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable transaction: %v", domain.ErrInvalidTransaction, err)
	}

	if err := s.guard.Validate(tx, req.Wallet); err != nil {
		return nil, err
	}

	sig, err := s.submitter.SponsorAndSubmit(ctx, tx)
	if err != nil {
		if errors.Is(err, domain.ErrExecutionFailed) {
			// Landed but reverted: the signature exists, so return it.
			s.alert(ctx, fmt.Sprintf("on-chain execution failure for %s (wallet %s)", sig, req.Wallet))
			return &SendResult{Signature: sig.String()}, err
		}
		return nil, err
	}

	result := &SendResult{Signature: sig.String()}

	snap, err := s.chain.BalanceSnapshot(ctx, sig)
	if err != nil || snap == nil {
		// Funds may have moved; never resubmit, just report unrecorded.
		s.log.Warn().Err(err).Str("signature", sig.String()).Msg("Balance snapshot unavailable, transaction left unrecorded")
		s.alert(ctx, fmt.Sprintf("transaction %s confirmed state unknown, left unrecorded", sig))
		result.Reason = "confirmation_unknown"
		return result, nil
	}
	if snap.Failed {
		s.alert(ctx, fmt.Sprintf("on-chain execution failure for %s (wallet %s)", sig, req.Wallet))
		return result, fmt.Errorf("%w: transaction %s reverted", domain.ErrExecutionFailed, sig)
	}

	prior, err := s.entries.ListByAccount(ctx, req.Wallet.String(), req.AccountType)
	if err != nil {
		s.log.Error().Err(err).Str("signature", sig.String()).Msg("Ledger unavailable during reconciliation")
		s.alert(ctx, fmt.Sprintf("ledger unavailable, %s unrecorded", sig))
		result.Reason = "ledger_unavailable"
		return result, nil
	}

	rec := Reconcile(snap, req.Wallet, s.treasury, s.mint, req.Declared, domain.PrincipalRemaining(prior))
	if rec.Indeterminate {
		// Zero net delta: reported as unrecorded rather than an error,
		// since retrying a determinate on-chain outcome is unsafe.
		s.log.Info().Str("signature", sig.String()).Msg("Zero balance delta, transaction left unrecorded")
		result.Reason = "zero_delta"
		return result, nil
	}

	entry := &domain.LedgerEntry{
		Wallet:      req.Wallet.String(),
		AccountType: req.AccountType,
		Direction:   rec.Direction,
		GrossAmount: rec.Gross,
		Principal:   rec.Principal,
		Interest:    rec.Interest,
		Fee:         rec.Fee,
		Signature:   sig.String(),
	}
	if _, err := s.recorder.Record(ctx, entry); err != nil {
		s.alert(ctx, fmt.Sprintf("ledger write failed for %s: %v", sig, err))
		result.Reason = "ledger_write_failed"
		return result, nil
	}

	result.Recorded = true
	result.Accounting = &Accounting{
		Direction:   string(rec.Direction),
		AmountUI:    fixedpoint.FromMinor(rec.Gross),
		FeeUI:       fixedpoint.FromMinor(rec.Fee),
		PrincipalUI: fixedpoint.FromMinor(rec.Principal),
		InterestUI:  fixedpoint.FromMinor(rec.Interest),
	}
	return result, nil
}

func (s *Service) alert(ctx context.Context, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Alert(ctx, text); err != nil {
		s.log.Warn().Err(err).Msg("Ops alert delivery failed")
	}
}
