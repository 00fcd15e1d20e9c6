package savings

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"NestVault/internal/shared/fixedpoint"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder persists reconciled entries exactly once and keeps the derived
// aggregates in sync. The transaction signature is the idempotency key:
// duplicate calls (a client retry after an ambiguous response) observe the
// existing row and change nothing.
type Recorder struct {
	entries   ports.LedgerRepository
	accounts  ports.SavingsAccountRepository
	publisher ports.EventPublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewRecorder creates a ledger writer. publisher may be nil when event
// publishing is disabled.
func NewRecorder(entries ports.LedgerRepository, accounts ports.SavingsAccountRepository, publisher ports.EventPublisher, baseLogger *zerolog.Logger) *Recorder {
	return &Recorder{
		entries:   entries,
		accounts:  accounts,
		publisher: publisher,
		now:       time.Now,
		log:       baseLogger.With().Str("component", "ledger_recorder").Logger(),
	}
}

// Record inserts the entry if its signature is unseen and reports whether
// this call was the first writer. Only the first writer recomputes the
// aggregate, by replaying every entry for the (wallet, account type) key.
// Because the recompute is a full replay and not an increment, concurrent
// and repeated writers converge on the same aggregate.
func (r *Recorder) Record(ctx context.Context, entry *domain.LedgerEntry) (firstWriter bool, err error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}

	first, err := r.entries.InsertIfAbsent(ctx, entry)
	if err != nil {
		r.log.Error().Err(err).Str("signature", entry.Signature).Msg("Failed to insert ledger entry")
		return false, err
	}
	if !first {
		r.log.Info().Str("signature", entry.Signature).Msg("Entry already recorded, skipping aggregate recompute")
		return false, nil
	}

	// The entry is already durable past this point. A failed recompute is
	// logged, not surfaced: the aggregate is a full replay and self-heals
	// on the next write.
	all, err := r.entries.ListByAccount(ctx, entry.Wallet, entry.AccountType)
	if err != nil {
		r.log.Error().Err(err).Str("wallet", entry.Wallet).Msg("Failed to list entries for aggregate recompute")
	} else {
		acct := domain.RecomputeAccount(entry.Wallet, entry.AccountType, all, r.now())
		if err := r.accounts.Replace(ctx, &acct); err != nil {
			r.log.Error().Err(err).Str("wallet", entry.Wallet).Msg("Failed to replace savings aggregate")
		}
	}

	r.publish(ctx, entry)

	r.log.Info().
		Str("wallet", entry.Wallet).
		Str("signature", entry.Signature).
		Str("direction", string(entry.Direction)).
		Int64("gross", entry.GrossAmount).
		Msg("Ledger entry recorded")
	return true, nil
}

// publish pushes the recorded-entry event, best effort.
func (r *Recorder) publish(ctx context.Context, entry *domain.LedgerEntry) {
	if r.publisher == nil {
		return
	}
	event := ports.EntryRecordedEvent{
		EntryID:     entry.ID.String(),
		Wallet:      entry.Wallet,
		AccountType: string(entry.AccountType),
		Direction:   string(entry.Direction),
		AmountUI:    fixedpoint.FromMinor(entry.GrossAmount),
		FeeUI:       fixedpoint.FromMinor(entry.Fee),
		PrincipalUI: fixedpoint.FromMinor(entry.Principal),
		InterestUI:  fixedpoint.FromMinor(entry.Interest),
		Signature:   entry.Signature,
		RecordedAt:  entry.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := r.publisher.PublishEntryRecorded(ctx, event); err != nil {
		r.log.Warn().Err(err).Str("signature", entry.Signature).Msg("Failed to publish entry-recorded event")
	}
}
