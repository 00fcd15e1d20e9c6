package savings

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/lending"
	"NestVault/internal/core/ports"
	"NestVault/internal/shared/fixedpoint"
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/rs/zerolog"
)

const (
	// mintDecimalsOffset is where the decimals byte sits in an SPL mint
	// account (after the 36-byte authority option and the u64 supply).
	mintDecimalsOffset = 44
	minMintAccountLen  = 82

	defaultComputeUnits     uint32 = 400_000
	defaultComputeUnitPrice uint64 = 10_000
)

// WithdrawRequest is the user-facing build input. The amount is a display
// string; all internal math is minor units.
type WithdrawRequest struct {
	Wallet         solana.PublicKey
	AmountUI       string
	WithdrawAll    bool
	EnsureAccounts bool
}

// BuiltWithdrawal is the unsigned transaction plus the metadata the user
// needs before signing.
type BuiltWithdrawal struct {
	Transaction    []byte
	Bank           solana.PublicKey
	FeeMinor       int64
	NetMinor       int64
	RequiredSigner solana.PublicKey
	FeePayer       solana.PublicKey
	ComputeUnits   uint32
	WithdrawAll    bool
}

// WithdrawBuilder assembles protocol-correct unsigned withdrawal
// transactions. RPC unavailability is returned as-is; retrying is the
// caller's responsibility.
type WithdrawBuilder struct {
	chain     ports.ChainClient
	resolver  *lending.DescriptorResolver
	positions ports.PositionRepository
	programID solana.PublicKey
	group     solana.PublicKey
	mint      solana.PublicKey
	operator  solana.PublicKey
	treasury  solana.PublicKey
	feeState  solana.PublicKey
	feePPM    int64
	now       func() time.Time
	log       zerolog.Logger
}

// WithdrawBuilderConfig carries the chain addresses the builder is bound to.
type WithdrawBuilderConfig struct {
	ProgramID      solana.PublicKey
	Group          solana.PublicKey
	SettlementMint solana.PublicKey
	Operator       solana.PublicKey
	Treasury       solana.PublicKey
	FeeState       solana.PublicKey
	FeePPM         int64
}

func NewWithdrawBuilder(chain ports.ChainClient, resolver *lending.DescriptorResolver, positions ports.PositionRepository, cfg WithdrawBuilderConfig, baseLogger *zerolog.Logger) *WithdrawBuilder {
	return &WithdrawBuilder{
		chain:     chain,
		resolver:  resolver,
		positions: positions,
		programID: cfg.ProgramID,
		group:     cfg.Group,
		mint:      cfg.SettlementMint,
		operator:  cfg.Operator,
		treasury:  cfg.Treasury,
		feeState:  cfg.FeeState,
		feePPM:    cfg.FeePPM,
		now:       time.Now,
		log:       baseLogger.With().Str("component", "withdraw_builder").Logger(),
	}
}

// Build produces the unsigned withdrawal transaction for the user to sign.
func (b *WithdrawBuilder) Build(ctx context.Context, req WithdrawRequest) (*BuiltWithdrawal, error) {
	var amount int64
	if req.AmountUI != "" {
		var err error
		amount, err = fixedpoint.ToMinor(req.AmountUI)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTransaction, err)
		}
	}

	// Withdraw-all combined with a percentage fee would make the fee leg
	// undeterminable before execution, so it silently downgrades to an
	// exact-amount request.
	withdrawAll := req.WithdrawAll
	if withdrawAll && b.feePPM > 0 {
		withdrawAll = false
		b.log.Debug().Str("wallet", req.Wallet.String()).Msg("Downgraded withdraw-all to exact amount due to non-zero fee rate")
	}
	if !withdrawAll && amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", domain.ErrInvalidTransaction)
	}

	position, err := b.resolvePosition(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}

	tokenProgram, mintDecimals, err := b.settlementMintInfo(ctx)
	if err != nil {
		return nil, err
	}

	marginAccount, err := b.fetchMarginAccount(ctx, position, req.Wallet)
	if err != nil {
		return nil, err
	}

	settlement, others, err := b.collectBanks(ctx, marginAccount)
	if err != nil {
		return nil, err
	}

	// Remaining accounts: interleaved (bank, oracle) pairs, settlement
	// bank first. The alternate token-program variant additionally needs
	// the mint prepended, and the global fee-state account always goes
	// last.
	var remaining solana.AccountMetaSlice
	if tokenProgram.Equals(solana.Token2022ProgramID) {
		remaining = append(remaining, solana.Meta(b.mint))
	}
	for _, d := range append([]*lending.BankDescriptor{settlement}, others...) {
		remaining = append(remaining,
			solana.Meta(d.Bank).WRITE(),
			solana.Meta(d.Oracle),
		)
	}
	remaining = append(remaining, solana.Meta(b.feeState))

	fee := fixedpoint.Fee(amount, b.feePPM)
	net := amount - fee

	userATA, err := associatedTokenAddress(req.Wallet, b.mint, tokenProgram)
	if err != nil {
		return nil, fmt.Errorf("deriving user token account: %w", err)
	}
	treasuryATA, err := associatedTokenAddress(b.treasury, b.mint, tokenProgram)
	if err != nil {
		return nil, fmt.Errorf("deriving treasury token account: %w", err)
	}
	vaultAuthority, err := liquidityVaultAuthority(b.programID, settlement.Bank)
	if err != nil {
		return nil, fmt.Errorf("deriving vault authority: %w", err)
	}

	// Fixed instruction order: compute budget first, account creation
	// before the withdraw, the fee leg last.
	instructions := []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(defaultComputeUnits).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(defaultComputeUnitPrice).Build(),
	}
	if req.EnsureAccounts {
		instructions = append(instructions,
			createATAIdempotentInstruction(b.operator, req.Wallet, b.mint, userATA, tokenProgram))
		if fee > 0 {
			instructions = append(instructions,
				createATAIdempotentInstruction(b.operator, b.treasury, b.mint, treasuryATA, tokenProgram))
		}
	}
	instructions = append(instructions, withdrawInstruction(
		b.programID, b.group, position, req.Wallet, userATA, vaultAuthority, settlement.LiquidityVault, tokenProgram,
		remaining, uint64(amount), withdrawAll,
	))
	if fee > 0 {
		instructions = append(instructions, transferCheckedInstruction(
			tokenProgram, userATA, b.mint, treasuryATA, req.Wallet, uint64(fee), mintDecimals,
		))
	}

	checkpoint, err := b.chain.LatestCheckpoint(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, checkpoint.Blockhash, solana.TransactionPayer(b.operator))
	if err != nil {
		return nil, fmt.Errorf("compiling transaction: %w", err)
	}
	tx.Message.SetVersion(solana.MessageVersionV0)
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serializing transaction: %w", err)
	}

	b.log.Info().
		Str("wallet", req.Wallet.String()).
		Str("bank", settlement.Bank.String()).
		Int64("amount", amount).
		Int64("fee", fee).
		Bool("withdraw_all", withdrawAll).
		Msg("Built withdrawal transaction")

	return &BuiltWithdrawal{
		Transaction:    raw,
		Bank:           settlement.Bank,
		FeeMinor:       fee,
		NetMinor:       net,
		RequiredSigner: req.Wallet,
		FeePayer:       b.operator,
		ComputeUnits:   defaultComputeUnits,
		WithdrawAll:    withdrawAll,
	}, nil
}

// resolvePosition returns the wallet's sub-account address, deriving and
// persisting it on first use.
func (b *WithdrawBuilder) resolvePosition(ctx context.Context, wallet solana.PublicKey) (solana.PublicKey, error) {
	if pos, err := b.positions.Get(ctx, wallet.String()); err == nil && pos != nil {
		return solana.PublicKeyFromBase58(pos.Account)
	} else if err != nil {
		b.log.Warn().Err(err).Str("wallet", wallet.String()).Msg("Position lookup failed, deriving address")
	}

	derived, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("margin_account"), b.group.Bytes(), wallet.Bytes()},
		b.programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving position address: %w", err)
	}

	// Best-effort persist; the derivation is deterministic either way.
	pos := &domain.ProtocolPosition{Wallet: wallet.String(), Account: derived.String(), CreatedAt: b.now()}
	if err := b.positions.Save(ctx, pos); err != nil {
		b.log.Warn().Err(err).Str("wallet", wallet.String()).Msg("Failed to persist protocol position")
	}
	return derived, nil
}

// settlementMintInfo detects the active token-program variant and the
// mint's decimals by reading the mint account. Re-derived every request,
// never cached, so a mint reconfiguration is not masked.
func (b *WithdrawBuilder) settlementMintInfo(ctx context.Context) (solana.PublicKey, uint8, error) {
	info, err := b.chain.AccountData(ctx, b.mint)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	if info == nil || len(info.Data) < minMintAccountLen {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: settlement mint account %s missing or truncated", domain.ErrDecodeFailure, b.mint)
	}
	switch {
	case info.Owner.Equals(solana.TokenProgramID), info.Owner.Equals(solana.Token2022ProgramID):
		return info.Owner, info.Data[mintDecimalsOffset], nil
	}
	return solana.PublicKey{}, 0, fmt.Errorf("%w: settlement mint owned by %s, not a token program", domain.ErrDecodeFailure, info.Owner)
}

func (b *WithdrawBuilder) fetchMarginAccount(ctx context.Context, position, wallet solana.PublicKey) (*lending.MarginAccount, error) {
	info, err := b.chain.AccountData(ctx, position)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: no protocol position at %s", domain.ErrNoActiveBalance, position)
	}
	if !info.Owner.Equals(b.programID) {
		return nil, fmt.Errorf("%w: position %s owned by %s, not the lending program", domain.ErrDecodeFailure, position, info.Owner)
	}
	acc, err := lending.DecodeMarginAccount(info.Data)
	if err != nil {
		return nil, err
	}
	if !acc.Group.Equals(b.group) {
		return nil, fmt.Errorf("%w: position belongs to group %s", domain.ErrDecodeFailure, acc.Group)
	}
	if !acc.Authority.Equals(wallet) {
		return nil, fmt.Errorf("%w: position authority %s does not match wallet", domain.ErrDecodeFailure, acc.Authority)
	}
	return acc, nil
}

// collectBanks resolves every active balance's bank descriptor and splits
// out the settlement bank.
func (b *WithdrawBuilder) collectBanks(ctx context.Context, acc *lending.MarginAccount) (settlement *lending.BankDescriptor, others []*lending.BankDescriptor, err error) {
	for _, bal := range acc.ActiveBalances() {
		d, err := b.resolver.Resolve(ctx, bal.Bank)
		if err != nil {
			return nil, nil, err
		}
		if d.Mint.Equals(b.mint) {
			settlement = d
		} else {
			others = append(others, d)
		}
	}
	if settlement == nil {
		return nil, nil, fmt.Errorf("%w: wallet holds no position in the settlement mint", domain.ErrNoActiveBalance)
	}
	return settlement, others, nil
}
