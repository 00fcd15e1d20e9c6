package lending

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// descriptorTTL bounds staleness of cached bank descriptors. Oracle
// assignment is stable, so five minutes of staleness is safe. Token
// program and mint decimals are deliberately NOT cached here: the builder
// re-derives them per request so a mint reconfiguration is never masked.
const descriptorTTL = 5 * time.Minute

// DescriptorResolver turns a bank address into its {oracle, vault, mint}
// descriptor, reading the chain on cache misses.
type DescriptorResolver struct {
	chain     ports.ChainClient
	cache     ports.DescriptorCache
	programID solana.PublicKey
	group     solana.PublicKey
	log       zerolog.Logger
}

// NewDescriptorResolver creates a resolver bound to one protocol
// deployment (program id + group).
func NewDescriptorResolver(chain ports.ChainClient, cache ports.DescriptorCache, programID, group solana.PublicKey, baseLogger *zerolog.Logger) *DescriptorResolver {
	return &DescriptorResolver{
		chain:     chain,
		cache:     cache,
		programID: programID,
		group:     group,
		log:       baseLogger.With().Str("component", "descriptor_resolver").Logger(),
	}
}

// Resolve returns the bank's descriptor, from cache when fresh.
func (r *DescriptorResolver) Resolve(ctx context.Context, bank solana.PublicKey) (*BankDescriptor, error) {
	key := "bank:" + bank.String()
	if raw, ok := r.cache.Get(ctx, key); ok {
		var d BankDescriptor
		if err := json.Unmarshal(raw, &d); err == nil {
			return &d, nil
		}
		r.log.Warn().Str("bank", bank.String()).Msg("Corrupt cached descriptor, re-deriving")
	}

	info, err := r.chain.AccountData(ctx, bank)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: bank account %s not found", domain.ErrDecodeFailure, bank)
	}
	if !info.Owner.Equals(r.programID) {
		return nil, fmt.Errorf("%w: bank %s owned by %s, not the lending program", domain.ErrDecodeFailure, bank, info.Owner)
	}

	rec, err := DecodeBank(info.Data)
	if err != nil {
		return nil, err
	}
	if !rec.Group.Equals(r.group) {
		return nil, fmt.Errorf("%w: bank %s belongs to group %s, not the configured group", domain.ErrDecodeFailure, bank, rec.Group)
	}
	oracle, ok := rec.Oracle()
	if !ok {
		return nil, fmt.Errorf("%w: bank %s has no oracle key", domain.ErrDecodeFailure, bank)
	}

	d := &BankDescriptor{
		Bank:           bank,
		Oracle:         oracle,
		Mint:           rec.Mint,
		Group:          rec.Group,
		LiquidityVault: rec.LiquidityVault,
		MintDecimals:   rec.MintDecimals,
	}
	// Best-effort populate; entries are pure functions of chain state, so
	// concurrent writers storing the same value is fine.
	if raw, err := json.Marshal(d); err == nil {
		r.cache.Set(ctx, key, raw, descriptorTTL)
	}
	return d, nil
}
