package lending

import (
	"github.com/gagliardetto/solana-go"
)

// RecordKind names the on-chain record schemas this service understands.
// The names must match the protocol's own account names exactly: the
// discriminator is a content hash of "account:<name>".
type RecordKind string

const (
	KindMarginAccount RecordKind = "MarginfiAccount"
	KindBank          RecordKind = "Bank"
	KindGroup         RecordKind = "MarginfiGroup"
)

// Record is the tagged union over the finite set of known record kinds.
// Decoding never yields an untyped map: callers switch on the concrete
// type or on Kind().
type Record interface {
	Kind() RecordKind
}

// I80F48 is the protocol's 128-bit fixed-point number. This service only
// needs zero-ness (is a balance live), never its numeric value.
type I80F48 [16]byte

func (v I80F48) IsZero() bool {
	for _, b := range v {
		if b != 0 {
			return false
		}
	}
	return true
}

// Balance is one slot of a margin account's lending positions.
type Balance struct {
	Active               uint8
	Bank                 solana.PublicKey
	AssetShares          I80F48
	LiabilityShares      I80F48
	EmissionsOutstanding I80F48
	LastUpdate           uint64
	Padding              [1]uint64
}

// IsActive reports whether this slot holds a live asset position: the
// active flag is set and a non-zero share count remains.
func (b Balance) IsActive() bool {
	return b.Active == 1 && !b.AssetShares.IsZero()
}

// LendingAccount is the fixed-capacity balance table inside a margin
// account.
type LendingAccount struct {
	Balances [16]Balance
}

// MarginAccount is a user's lending-protocol sub-account.
type MarginAccount struct {
	Group          solana.PublicKey
	Authority      solana.PublicKey
	LendingAccount LendingAccount
	AccountFlags   uint64
	Padding        [63]uint64
}

func (MarginAccount) Kind() RecordKind { return KindMarginAccount }

// ActiveBalances returns the live asset positions in slot order.
func (a *MarginAccount) ActiveBalances() []Balance {
	var out []Balance
	for _, b := range a.LendingAccount.Balances {
		if b.IsActive() {
			out = append(out, b)
		}
	}
	return out
}

// Bank is a per-asset pool record.
type Bank struct {
	Mint                        solana.PublicKey
	MintDecimals                uint8
	Group                       solana.PublicKey
	AssetShareValue             I80F48
	LiabilityShareValue         I80F48
	LiquidityVault              solana.PublicKey
	LiquidityVaultBump          uint8
	LiquidityVaultAuthorityBump uint8
	InsuranceVault              solana.PublicKey
	OracleSetup                 uint8
	OracleKeys                  [5]solana.PublicKey
	Padding                     [16]uint64
}

func (Bank) Kind() RecordKind { return KindBank }

// Oracle returns the first non-default oracle key. Oracle assignment is
// stable for a bank's lifetime, so this is safe to cache.
func (b *Bank) Oracle() (solana.PublicKey, bool) {
	for _, k := range b.OracleKeys {
		if !k.IsZero() {
			return k, true
		}
	}
	return solana.PublicKey{}, false
}

// Group is the protocol's top-level grouping record. Decoded only to
// confirm membership; no fields beyond the admin are consumed.
type Group struct {
	Admin   solana.PublicKey
	Padding [32]uint64
}

func (Group) Kind() RecordKind { return KindGroup }

// BankDescriptor is the cached slice of a bank record the withdrawal
// builder needs. Cached with a short TTL keyed by bank address.
type BankDescriptor struct {
	Bank           solana.PublicKey `json:"bank"`
	Oracle         solana.PublicKey `json:"oracle"`
	Mint           solana.PublicKey `json:"mint"`
	Group          solana.PublicKey `json:"group"`
	LiquidityVault solana.PublicKey `json:"liquidity_vault"`
	MintDecimals   uint8            `json:"mint_decimals"`
}
