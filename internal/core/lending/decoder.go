package lending

import (
	"NestVault/internal/core/domain"
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// The protocol ships no reliable name -> schema mapping for raw account
// data, so decoding is a two-stage dispatch: try the known kinds by name
// in a fixed order and accept a single clean parse; otherwise match the
// record's leading bytes against each kind's content-hash discriminator.
// Exactly one kind must resolve either way.

const discriminatorLen = 8

// Discriminator returns the 8-byte content-hash prefix identifying a
// record kind: sha256("account:<name>") truncated.
func Discriminator(kind RecordKind) [discriminatorLen]byte {
	sum := sha256.Sum256([]byte("account:" + string(kind)))
	var d [discriminatorLen]byte
	copy(d[:], sum[:discriminatorLen])
	return d
}

// schema couples a kind name with its borsh decode and a sanity check.
// A name-based parse is "clean" only when it consumes the body exactly
// and the result passes the check; borsh will happily read garbage into
// fixed-width fields.
type schema struct {
	kind   RecordKind
	decode func(dec *bin.Decoder) (Record, error)
	sane   func(rec Record) bool
}

// schemas is the ordered name list tried first. Order matters: the most
// common record kind goes first.
var schemas = []schema{
	{
		kind: KindMarginAccount,
		decode: func(dec *bin.Decoder) (Record, error) {
			var acc MarginAccount
			if err := dec.Decode(&acc); err != nil {
				return nil, err
			}
			return &acc, nil
		},
		sane: func(rec Record) bool {
			acc := rec.(*MarginAccount)
			if acc.Group.IsZero() || acc.Authority.IsZero() {
				return false
			}
			for _, b := range acc.LendingAccount.Balances {
				if b.Active > 1 {
					return false
				}
			}
			return true
		},
	},
	{
		kind: KindBank,
		decode: func(dec *bin.Decoder) (Record, error) {
			var bank Bank
			if err := dec.Decode(&bank); err != nil {
				return nil, err
			}
			return &bank, nil
		},
		sane: func(rec Record) bool {
			bank := rec.(*Bank)
			return !bank.Mint.IsZero() && !bank.Group.IsZero() &&
				!bank.LiquidityVault.IsZero() && bank.MintDecimals <= 18
		},
	},
	{
		kind: KindGroup,
		decode: func(dec *bin.Decoder) (Record, error) {
			var grp Group
			if err := dec.Decode(&grp); err != nil {
				return nil, err
			}
			return &grp, nil
		},
		sane: func(rec Record) bool {
			return !rec.(*Group).Admin.IsZero()
		},
	},
}

// DecodeRecord resolves raw account data to exactly one known record kind.
func DecodeRecord(data []byte) (Record, error) {
	if len(data) < discriminatorLen {
		return nil, fmt.Errorf("%w: record shorter than discriminator (%d bytes)", domain.ErrDecodeFailure, len(data))
	}
	body := data[discriminatorLen:]

	// Stage one: name-ordered strict attempts. Accept only a single clean
	// parse; zero or several drops through to the discriminator table.
	var (
		matched Record
		count   int
	)
	for _, s := range schemas {
		dec := bin.NewBorshDecoder(body)
		rec, err := s.decode(dec)
		if err != nil || dec.Remaining() != 0 || !s.sane(rec) {
			continue
		}
		matched = rec
		count++
	}
	if count == 1 {
		return matched, nil
	}

	// Stage two: the discriminator is authoritative. A hash match decodes
	// without the strict-length or sanity gates, so records the protocol
	// has grown a tail onto still resolve.
	for _, s := range schemas {
		d := Discriminator(s.kind)
		if bytes.Equal(data[:discriminatorLen], d[:]) {
			rec, err := s.decode(bin.NewBorshDecoder(body))
			if err != nil {
				return nil, fmt.Errorf("%w: %s matched by discriminator but failed to parse: %v", domain.ErrDecodeFailure, s.kind, err)
			}
			return rec, nil
		}
	}

	if count > 1 {
		return nil, fmt.Errorf("%w: %d record kinds parse cleanly and no discriminator matches", domain.ErrDecodeFailure, count)
	}
	return nil, fmt.Errorf("%w: no known record kind matches", domain.ErrDecodeFailure)
}

// DecodeMarginAccount decodes data and requires it to be a margin account.
func DecodeMarginAccount(data []byte) (*MarginAccount, error) {
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	acc, ok := rec.(*MarginAccount)
	if !ok {
		return nil, fmt.Errorf("%w: expected %s, decoded %s", domain.ErrDecodeFailure, KindMarginAccount, rec.Kind())
	}
	return acc, nil
}

// DecodeBank decodes data and requires it to be a bank record.
func DecodeBank(data []byte) (*Bank, error) {
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, err
	}
	bank, ok := rec.(*Bank)
	if !ok {
		return nil, fmt.Errorf("%w: expected %s, decoded %s", domain.ErrDecodeFailure, KindBank, rec.Kind())
	}
	return bank, nil
}
