package savings

import (
	"NestVault/internal/core/domain"
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/rs/zerolog"
)

// Guard validates a user-submitted transaction before the operator adds
// its signature. Once the operator signs it is financially exposed as fee
// payer, so every check fails closed: it must be provably impossible for
// the instruction set to change after approval or to touch operator or
// treasury funds outside the declared intent. Validate has no side
// effects.
type Guard struct {
	operator solana.PublicKey
	allowed  map[solana.PublicKey]struct{}
	log      zerolog.Logger
}

// NewGuard builds a guard for one operator key. The instruction allow-list
// is fixed: system, compute budget, both token program variants, the
// associated-token program and the configured lending program.
func NewGuard(operator, lendingProgram solana.PublicKey, baseLogger *zerolog.Logger) *Guard {
	allowed := map[solana.PublicKey]struct{}{
		solana.SystemProgramID:                   {},
		computebudget.ProgramID:                  {},
		solana.TokenProgramID:                    {},
		solana.Token2022ProgramID:                {},
		solana.SPLAssociatedTokenAccountProgramID: {},
		lendingProgram:                           {},
	}
	return &Guard{
		operator: operator,
		allowed:  allowed,
		log:      baseLogger.With().Str("component", "tx_guard").Logger(),
	}
}

func reject(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidTransaction, reason)
}

// Validate checks a transaction carrying the user's signature, with the
// operator slot still empty. It returns nil or a specific rejection.
func (g *Guard) Validate(tx *solana.Transaction, user solana.PublicKey) error {
	msg := &tx.Message

	if msg.GetVersion() != solana.MessageVersionV0 {
		return reject("unsupported message version")
	}

	// Lookup tables are mutable after signing; banning them outright is
	// the only way the approved account set stays fixed.
	if len(msg.AddressTableLookups) > 0 {
		return reject("address lookup tables are not allowed")
	}

	numRequired := int(msg.Header.NumRequiredSignatures)
	if numRequired < 2 || numRequired > 3 {
		return reject(fmt.Sprintf("required signer count %d outside {2,3}", numRequired))
	}
	if len(msg.AccountKeys) < numRequired {
		return reject("account keys shorter than required signer count")
	}
	if len(tx.Signatures) != numRequired {
		return reject(fmt.Sprintf("signature slot count %d does not match required signers %d", len(tx.Signatures), numRequired))
	}

	if !msg.AccountKeys[0].Equals(g.operator) {
		return reject("invalid fee payer")
	}

	// The operator signs last, never pre-signs: its slot must be empty.
	if !tx.Signatures[0].IsZero() {
		return reject("operator signature slot is not empty")
	}

	userIsSigner := false
	for i := 1; i < numRequired; i++ {
		if msg.AccountKeys[i].Equals(user) {
			userIsSigner = true
		}
		// No unsigned gaps may remain before sponsoring.
		if tx.Signatures[i].IsZero() {
			return reject(fmt.Sprintf("required signer %s has not signed", msg.AccountKeys[i]))
		}
	}
	if !userIsSigner {
		return reject("user is not a required signer")
	}

	for i, ix := range msg.Instructions {
		program, err := msg.Program(ix.ProgramIDIndex)
		if err != nil {
			return reject(fmt.Sprintf("instruction %d has an unresolvable program index", i))
		}
		if _, ok := g.allowed[program]; !ok {
			g.log.Warn().Str("program", program.String()).Msg("Rejected transaction targeting disallowed program")
			return reject(fmt.Sprintf("instruction %d targets disallowed program %s", i, program))
		}
	}

	return nil
}
