package savings

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Raw instruction encoders for the narrow set of instructions this product
// issues. Layouts are pinned by tests; nothing here is generic.

// instructionDiscriminator is the 8-byte content hash prefixing a lending
// program instruction: sha256("global:<name>") truncated.
func instructionDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}

// associatedTokenAddress derives the token account for (wallet, mint)
// under the given token-program variant. The stock helper hardcodes the
// legacy token program, so the derivation is spelled out.
func associatedTokenAddress(wallet, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{wallet.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		solana.SPLAssociatedTokenAccountProgramID,
	)
	return addr, err
}

// liquidityVaultAuthority derives the PDA that signs vault outflows for a
// bank.
func liquidityVaultAuthority(programID, bank solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("liquidity_vault_auth"), bank.Bytes()},
		programID,
	)
	return addr, err
}

// createATAIdempotentInstruction builds the associated-token program's
// CreateIdempotent instruction (data is the single opcode byte 1): a
// no-op when the account already exists, so sponsored retries stay safe.
func createATAIdempotentInstruction(payer, owner, mint, ata, tokenProgram solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		solana.AccountMetaSlice{
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(ata).WRITE(),
			solana.Meta(owner),
			solana.Meta(mint),
			solana.Meta(solana.SystemProgramID),
			solana.Meta(tokenProgram),
		},
		[]byte{1},
	)
}

// transferCheckedInstruction encodes an SPL TransferChecked by hand.
// Layout: byte 0 = opcode 12, bytes 1..8 = amount as little-endian u64,
// byte 9 = mint decimals.
func transferCheckedInstruction(tokenProgram, source, mint, dest, owner solana.PublicKey, amount uint64, decimals uint8) solana.Instruction {
	data := make([]byte, 10)
	data[0] = 12
	binary.LittleEndian.PutUint64(data[1:9], amount)
	data[9] = decimals

	return solana.NewInstruction(
		tokenProgram,
		solana.AccountMetaSlice{
			solana.Meta(source).WRITE(),
			solana.Meta(mint),
			solana.Meta(dest).WRITE(),
			solana.Meta(owner).SIGNER(),
		},
		data,
	)
}

// withdrawInstruction encodes the lending program's withdraw. Data is the
// instruction discriminator, the amount as little-endian u64, then a
// borsh Option<bool> withdraw-all flag. Exact amount and the all flag are
// mutually exclusive: withdraw-all carries amount 0, an exact withdrawal
// carries None.
//
// remaining holds the interleaved (bank, oracle) pairs; the protocol reads
// the first pair as the withdrawn asset.
func withdrawInstruction(
	programID, group, marginAccount, authority, destination, vaultAuthority, vault, tokenProgram solana.PublicKey,
	remaining solana.AccountMetaSlice,
	amount uint64,
	withdrawAll bool,
) solana.Instruction {
	data := instructionDiscriminator("lending_account_withdraw")
	var amountBytes [8]byte
	if !withdrawAll {
		binary.LittleEndian.PutUint64(amountBytes[:], amount)
	}
	data = append(data, amountBytes[:]...)
	if withdrawAll {
		data = append(data, 1, 1)
	} else {
		data = append(data, 0)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(group),
		solana.Meta(marginAccount).WRITE(),
		solana.Meta(authority).SIGNER(),
		solana.Meta(destination).WRITE(),
		solana.Meta(vaultAuthority),
		solana.Meta(vault).WRITE(),
		solana.Meta(tokenProgram),
	}
	accounts = append(accounts, remaining...)

	return solana.NewInstruction(programID, accounts, data)
}
