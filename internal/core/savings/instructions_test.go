package savings

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestTransferCheckedInstruction_ExactBytes(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	ix := transferCheckedInstruction(solana.TokenProgramID, source, mint, dest, owner, 1_000_000, 6)

	data, err := ix.Data()
	require.NoError(t, err)
	// opcode 12, amount 1_000_000 little-endian, 6 decimals.
	require.Equal(t, []byte{12, 0x40, 0x42, 0x0F, 0, 0, 0, 0, 0, 6}, data)

	require.Equal(t, solana.TokenProgramID, ix.ProgramID())
	accounts := ix.Accounts()
	require.Len(t, accounts, 4)
	require.Equal(t, source, accounts[0].PublicKey)
	require.True(t, accounts[0].IsWritable)
	require.Equal(t, mint, accounts[1].PublicKey)
	require.Equal(t, dest, accounts[2].PublicKey)
	require.True(t, accounts[2].IsWritable)
	require.Equal(t, owner, accounts[3].PublicKey)
	require.True(t, accounts[3].IsSigner)
}

func TestCreateATAIdempotentInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	ata := solana.NewWallet().PublicKey()

	ix := createATAIdempotentInstruction(payer, owner, mint, ata, solana.TokenProgramID)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{1}, data)
	require.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	require.Equal(t, payer, accounts[0].PublicKey)
	require.True(t, accounts[0].IsSigner)
	require.Equal(t, ata, accounts[1].PublicKey)
	require.Equal(t, solana.SystemProgramID, accounts[4].PublicKey)
	require.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)
}

func TestWithdrawInstruction_ExactAmountXorAll(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	keys := make([]solana.PublicKey, 7)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}
	remaining := solana.AccountMetaSlice{solana.Meta(solana.NewWallet().PublicKey()).WRITE()}

	exact := withdrawInstruction(program, keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], keys[6], remaining, 42_000_000, false)
	data, err := exact.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+8+1)
	require.Equal(t, instructionDiscriminator("lending_account_withdraw"), data[:8])
	require.Equal(t, uint64(42_000_000), binary.LittleEndian.Uint64(data[8:16]))
	// Option<bool> = None: no withdraw-all flag alongside an exact amount.
	require.Equal(t, byte(0), data[16])

	all := withdrawInstruction(program, keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], keys[6], remaining, 0, true)
	data, err = all.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+8+2)
	// Amount must be zero when the all flag is set, never both.
	require.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[8:16]))
	require.Equal(t, []byte{1, 1}, data[16:18])
}

func TestWithdrawInstruction_AccountOrder(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	group := solana.NewWallet().PublicKey()
	marginAccount := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()
	destination := solana.NewWallet().PublicKey()
	vaultAuthority := solana.NewWallet().PublicKey()
	vault := solana.NewWallet().PublicKey()
	bank := solana.NewWallet().PublicKey()
	oracle := solana.NewWallet().PublicKey()

	remaining := solana.AccountMetaSlice{
		solana.Meta(bank).WRITE(),
		solana.Meta(oracle),
	}
	ix := withdrawInstruction(program, group, marginAccount, authority, destination, vaultAuthority, vault, solana.TokenProgramID, remaining, 1, false)

	accounts := ix.Accounts()
	require.Len(t, accounts, 9)
	require.Equal(t, group, accounts[0].PublicKey)
	require.Equal(t, marginAccount, accounts[1].PublicKey)
	require.True(t, accounts[1].IsWritable)
	require.Equal(t, authority, accounts[2].PublicKey)
	require.True(t, accounts[2].IsSigner)
	require.Equal(t, destination, accounts[3].PublicKey)
	require.Equal(t, vaultAuthority, accounts[4].PublicKey)
	require.Equal(t, vault, accounts[5].PublicKey)
	require.Equal(t, solana.TokenProgramID, accounts[6].PublicKey)
	require.Equal(t, bank, accounts[7].PublicKey)
	require.Equal(t, oracle, accounts[8].PublicKey)
}

func TestAssociatedTokenAddress_VariantDependent(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	legacy, err := associatedTokenAddress(wallet, mint, solana.TokenProgramID)
	require.NoError(t, err)
	modern, err := associatedTokenAddress(wallet, mint, solana.Token2022ProgramID)
	require.NoError(t, err)
	require.NotEqual(t, legacy, modern)

	// Matches the stock derivation for the legacy token program.
	stock, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	require.NoError(t, err)
	require.Equal(t, stock, legacy)
}
