package lending

import (
	"NestVault/internal/core/domain"
	"NestVault/internal/core/ports"
	"bytes"
	"context"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockChainClient struct {
	mock.Mock
}

var _ ports.ChainClient = (*MockChainClient)(nil)

func (m *MockChainClient) AccountData(ctx context.Context, key solana.PublicKey) (*ports.AccountInfo, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.AccountInfo), args.Error(1)
}

func (m *MockChainClient) LatestCheckpoint(ctx context.Context) (ports.Checkpoint, error) {
	args := m.Called(ctx)
	return args.Get(0).(ports.Checkpoint), args.Error(1)
}

func (m *MockChainClient) BlockHeight(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChainClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockChainClient) Status(ctx context.Context, sig solana.Signature) (*ports.SignatureStatus, error) {
	args := m.Called(ctx, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.SignatureStatus), args.Error(1)
}

func (m *MockChainClient) BalanceSnapshot(ctx context.Context, sig solana.Signature) (*ports.BalanceSnapshot, error) {
	args := m.Called(ctx, sig)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.BalanceSnapshot), args.Error(1)
}

// fakeCache is a plain map store; TTL handling is the cache adapter's
// concern, not the resolver's.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.entries[key] = value
}

// --- Tests ---

func encodeBank(t *testing.T, bank *Bank) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(bank))
	d := Discriminator(KindBank)
	return append(d[:], buf.Bytes()...)
}

func TestDescriptorResolver_ResolveAndCache(t *testing.T) {
	nopLogger := zerolog.Nop()
	program := solana.NewWallet().PublicKey()
	group := solana.NewWallet().PublicKey()
	bankAddr := solana.NewWallet().PublicKey()

	bank := testBank()
	bank.Group = group

	chain := new(MockChainClient)
	chain.On("AccountData", mock.Anything, bankAddr).
		Return(&ports.AccountInfo{Owner: program, Data: encodeBank(t, bank)}, nil).
		Once()

	resolver := NewDescriptorResolver(chain, newFakeCache(), program, group, &nopLogger)

	d, err := resolver.Resolve(context.Background(), bankAddr)
	require.NoError(t, err)
	require.Equal(t, bank.Mint, d.Mint)
	require.Equal(t, bank.LiquidityVault, d.LiquidityVault)
	require.Equal(t, bank.OracleKeys[0], d.Oracle)
	require.Equal(t, uint8(6), d.MintDecimals)

	// Second resolve must come from cache: AccountData is .Once().
	again, err := resolver.Resolve(context.Background(), bankAddr)
	require.NoError(t, err)
	require.Equal(t, d, again)
	chain.AssertExpectations(t)
}

func TestDescriptorResolver_GroupMismatch(t *testing.T) {
	nopLogger := zerolog.Nop()
	program := solana.NewWallet().PublicKey()
	bankAddr := solana.NewWallet().PublicKey()

	chain := new(MockChainClient)
	chain.On("AccountData", mock.Anything, bankAddr).
		Return(&ports.AccountInfo{Owner: program, Data: encodeBank(t, testBank())}, nil)

	resolver := NewDescriptorResolver(chain, newFakeCache(), program, solana.NewWallet().PublicKey(), &nopLogger)

	_, err := resolver.Resolve(context.Background(), bankAddr)
	require.ErrorIs(t, err, domain.ErrDecodeFailure)
}

func TestDescriptorResolver_MissingOracle(t *testing.T) {
	nopLogger := zerolog.Nop()
	program := solana.NewWallet().PublicKey()
	group := solana.NewWallet().PublicKey()
	bankAddr := solana.NewWallet().PublicKey()

	bank := testBank()
	bank.Group = group
	bank.OracleKeys = [5]solana.PublicKey{}

	chain := new(MockChainClient)
	chain.On("AccountData", mock.Anything, bankAddr).
		Return(&ports.AccountInfo{Owner: program, Data: encodeBank(t, bank)}, nil)

	resolver := NewDescriptorResolver(chain, newFakeCache(), program, group, &nopLogger)

	_, err := resolver.Resolve(context.Background(), bankAddr)
	require.ErrorIs(t, err, domain.ErrDecodeFailure)
}

func TestDescriptorResolver_WrongOwner(t *testing.T) {
	nopLogger := zerolog.Nop()
	program := solana.NewWallet().PublicKey()
	group := solana.NewWallet().PublicKey()
	bankAddr := solana.NewWallet().PublicKey()

	chain := new(MockChainClient)
	chain.On("AccountData", mock.Anything, bankAddr).
		Return(&ports.AccountInfo{Owner: solana.TokenProgramID, Data: encodeBank(t, testBank())}, nil)

	resolver := NewDescriptorResolver(chain, newFakeCache(), program, group, &nopLogger)

	_, err := resolver.Resolve(context.Background(), bankAddr)
	require.ErrorIs(t, err, domain.ErrDecodeFailure)
}
