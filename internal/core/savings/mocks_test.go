package savings

import (
	"NestVault/internal/core/ports"
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
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

type MockSigner struct {
	mock.Mock
}

var _ ports.RemoteSigner = (*MockSigner)(nil)

func (m *MockSigner) Sign(ctx context.Context, message []byte, keyID string) (solana.Signature, error) {
	args := m.Called(ctx, message, keyID)
	return args.Get(0).(solana.Signature), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

var _ ports.EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) PublishEntryRecorded(ctx context.Context, event ports.EntryRecordedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

var _ ports.OpsNotifier = (*MockNotifier)(nil)

func (m *MockNotifier) Alert(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

// fakeCache is a plain map store for builder tests.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

var _ ports.DescriptorCache = (*fakeCache)(nil)

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}
