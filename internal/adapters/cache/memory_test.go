package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_ExpiryWithFakeClock(t *testing.T) {
	c := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "bank:abc", []byte(`{"mint":"x"}`), 5*time.Minute)

	got, ok := c.Get(ctx, "bank:abc")
	require.True(t, ok)
	require.Equal(t, []byte(`{"mint":"x"}`), got)

	// Just before expiry the entry is still served.
	now = now.Add(5 * time.Minute)
	_, ok = c.Get(ctx, "bank:abc")
	require.True(t, ok)

	// Past expiry it is gone and stays gone.
	now = now.Add(time.Second)
	_, ok = c.Get(ctx, "bank:abc")
	require.False(t, ok)
	_, ok = c.Get(ctx, "bank:abc")
	require.False(t, ok)
}

func TestMemory_MissingKey(t *testing.T) {
	c := NewMemory()
	_, ok := c.Get(context.Background(), "nope")
	require.False(t, ok)
}

func TestMemory_Overwrite(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("old"), time.Minute)
	c.Set(ctx, "k", []byte("new"), time.Minute)

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, []byte("new"), got)
}
