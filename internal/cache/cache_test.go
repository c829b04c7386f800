package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := New[string, int]()
	defer c.Close()

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	c.Set(ctx, "a", 1, time.Minute)
	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set(ctx, "a", 2, time.Minute)
	v, _ = c.Get(ctx, "a")
	assert.Equal(t, 2, v)

	c.Delete(ctx, "a")
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := New[string, string]()
	defer c.Close()

	c.Set(ctx, "short", "v", 20*time.Millisecond)
	c.Set(ctx, "forever", "v", 0)

	_, ok := c.Get(ctx, "short")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "short")
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok)

	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond,
		"janitor should evict the expired entry")
}

func TestCache_ReadsDoNotExtendLifetime(t *testing.T) {
	ctx := context.Background()
	c := New[string, int]()
	defer c.Close()

	c.Set(ctx, "k", 1, 50*time.Millisecond)

	// Reading every few milliseconds would keep a touched entry alive
	// forever.
	expired := false
	for deadline := time.Now().Add(500 * time.Millisecond); time.Now().Before(deadline); {
		if _, ok := c.Get(ctx, "k"); !ok {
			expired = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, expired)
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New[string, int]()
	c.Close()
	assert.NotPanics(t, c.Close)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := New[int, int]()
	defer c.Close()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				c.Set(ctx, j, i, time.Minute)
				c.Get(ctx, j)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, c.Len())
}
