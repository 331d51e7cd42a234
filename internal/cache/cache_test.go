package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	c := New()
	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key", 42)
	v, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestGetExpiresAfterTTL(t *testing.T) {
	c := New(WithTTL(10 * time.Millisecond))
	c.Set("key", "value")
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestSetEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(WithMaxEntries(2))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch a, making b the LRU entry
	c.Set("c", 3)

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, cOK := c.Get("c")
	assert.True(t, aOK)
	assert.False(t, bOK)
	assert.True(t, cOK)
}

func TestGetOrLoadCoalescesConcurrentCallers(t *testing.T) {
	c := New()
	var calls int32

	load := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return "result", nil
	}

	results := make(chan any, 5)
	for i := 0; i < 5; i++ {
		go func() {
			v, err := c.GetOrLoad(context.Background(), "shared", load)
			require.NoError(t, err)
			results <- v
		}()
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, "result", <-results)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestInvalidateByPrefix(t *testing.T) {
	c := New()
	c.Set("report:a.go", 1)
	c.Set("report:b.go", 2)
	c.Set("history:q", 3)

	c.Invalidate("report:")

	_, ok := c.Get("history:q")
	assert.True(t, ok)
	_, ok = c.Get("report:a.go")
	assert.False(t, ok)
}

func TestGetOrLoadDistinctKeysDoNotBlockEachOther(t *testing.T) {
	c := New()
	blockA := make(chan struct{})

	done := make(chan struct{})
	go func() {
		_, _ = c.GetOrLoad(context.Background(), "slow", func(ctx context.Context) (any, error) {
			<-blockA
			return "a", nil
		})
		close(done)
	}()

	// "slow" is still in flight; a distinct key must still resolve promptly
	// rather than wait behind it.
	v, err := c.GetOrLoad(context.Background(), "fast", func(ctx context.Context) (any, error) {
		return "b", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	close(blockA)
	<-done
}

func TestHashContentIsStableAndContentSensitive(t *testing.T) {
	h1 := HashContent([]byte("hello"))
	h2 := HashContent([]byte("hello"))
	h3 := HashContent([]byte("world"))
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
