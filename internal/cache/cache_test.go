package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache() (*Cache[int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)}
	c := New[int]()
	c.SetClock(clock.Now)
	return c, clock
}

func TestGetOrCompute_HitWithinTTL(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) (int, error) {
		calls++
		return calls * 10, nil
	}

	v, cached, err := c.GetOrCompute(ctx, "k", time.Minute, produce)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 10, v)

	clock.Advance(59 * time.Second)
	v, cached, err = c.GetOrCompute(ctx, "k", time.Minute, produce)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, calls)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestGetOrCompute_NeverServedAfterExpiry(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()
	calls := 0
	produce := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, _, _ = c.GetOrCompute(ctx, "k", time.Minute, produce)
	clock.Advance(time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)

	v, cached, err := c.GetOrCompute(ctx, "k", time.Minute, produce)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, v)
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	boom := errors.New("upstream down")

	_, _, err := c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get("k")
	assert.False(t, ok)

	v, cached, err := c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 7, v)
	assert.Equal(t, int64(1), c.Stats().Errors)
}

func TestGetOrCompute_ConcurrentMissesAllowed(t *testing.T) {
	c := New[int]()
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})
	started := make(chan struct{}, 4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.GetOrCompute(ctx, "k", time.Minute, func(context.Context) (int, error) {
				atomic.AddInt32(&calls, 1)
				started <- struct{}{}
				<-release
				return 1, nil
			})
		}()
	}
	for i := 0; i < 4; i++ {
		<-started
	}
	close(release)
	wg.Wait()

	// Misses are not serialised: every waiter ran the producer.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestExpireAndPurge(t *testing.T) {
	c, _ := newTestCache()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("zero", 3, 0)

	c.Expire("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("zero")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Stats().Entries)

	c.Purge()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestKeyAndSignature(t *testing.T) {
	assert.Equal(t, "ranking|20|abc", Key("ranking", "20", "abc"))
	assert.Equal(t, Signature([]string{"2330", "2317"}), Signature([]string{"2317", "2330"}))
	assert.NotEqual(t, Signature([]string{"2330"}), Signature([]string{"2330", "2317"}))
}
