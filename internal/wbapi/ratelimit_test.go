package wbapi

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sellerops/wbsync/internal/config"
)

func TestLimiterBoundsParallelism(t *testing.T) {
	l := NewLimiter(config.RateConfig{MaxRequests: 1000, Window: time.Second, MaxParallel: 4})

	var (
		wg      sync.WaitGroup
		current atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Acquire(context.Background(), "token-a"))
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
			l.Release("token-a")
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, peak.Load(), int32(4), "more in flight than max_parallel")
	require.Equal(t, 0, l.InFlight("token-a"))
}

func TestLimiterWindowBudget(t *testing.T) {
	const (
		maxRequests = 5
		window      = 100 * time.Millisecond
	)
	l := NewLimiter(config.RateConfig{MaxRequests: maxRequests, Window: window, MaxParallel: 32})

	var (
		mu     sync.Mutex
		stamps []time.Time
		wg     sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Acquire(context.Background(), "token-b"))
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
			l.Release("token-b")
		}()
	}
	wg.Wait()

	require.Len(t, stamps, 20)
	// any maxRequests+1 consecutive grants must span at least one window
	for i := 0; i+maxRequests < len(stamps); i++ {
		span := stamps[i+maxRequests].Sub(stamps[i])
		require.GreaterOrEqual(t, span, window-10*time.Millisecond,
			"grants %d..%d packed tighter than the window", i, i+maxRequests)
	}
}

func TestLimiterIsolatesCredentials(t *testing.T) {
	l := NewLimiter(config.RateConfig{MaxRequests: 1, Window: time.Minute, MaxParallel: 1})

	require.NoError(t, l.Acquire(context.Background(), "token-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Acquire(ctx, "token-b"), "second credential must not share the budget")

	l.Release("token-a")
	l.Release("token-b")
}

func TestLimiterAcquireHonorsContext(t *testing.T) {
	l := NewLimiter(config.RateConfig{MaxRequests: 1, Window: time.Minute, MaxParallel: 1})
	require.NoError(t, l.Acquire(context.Background(), "token-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx, "token-a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	l.Release("token-a")
}
