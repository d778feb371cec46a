package wbapi

import (
	"context"
	"sync"
	"time"

	"github.com/sellerops/wbsync/internal/config"
	"github.com/sellerops/wbsync/internal/metrics"
)

// safetyMargin is added to the computed sleep so a request never lands
// exactly on the window edge.
const safetyMargin = 20 * time.Millisecond

// Limiter enforces, per credential, a sliding-window request quota and a
// parallelism cap. All jobs sharing one credential share one window, so the
// provider-imposed budget holds no matter how many goroutines fan out.
//
// The limiter is an explicit instance passed into the executor; there is no
// package-level state.
type Limiter struct {
	cfg config.RateConfig

	mu      sync.Mutex
	windows map[string]*rateWindow
}

// rateWindow is the per-credential bookkeeping: recent request timestamps for
// the sliding window, and a counting semaphore for in-flight parallelism.
type rateWindow struct {
	mu     sync.Mutex
	stamps []time.Time
	sem    chan struct{}
}

func NewLimiter(cfg config.RateConfig) *Limiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 45
	}
	if cfg.Window <= 0 {
		cfg.Window = 3 * time.Second
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 5
	}
	return &Limiter{
		cfg:     cfg,
		windows: make(map[string]*rateWindow),
	}
}

func (l *Limiter) window(credential string) *rateWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[credential]
	if !ok {
		w = &rateWindow{sem: make(chan struct{}, l.cfg.MaxParallel)}
		l.windows[credential] = w
	}
	return w
}

// Acquire blocks until both the parallelism cap and the sliding-window quota
// admit one more request for the credential. Every successful Acquire must be
// paired with exactly one Release on every exit path.
func (l *Limiter) Acquire(ctx context.Context, credential string) error {
	start := time.Now()
	w := l.window(credential)

	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		w.mu.Lock()
		now := time.Now()
		w.prune(now.Add(-l.cfg.Window))

		if len(w.stamps) < l.cfg.MaxRequests {
			w.stamps = append(w.stamps, now)
			w.mu.Unlock()
			metrics.RateWaitSeconds.Observe(time.Since(start).Seconds())
			return nil
		}

		// Quota full: sleep until the oldest stamp leaves the window.
		// The mutex is released before sleeping so other credentials and
		// the Release path are never serialized behind this wait.
		wait := w.stamps[0].Add(l.cfg.Window).Sub(now) + safetyMargin
		w.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			<-w.sem
			return ctx.Err()
		}
	}
}

// Release frees one in-flight slot. The window timestamps stay: they record
// when requests started, which is what the quota counts.
func (l *Limiter) Release(credential string) {
	w := l.window(credential)
	<-w.sem
}

// InFlight reports how many requests are currently running for the credential.
func (l *Limiter) InFlight(credential string) int {
	return len(l.window(credential).sem)
}

// prune drops timestamps at or before the cutoff. Caller holds w.mu.
func (w *rateWindow) prune(cutoff time.Time) {
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}
