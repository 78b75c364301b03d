// Package leaktest asserts that background machinery under test — hub fan-out
// loops, worker pools, retry timers — actually winds down. Counts are
// snapshotted before the scenario and compared after a settle period.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const settleDelay = 50 * time.Millisecond

// GoroutineGuard snapshots the goroutine count at construction
type GoroutineGuard struct {
	t        testing.TB
	baseline int
}

// Guard records the current goroutine count as the baseline
func Guard(t testing.TB) *GoroutineGuard {
	t.Helper()

	// Let goroutines from earlier tests finish first
	runtime.Gosched()
	time.Sleep(10 * time.Millisecond)

	return &GoroutineGuard{t: t, baseline: runtime.NumGoroutine()}
}

// Expect fails the test when more than extra goroutines outlive the baseline
func (g *GoroutineGuard) Expect(extra int) {
	g.t.Helper()

	runtime.Gosched()
	time.Sleep(settleDelay)
	runtime.GC()
	time.Sleep(settleDelay)

	now := runtime.NumGoroutine()
	if leaked := now - g.baseline; leaked > extra {
		g.t.Errorf("goroutines leaked: baseline=%d now=%d leaked=%d allowed=%d",
			g.baseline, now, leaked, extra)
	}
}

// CheckNoGoroutineLeak runs the scenario and demands every goroutine it
// started is gone afterwards
func CheckNoGoroutineLeak(t *testing.T, scenario func()) {
	t.Helper()

	guard := Guard(t)
	scenario()
	guard.Expect(0)
}

// HeapGuard snapshots live heap bytes at construction
type HeapGuard struct {
	t        testing.TB
	baseline uint64
}

// GuardHeap records the current live heap as the baseline
func GuardHeap(t testing.TB) *HeapGuard {
	t.Helper()

	runtime.GC()
	time.Sleep(10 * time.Millisecond)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &HeapGuard{t: t, baseline: m.Alloc}
}

// ExpectGrowthUnder fails the test when the live heap grew past maxMB
func (h *HeapGuard) ExpectGrowthUnder(maxMB float64) {
	h.t.Helper()

	runtime.GC()
	time.Sleep(settleDelay)

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	growthMB := (float64(after.Alloc) - float64(h.baseline)) / (1 << 20)
	if growthMB > maxMB {
		h.t.Errorf("heap grew %.2fMB, allowed %.2fMB (baseline=%.2fMB now=%.2fMB)",
			growthMB, maxMB, float64(h.baseline)/(1<<20), float64(after.Alloc)/(1<<20))
	}
}

// WaitForGoroutines polls until the goroutine count drops to target or the
// timeout expires. Useful after Stop calls that only signal shutdown.
func WaitForGoroutines(t *testing.T, target int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		runtime.Gosched()
		if runtime.NumGoroutine() <= target {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("goroutines never settled: now=%d target=%d", runtime.NumGoroutine(), target)
}
