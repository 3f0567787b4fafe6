// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package utils tracks background goroutines spawned off the frame
// scheduler's main loop (currently just the input-pump goroutine, see
// internal/scheduler) so shutdown can wait for them to settle with a
// bounded timeout instead of leaking them or racing their last write.
package utils

import (
	"sync"
	"sync/atomic"
	"time"
)

// generation-based tracker to isolate batches between waits
var (
	currentGen int64
	genMu      sync.Mutex
	genCounts  = map[int64]int64{}
	lastGoTsNs int64
)

// Go launches a function in a goroutine and tracks it for shutdown coordination
func Go(fn func()) {
	gen := atomic.LoadInt64(&currentGen)
	atomic.StoreInt64(&lastGoTsNs, time.Now().UnixNano())
	genMu.Lock()
	genCounts[gen] = genCounts[gen] + 1
	genMu.Unlock()

	go func(g int64) {
		defer func() {
			genMu.Lock()
			genCounts[g] = genCounts[g] - 1
			if genCounts[g] == 0 {
				delete(genCounts, g)
			}
			genMu.Unlock()
		}()
		fn()
	}(gen)
}

// Pending reports how many Go-launched goroutines have not yet
// returned, across every generation (a WaitAll timeout advances the
// generation counter so future callers aren't blocked by a stuck one,
// but the stuck goroutine's count stays live under its old
// generation). The frame scheduler logs this alongside a WaitAll
// timeout so a stuck input-pump goroutine (e.g. blocked in a device
// read the Device Source failed to unblock) shows up in the shutdown
// warning instead of a bare "timed out".
func Pending() int64 {
	genMu.Lock()
	defer genMu.Unlock()
	var total int64
	for _, c := range genCounts {
		total += c
	}
	return total
}

// Wait for all tracked goroutines in the current generation to complete or time out
// Returns true if all goroutines completed before the timeout, false otherwise
func WaitAll(timeout time.Duration) bool {
	gen := atomic.LoadInt64(&currentGen)
	deadline := time.Now().Add(timeout)
	start := time.Now()
	const minSettle = 50 * time.Millisecond
	for {
		genMu.Lock()
		count := genCounts[gen]
		genMu.Unlock()
		if count == 0 {
			// Ensure we don't return immediately before late registrations
			if time.Since(start) < minSettle {
				time.Sleep(1 * time.Millisecond)
				continue
			}
			// Additional stabilization window to capture last-second registrations
			last := time.Unix(0, atomic.LoadInt64(&lastGoTsNs))
			if time.Since(last) > minSettle/2 {
				return true
			}
		}
		if time.Now().After(deadline) {
			// Advance generation so future Go() calls are tracked separately
			atomic.AddInt64(&currentGen, 1)
			return false
		}
		time.Sleep(1 * time.Millisecond)
	}
}
