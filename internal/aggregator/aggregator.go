// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package aggregator implements the Input Aggregator component: it
// spawns one Device Source per discovered keyboard, owns the shutdown
// broadcast, and exposes a single bounded receive endpoint, in the
// Start/Stop/WaitGroup shape of this lineage's keyboard provider.
package aggregator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kvoverlay/keyviz/internal/device"
	"github.com/kvoverlay/keyviz/internal/logger"
)

// MinCapacity is the smallest channel capacity §4.2 allows.
const MinCapacity = 1024

// retryDelays is the yield-and-retry backoff schedule §4.2 specifies:
// short pauses from 1ms up to 10ms before the producer drops the
// oldest pending event.
var retryDelays = []time.Duration{
	1 * time.Millisecond,
	2 * time.Millisecond,
	3 * time.Millisecond,
	4 * time.Millisecond,
	10 * time.Millisecond,
}

// Stats is a point-in-time snapshot of aggregator observability counters.
type Stats struct {
	Dropped uint64
}

// Aggregator owns the bounded channel, the per-source goroutines, and
// the broadcast shutdown signal.
type Aggregator struct {
	ch       chan device.RawEvent
	shutdown chan struct{}
	closeOne sync.Once

	log logger.Logger

	mu      sync.Mutex
	sources []*tracked
	dropped uint64

	// chMu guards chClosed and serializes Submit against the one point
	// ch is closed, so a Submit in flight when Shutdown decides to close
	// ch always finishes (or is rejected) before the close happens —
	// eliminating the send-on-closed-channel panic a bare close(a.ch)
	// would risk if a source outlived its shutdown wait.
	chMu     sync.RWMutex
	chClosed bool
}

type tracked struct {
	src  *device.Source
	done chan struct{}
}

// New builds an Aggregator with a channel of at least MinCapacity.
func New(capacity int, log logger.Logger) *Aggregator {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &Aggregator{
		ch:       make(chan device.RawEvent, capacity),
		shutdown: make(chan struct{}),
		log:      log,
	}
}

// Spawn starts one Source per candidate, each reading on its own
// goroutine and submitting into this aggregator's bounded channel.
// Spawn must be called after every candidate device has already been
// opened; the caller drops privileges once Spawn returns, per §4.1.
func (a *Aggregator) Spawn(candidates []device.Candidate) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range candidates {
		src := device.NewSource(c.ID, c.Dev, a, a.shutdown, a.log)
		t := &tracked{src: src, done: make(chan struct{})}
		a.sources = append(a.sources, t)

		go func(t *tracked) {
			defer close(t.done)
			t.src.Run()
		}(t)
	}
}

// Submit implements device.Sink. It is the sole place the §4.2
// backoff-then-drop-oldest backpressure policy lives: on a full
// channel it retries briefly, then evicts the oldest pending event to
// make room for the new one, counting the eviction as a drop.
func (a *Aggregator) Submit(ev device.RawEvent) {
	a.chMu.RLock()
	defer a.chMu.RUnlock()
	if a.chClosed {
		atomic.AddUint64(&a.dropped, 1)
		return
	}

	select {
	case a.ch <- ev:
		return
	default:
	}

	for _, delay := range retryDelays {
		time.Sleep(delay)
		select {
		case a.ch <- ev:
			return
		default:
		}
	}

	select {
	case <-a.ch:
		atomic.AddUint64(&a.dropped, 1)
	default:
	}
	select {
	case a.ch <- ev:
	default:
		// Lost the race for the freed slot to another producer; the
		// event this call was trying to submit is the one that's dropped.
		atomic.AddUint64(&a.dropped, 1)
	}
}

// NextEvent blocks for the next raw event. ok is false once the
// aggregator has fully shut down and drained, mirroring the
// `next_event() → Option<RawEvent>` contract of §4.2.
func (a *Aggregator) NextEvent() (device.RawEvent, bool) {
	ev, ok := <-a.ch
	return ev, ok
}

// Stats reports the current drop counter for observability.
func (a *Aggregator) Stats() Stats {
	return Stats{Dropped: atomic.LoadUint64(&a.dropped)}
}

// Shutdown force-closes every Source's device, signals the shutdown
// channel, waits up to one second per source for it to terminate, then
// closes the receive endpoint so subsequent NextEvent calls return
// ok=false. Safe to call more than once.
func (a *Aggregator) Shutdown() {
	a.closeOne.Do(func() {
		a.mu.Lock()
		sources := a.sources
		a.mu.Unlock()

		// Close every device handle first to unblock any goroutine
		// currently parked inside a blocking ReadOne — the shutdown
		// channel below is only ever checked between reads, so a source
		// idling mid-read would otherwise never see it.
		for _, t := range sources {
			if err := t.src.Close(); err != nil {
				a.log.Warning("source %s: close device: %v", t.src.ID(), err)
			}
		}
		close(a.shutdown)

		for _, t := range sources {
			select {
			case <-t.done:
			case <-time.After(time.Second):
				a.log.Warning("source %s: shutdown wait timed out after 1s", t.src.ID())
			}
		}

		a.chMu.Lock()
		a.chClosed = true
		close(a.ch)
		a.chMu.Unlock()
	})
}
