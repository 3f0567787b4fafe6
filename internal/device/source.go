// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package device implements the Device Source component: given an
// already-open keyboard candidate, it produces raw key events on a
// channel until the device reports EOF, a fatal I/O error, or a
// shutdown signal fires, in the read-loop shape of this lineage's
// evdev keyboard provider.
package device

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/kvoverlay/keyviz/internal/logger"
)

// State mirrors the evdev key-event value: 0 released, 1 pressed, 2
// repeated.
type State int

const (
	Released State = iota
	Pressed
	Repeated
)

// RawEvent is the raw key event produced by a Source and consumed by
// the Keypress Engine, per §3's data model.
type RawEvent struct {
	DeviceID  string
	Timestamp time.Time
	Scancode  uint16
	State     State
}

const (
	minBackoff = time.Millisecond
	maxBackoff = time.Second
)

// eventReader is the slice of *evdev.InputDevice that Source depends
// on, narrow enough to substitute a fake device in tests.
type eventReader interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// Sink is the bounded-channel submission policy a Source forwards
// events into. The Input Aggregator implements this; Source itself
// holds no opinion on backpressure or drop behavior.
type Sink interface {
	Submit(RawEvent)
}

// Source reads one open input device and forwards its key events.
type Source struct {
	id       string
	dev      eventReader
	sink     Sink
	shutdown <-chan struct{}
	log      logger.Logger

	closeOnce sync.Once
	stopping  int32 // atomic; set by Close so Run suppresses spurious error logs
}

// NewSource wraps an already-open device. Discovery (and any privilege
// needed to open it) happens before construction — Run never opens or
// reopens a device node.
func NewSource(id string, dev *evdev.InputDevice, sink Sink, shutdown <-chan struct{}, log logger.Logger) *Source {
	return &Source{id: id, dev: dev, sink: sink, shutdown: shutdown, log: log}
}

// newSourceWithReader is the test-facing constructor, accepting any
// eventReader rather than a concrete *evdev.InputDevice.
func newSourceWithReader(id string, dev eventReader, sink Sink, shutdown <-chan struct{}, log logger.Logger) *Source {
	return &Source{id: id, dev: dev, sink: sink, shutdown: shutdown, log: log}
}

// ID identifies this source for dedup and diagnostics.
func (s *Source) ID() string { return s.id }

// Close force-closes the underlying device, unblocking a goroutine
// currently parked inside ReadOne. The aggregator calls this alongside
// its shutdown broadcast — per this lineage's evdev_provider.go Stop(),
// closing every device handle is what actually interrupts a blocked
// read; a shutdown channel alone is only checked between reads. Safe
// to call concurrently with Run, and more than once: the underlying
// device is closed at most once.
func (s *Source) Close() error {
	atomic.StoreInt32(&s.stopping, 1)
	var err error
	s.closeOnce.Do(func() { err = s.dev.Close() })
	return err
}

// Run is the blocking read loop. It must run on its own goroutine: the
// scheduler (E) must never block on a device read. Run returns once
// the device hits EOF, a fatal error occurs, shutdown fires between
// reads, or Close forces a blocked read to return; either way the
// aggregator owns the shared channel's lifetime, not the source.
func (s *Source) Run() {
	defer s.Close()

	backoff := minBackoff
	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		ev, err := s.dev.ReadOne()
		if err != nil {
			if atomic.LoadInt32(&s.stopping) == 1 || errors.Is(err, os.ErrClosed) {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, syscall.ENODEV) {
				s.log.Warning("device %s: read ended: %v", s.id, err)
				return
			}
			s.log.Warning("device %s: transient read error: %v", s.id, err)
			select {
			case <-time.After(backoff):
			case <-s.shutdown:
				return
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = minBackoff

		if ev.Type != evdev.EV_KEY {
			continue
		}

		raw := RawEvent{
			DeviceID:  s.id,
			Timestamp: time.Now(),
			Scancode:  uint16(ev.Code),
		}
		switch ev.Value {
		case 0:
			raw.State = Released
		case 1:
			raw.State = Pressed
		case 2:
			raw.State = Repeated
		default:
			continue
		}

		s.sink.Submit(raw)
	}
}
