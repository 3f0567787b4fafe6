// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

// Package scheduler runs the fixed-rate cooperative loop that
// multiplexes input receipt, repaint ticks, and Wayland dispatch, and
// owns the dirty flag and shutdown coordination described in spec.md
// §4.5 for the Frame Scheduler.
package scheduler

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kvoverlay/keyviz/internal/aggregator"
	"github.com/kvoverlay/keyviz/internal/device"
	"github.com/kvoverlay/keyviz/internal/errs"
	"github.com/kvoverlay/keyviz/internal/keyboard"
	"github.com/kvoverlay/keyviz/internal/logger"
	"github.com/kvoverlay/keyviz/internal/render"
	"github.com/kvoverlay/keyviz/internal/utils"
)

// TickInterval is the fixed repaint rate (spec.md §4.5, ≈60 Hz).
const TickInterval = 16 * time.Millisecond

// Surface is the subset of wayland.Surface the scheduler drives: a
// paint step and a way to learn whether the compositor has destroyed
// the surface out from under it. Kept narrow so tests can supply a
// fake instead of a live Wayland connection.
type Surface interface {
	Paint(segments []render.Segment) (bool, error)
	PollConfigure() error
	Closed() bool
	Close() error
}

// Dispatcher is the subset of wayland.Client the scheduler drives each
// tick to process protocol events that are not tied to a specific
// surface (buffer release, output scale, registry churn).
type Dispatcher interface {
	DispatchPending(budget time.Duration) error
	Close() error
}

// EventSource feeds RawEvents into the engine; in production this is the
// aggregator, but the interface keeps the loop testable.
type EventSource interface {
	NextEvent() (device.RawEvent, bool)
}

// Scheduler ties every other component together into the single
// logical thread spec.md §5 describes: no locks are needed on the
// engine, buffer, or surface because only this loop ever touches them.
type Scheduler struct {
	events     EventSource
	engine     *keyboard.Engine
	surface    Surface
	dispatcher Dispatcher
	agg        *aggregator.Aggregator
	log        logger.Logger

	dirty bool
}

// New builds a Scheduler. agg may be nil in tests that supply a fake
// EventSource with no real device sources to shut down.
func New(events EventSource, engine *keyboard.Engine, surface Surface, dispatcher Dispatcher, agg *aggregator.Aggregator, log logger.Logger) *Scheduler {
	return &Scheduler{
		events:     events,
		engine:     engine,
		surface:    surface,
		dispatcher: dispatcher,
		agg:        agg,
		log:        log,
	}
}

// Run drains input as it arrives, runs one paint attempt per tick when
// dirty, and returns when a shutdown signal (SIGINT/SIGTERM) or a
// fatal error terminates the loop. The returned error is nil on clean
// shutdown.
func (s *Scheduler) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	inputCh := make(chan device.RawEvent, 1)
	inputDone := make(chan struct{})
	utils.Go(func() { s.pumpEvents(inputCh, inputDone) })

	var runErr error
runLoop:
	for {
		select {
		case sig := <-sigCh:
			s.log.Info("received %s, shutting down", sig)
			break runLoop

		case ev, ok := <-inputCh:
			if !ok {
				s.log.Warning("input source closed unexpectedly")
				break runLoop
			}
			if s.engine.Process(ev) {
				s.dirty = true
			}

		case <-ticker.C:
			// Drain every input event already queued ahead of this tick
			// before sweeping/painting: inputCh's capacity-1 buffer means
			// select could otherwise pick the ticker case while a second
			// event is already sitting ready, applying it only on the
			// *next* tick and violating the "every event queued before a
			// tick lands in that tick's paint" ordering guarantee.
		drainInput:
			for {
				select {
				case ev, ok := <-inputCh:
					if !ok {
						s.log.Warning("input source closed unexpectedly")
						break runLoop
					}
					if s.engine.Process(ev) {
						s.dirty = true
					}
				default:
					break drainInput
				}
			}

			if s.engine.ExpirySweep(time.Now()) {
				s.dirty = true
			}
			if s.dirty {
				if err := s.paint(); err != nil {
					runErr = err
					break runLoop
				}
				s.dirty = false
			}
			if err := s.dispatchWayland(); err != nil {
				runErr = err
				break runLoop
			}
			if s.surface.Closed() {
				runErr = errs.New(errs.Protocol, "layer surface closed by compositor")
				break runLoop
			}
		}
	}

	s.shutdown()
	// Keep receiving so a pump blocked on a send can exit; stop waiting
	// after a second and let WaitAll/Pending report it.
	drain, pumpDeadline := inputCh, time.After(time.Second)
waitPump:
	for {
		select {
		case _, ok := <-drain:
			if !ok {
				drain = nil
			}
		case <-inputDone:
			break waitPump
		case <-pumpDeadline:
			break waitPump
		}
	}
	if !utils.WaitAll(time.Second) {
		s.log.Warning("%d background task(s) did not settle within the shutdown window", utils.Pending())
	}
	return runErr
}

func (s *Scheduler) pumpEvents(out chan<- device.RawEvent, done chan<- struct{}) {
	defer close(done)
	defer close(out)
	for {
		ev, ok := s.events.NextEvent()
		if !ok {
			return
		}
		out <- ev
	}
}

func (s *Scheduler) paint() error {
	segments := segmentsFor(s.engine)
	_, err := s.surface.Paint(segments)
	return err
}

func (s *Scheduler) dispatchWayland() error {
	if err := s.surface.PollConfigure(); err != nil {
		return err
	}
	return s.dispatcher.DispatchPending(2 * time.Millisecond)
}

// shutdown runs the teardown spec.md §4.5 describes for the Shutdown
// branch: signal every Source, destroy the surface, release the
// display connection.
func (s *Scheduler) shutdown() {
	if s.agg != nil {
		s.agg.Shutdown()
	}
	if err := s.surface.Close(); err != nil {
		s.log.Warning("close surface: %v", err)
	}
	if err := s.dispatcher.Close(); err != nil {
		s.log.Warning("close display connection: %v", err)
	}
}

func segmentsFor(e *keyboard.Engine) []render.Segment {
	records := e.Records()
	segments := make([]render.Segment, 0, len(records))
	for _, r := range records {
		segments = append(segments, render.Segment{Text: r.Rendered(), Special: r.IsSpecial})
	}
	return segments
}
