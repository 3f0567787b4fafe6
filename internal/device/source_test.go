package device

import (
	"errors"
	"sync"
	"testing"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/kvoverlay/keyviz/internal/logger"
)

// fakeReader replays a scripted sequence of events/errors, then blocks
// until closed — mirroring a real device that idles between keypresses.
type fakeReader struct {
	mu     sync.Mutex
	events []scriptedEvent
	idx    int
	closed chan struct{}
}

type scriptedEvent struct {
	ev  *evdev.InputEvent
	err error
}

func newFakeReader(events []scriptedEvent) *fakeReader {
	return &fakeReader{events: events, closed: make(chan struct{})}
}

func (f *fakeReader) ReadOne() (*evdev.InputEvent, error) {
	f.mu.Lock()
	if f.idx < len(f.events) {
		e := f.events[f.idx]
		f.idx++
		f.mu.Unlock()
		return e.ev, e.err
	}
	f.mu.Unlock()

	<-f.closed
	return nil, errors.New("device closed")
}

func (f *fakeReader) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

// chanSink is a minimal Sink for tests: a buffered channel that drops
// silently when full, standing in for the aggregator's real
// backoff-then-drop policy.
type chanSink struct {
	ch chan RawEvent
}

func newChanSink(capacity int) *chanSink {
	return &chanSink{ch: make(chan RawEvent, capacity)}
}

func (s *chanSink) Submit(ev RawEvent) {
	select {
	case s.ch <- ev:
	default:
	}
}

func TestSourceForwardsKeyEvents(t *testing.T) {
	events := []scriptedEvent{
		{ev: &evdev.InputEvent{Type: evdev.EV_KEY, Code: 30, Value: 1}},
		{ev: &evdev.InputEvent{Type: evdev.EV_KEY, Code: 30, Value: 0}},
		{ev: &evdev.InputEvent{Type: evdev.EV_SYN, Code: 0, Value: 0}},
	}
	reader := newFakeReader(events)
	out := newChanSink(4)
	shutdown := make(chan struct{})
	src := newSourceWithReader("dev0", reader, out, shutdown, logger.NewDefaultLogger(logger.ErrorLevel))

	done := make(chan struct{})
	go func() {
		src.Run()
		close(done)
	}()

	first := <-out.ch
	if first.Scancode != 30 || first.State != Pressed {
		t.Errorf("first event = %+v, want scancode 30 pressed", first)
	}
	second := <-out.ch
	if second.State != Released {
		t.Errorf("second event state = %v, want Released", second.State)
	}

	// By now Run has consumed every scripted event and is blocked inside
	// ReadOne; closing shutdown alone is only checked between reads, so
	// the caller (the aggregator, in production) must also force-close
	// the device to unblock it.
	close(shutdown)
	src.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after Close unblocked the pending read")
	}
}

// TestSourceCloseUnblocksPendingRead is the direct regression test for
// the shutdown race: a device idling between keypresses sits blocked
// inside ReadOne, and only force-closing its handle — not merely
// signalling shutdown — makes Run return promptly.
func TestSourceCloseUnblocksPendingRead(t *testing.T) {
	reader := newFakeReader(nil)
	out := newChanSink(4)
	shutdown := make(chan struct{})
	src := newSourceWithReader("dev0", reader, out, shutdown, logger.NewDefaultLogger(logger.ErrorLevel))

	done := make(chan struct{})
	go func() {
		src.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond) // let Run block inside ReadOne

	select {
	case <-done:
		t.Fatal("Run returned before Close was called")
	default:
	}

	if err := src.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after Close")
	}
}

func TestSourceStopsOnShutdownBeforeNextRead(t *testing.T) {
	events := []scriptedEvent{
		{ev: &evdev.InputEvent{Type: evdev.EV_KEY, Code: 1, Value: 1}},
	}
	reader := newFakeReader(events)
	out := newChanSink(0) // unbuffered: nobody reads it
	shutdown := make(chan struct{})
	src := newSourceWithReader("dev0", reader, out, shutdown, logger.NewDefaultLogger(logger.ErrorLevel))

	done := make(chan struct{})
	go func() {
		src.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	close(shutdown)
	src.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit promptly once Close unblocked the pending read")
	}
}
