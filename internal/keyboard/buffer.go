// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package keyboard

import (
	"strings"
	"time"

	"github.com/kvoverlay/keyviz/internal/keymap"
)

// Category classifies a keypress record per §3's data model.
type Category int

const (
	Character Category = iota
	Special
	Combination
)

// Record is one entry of the display buffer.
type Record struct {
	Symbol      string
	Category    Category
	IsSpecial   bool
	RepeatCount uint32
	FirstSeen   time.Time
	LastSeen    time.Time
}

// repeatThreshold is the §4.3 "repeat_count ≥ 3" point at which the
// rendered form gains a subscript counter suffix.
const repeatThreshold = 3

// Rendered is the text this record contributes to the display buffer:
// its symbol, plus a "ₓ<n>" subscript suffix once repeated enough.
func (r Record) Rendered() string {
	if r.RepeatCount < repeatThreshold {
		return r.Symbol
	}
	return r.Symbol + "ₓ" + keymap.Subscript(r.RepeatCount)
}

// Buffer is the ordered, bounded, time-limited sequence of keypress
// records described in §3, owned solely by the scheduler thread — no
// lock is required on it (§5).
type Buffer struct {
	records     []Record
	maxLength   int
	idleTimeout time.Duration
}

// NewBuffer constructs an empty buffer with the given bounds.
func NewBuffer(maxLength int, idleTimeout time.Duration) *Buffer {
	return &Buffer{maxLength: maxLength, idleTimeout: idleTimeout}
}

// Append adds a new keypress at time now, merging into the tail record
// per invariant (I3) if its symbol matches, or appending a fresh
// record and trimming the front per invariant (I4) otherwise. It
// reports whether the buffer's rendered content changed.
func (b *Buffer) Append(symbol string, category Category, special bool, now time.Time) bool {
	if n := len(b.records); n > 0 && b.records[n-1].Symbol == symbol {
		b.records[n-1].RepeatCount++
		b.records[n-1].LastSeen = now
		return true
	}

	b.records = append(b.records, Record{
		Symbol:      symbol,
		Category:    category,
		IsSpecial:   special,
		RepeatCount: 1,
		FirstSeen:   now,
		LastSeen:    now,
	})

	if len(b.records) > b.maxLength {
		excess := len(b.records) - b.maxLength
		b.records = b.records[excess:]
	}
	return true
}

// Sweep removes every record whose age has reached idleTimeout,
// per invariant (I2). It reports whether anything was removed, so the
// caller can reset modifier latches when a sweep empties the buffer.
func (b *Buffer) Sweep(now time.Time) bool {
	if len(b.records) == 0 {
		return false
	}

	kept := b.records[:0]
	removed := false
	for _, r := range b.records {
		if now.Sub(r.LastSeen) < b.idleTimeout {
			kept = append(kept, r)
		} else {
			removed = true
		}
	}
	b.records = kept
	return removed
}

// Empty reports whether the buffer currently holds no records.
func (b *Buffer) Empty() bool {
	return len(b.records) == 0
}

// Len returns the current record count.
func (b *Buffer) Len() int {
	return len(b.records)
}

// Records returns a copy of the current records, oldest first.
func (b *Buffer) Records() []Record {
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Text renders every record's contribution, concatenated in order —
// the string D paints to the overlay surface.
func (b *Buffer) Text() string {
	var sb strings.Builder
	for _, r := range b.records {
		sb.WriteString(r.Rendered())
	}
	return sb.String()
}
