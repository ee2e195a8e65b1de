package session

import (
	"sync"
	"time"
)

// Frame is one inbound video frame stamped at receipt. Empty Data marks a
// frame whose payload could not be decoded; it still advances the gesture
// clock as a no-hand observation.
type Frame struct {
	Data []byte
	At   time.Time
}

// Mailbox is a single-slot, latest-wins frame buffer. A new frame
// overwrites an unconsumed pending one, so a session that falls behind
// always processes the most recent frame and hold timing stays accurate
// without unbounded queueing.
type Mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frame  *Frame
	closed bool
	drops  uint64
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Put deposits a frame, overwriting any unconsumed one. It never blocks.
// It reports whether a pending frame was dropped.
func (m *Mailbox) Put(f Frame) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}

	dropped := m.frame != nil
	if dropped {
		m.drops++
	}

	m.frame = &f
	m.cond.Signal()
	return dropped
}

// Take blocks until a frame is available or the mailbox is closed. The
// second return value is false once the mailbox is closed; the caller must
// not call Take concurrently with itself.
func (m *Mailbox) Take() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.frame == nil && !m.closed {
		m.cond.Wait()
	}

	if m.closed {
		return Frame{}, false
	}

	f := *m.frame
	m.frame = nil
	return f, true
}

// Close shuts the mailbox and unblocks a pending Take.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.frame = nil
	m.cond.Broadcast()
}

// Drops returns how many pending frames were overwritten before processing.
func (m *Mailbox) Drops() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drops
}
