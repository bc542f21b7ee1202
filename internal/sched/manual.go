package sched

import (
	"sort"
	"time"
)

type manualEntry struct {
	at     time.Time
	seq    uint64
	handle Handle
	token  Token
	fn     func()
}

// Manual is a Scheduler whose clock only moves when told to. Callbacks fire
// in deadline order, ties broken by scheduling order.
type Manual struct {
	now     time.Time
	next    Handle
	seq     uint64
	pending []manualEntry
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) ScheduleAfter(d time.Duration, token Token, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	m.next++
	m.seq++
	m.pending = append(m.pending, manualEntry{
		at:     m.now.Add(d),
		seq:    m.seq,
		handle: m.next,
		token:  token,
		fn:     fn,
	})
	return m.next
}

func (m *Manual) Cancel(h Handle) {
	for i, e := range m.pending {
		if e.handle == h {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d, firing every callback that falls
// due on the way, including ones scheduled by callbacks fired during the
// advance.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		e, ok := m.earliest()
		if !ok || e.at.After(target) {
			break
		}
		m.fire(e)
	}
	m.now = target
}

// Step jumps to the earliest pending deadline and fires that callback.
// It returns false when nothing is pending.
func (m *Manual) Step() bool {
	e, ok := m.earliest()
	if !ok {
		return false
	}
	m.fire(e)
	return true
}

// RunUntilIdle steps until nothing is pending or limit callbacks have
// fired. It returns the number fired.
func (m *Manual) RunUntilIdle(limit int) int {
	n := 0
	for n < limit && m.Step() {
		n++
	}
	return n
}

// Pending reports whether a callback with token is waiting.
func (m *Manual) Pending(token Token) bool {
	for _, e := range m.pending {
		if e.token == token {
			return true
		}
	}
	return false
}

// Len returns the number of pending callbacks.
func (m *Manual) Len() int { return len(m.pending) }

// Tokens returns the tokens of pending callbacks in firing order.
func (m *Manual) Tokens() []Token {
	m.sortPending()
	out := make([]Token, len(m.pending))
	for i, e := range m.pending {
		out[i] = e.token
	}
	return out
}

func (m *Manual) earliest() (manualEntry, bool) {
	if len(m.pending) == 0 {
		return manualEntry{}, false
	}
	m.sortPending()
	return m.pending[0], true
}

func (m *Manual) sortPending() {
	sort.SliceStable(m.pending, func(i, j int) bool {
		if !m.pending[i].at.Equal(m.pending[j].at) {
			return m.pending[i].at.Before(m.pending[j].at)
		}
		return m.pending[i].seq < m.pending[j].seq
	})
}

func (m *Manual) fire(e manualEntry) {
	m.Cancel(e.handle)
	if e.at.After(m.now) {
		m.now = e.at
	}
	e.fn()
}
