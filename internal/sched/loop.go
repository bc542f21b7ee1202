package sched

import (
	"context"
	"sync"
	"time"
)

// Loop is a real-time Scheduler. Timer firings and posted events are queued
// and executed one at a time by Run, so everything it drives is
// single-threaded.
type Loop struct {
	mu      sync.Mutex
	next    Handle
	live    map[Handle]*time.Timer
	events  chan func()
	done    chan struct{}
	stopped bool
}

// NewLoop returns a Loop ready to be Run.
func NewLoop() *Loop {
	return &Loop{
		live:   make(map[Handle]*time.Timer),
		events: make(chan func(), 64),
		done:   make(chan struct{}),
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

func (l *Loop) ScheduleAfter(d time.Duration, token Token, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	h := l.next
	if l.stopped {
		return h
	}
	l.live[h] = time.AfterFunc(d, func() {
		l.Post(func() {
			// Cancel may have won the race after the timer fired.
			if l.take(h) {
				fn()
			}
		})
	})
	return h
}

func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.live[h]; ok {
		t.Stop()
		delete(l.live, h)
	}
}

// Post queues fn to run on the loop goroutine. It returns false once the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run executes queued callbacks until ctx is cancelled or Stop is called.
// All pending timers are stopped before it returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.events:
			fn()
		}
	}
}

// Stop makes Run return after the callback in progress. Safe to call from
// any goroutine, more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.done)
}

// Pending returns the number of timers that have not fired or been
// cancelled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

func (l *Loop) take(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.live[h]; !ok {
		return false
	}
	delete(l.live, h)
	return true
}

func (l *Loop) shutdown() {
	l.Stop()
	l.mu.Lock()
	defer l.mu.Unlock()
	for h, t := range l.live {
		t.Stop()
		delete(l.live, h)
	}
}
