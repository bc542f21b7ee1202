// Package sched provides the timer abstraction the trial engine runs on.
//
// Every callback handed to a Scheduler runs on a single goroutine, so the
// code it drives needs no locking. Manual is a deterministic clock for tests
// and simulations; Loop is the real-time event loop.
package sched

import "time"

// Token labels what a scheduled callback is for.
type Token string

const (
	TokenInterval Token = "interval"
	TokenResponse Token = "response-window"
	TokenFeedback Token = "feedback"
	TokenPress    Token = "press"
)

// Handle identifies one scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler runs callbacks after a delay and reports the current time.
type Scheduler interface {
	// ScheduleAfter arranges for fn to run once after d. token is a label
	// used for inspection and logging.
	ScheduleAfter(d time.Duration, token Token, fn func()) Handle
	// Cancel prevents h from running. Cancelling a fired, cancelled or
	// zero handle is a no-op.
	Cancel(h Handle)
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}
