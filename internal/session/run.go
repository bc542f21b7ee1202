package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/gng-pvt/internal/config"
	"github.com/suykerbuyk/gng-pvt/internal/engine"
	"github.com/suykerbuyk/gng-pvt/internal/sched"
	"github.com/suykerbuyk/gng-pvt/internal/screen"
	"github.com/suykerbuyk/gng-pvt/internal/simulate"
)

// ErrAborted is returned when the operator quits before a session ends.
var ErrAborted = errors.New("session aborted")

// Runner conducts interactive sessions on a terminal.
type Runner struct {
	Screen *screen.Screen
	// Events is the operator input stream, shared across sessions.
	Events <-chan screen.Event
	Log    *zap.Logger
	// Settle is how long input must stay quiet after a session before Run
	// returns. Zero means DefaultSettle.
	Settle time.Duration
}

// DefaultSettle absorbs presses typed during the last feedback so they do
// not answer the next prompt.
const DefaultSettle = 150 * time.Millisecond

// Run shows the instructions, waits for the operator to start, runs one
// session in real time and exports it. Quitting, closing the input or
// cancelling ctx before the end returns ErrAborted; nothing is exported.
func (r *Runner) Run(ctx context.Context, cfg config.Config) (*Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	ec, err := cfg.SessionConfig()
	if err != nil {
		return nil, err
	}
	rng := NewRand(cfg.Session.Seed)
	ec, seq, err := Prepare(ec, rng)
	if err != nil {
		return nil, err
	}

	r.Screen.Instructions(ec)
	select {
	case ev, ok := <-r.Events:
		if !ok || ev == screen.Quit {
			return nil, ErrAborted
		}
	case <-ctx.Done():
		return nil, ErrAborted
	}

	id := NewID()
	log = log.With(zap.String("session_id", id))

	loop := sched.NewLoop()
	eng := engine.New(loop, r.Screen, rng, log.Named("engine"))

	var (
		summary  engine.Summary
		ended    bool
		beginErr error
	)
	eng.OnEnd = func(s engine.Summary) {
		summary = s
		ended = true
		loop.Stop()
	}
	loop.Post(func() {
		if err := eng.Begin(ec, seq); err != nil {
			beginErr = err
			loop.Stop()
		}
	})

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		forward(r.Events, loop, eng, done)
	}()

	runErr := loop.Run(ctx)
	close(done)
	wg.Wait()

	// The loop has returned, so nothing else touches the engine.
	if beginErr != nil {
		return nil, fmt.Errorf("begin session: %w", beginErr)
	}
	if !ended {
		partial := eng.Abort()
		log.Warn("session abandoned",
			zap.Int("trials_conducted", partial.TotalTrials),
			zap.NamedError("cause", runErr),
		)
		return nil, ErrAborted
	}
	if n := discardInput(r.Events, r.settle()); n > 0 {
		log.Debug("discarded late input", zap.Int("events", n))
	}
	return Export(cfg, id, summary, false, log), nil
}

func (r *Runner) settle() time.Duration {
	if r.Settle > 0 {
		return r.Settle
	}
	return DefaultSettle
}

// discardInput drops events until none has arrived for quiet, the stream
// closes or ten quiet periods have passed. It returns the number dropped.
func discardInput(events <-chan screen.Event, quiet time.Duration) int {
	n := 0
	t := time.NewTimer(quiet)
	defer t.Stop()
	deadline := time.After(10 * quiet)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return n
			}
			n++
			t.Reset(quiet)
		case <-t.C:
			return n
		case <-deadline:
			return n
		}
	}
}
