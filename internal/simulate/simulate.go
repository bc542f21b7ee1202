// Package simulate runs a whole session against a synthetic participant on
// a virtual clock, so a session completes instantly and deterministically.
package simulate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/gng-pvt/internal/engine"
	"github.com/suykerbuyk/gng-pvt/internal/sched"
)

// ErrUnfinished is returned if the virtual clock goes idle before the
// session ends.
var ErrUnfinished = errors.New("simulated session did not finish")

// Participant models how the synthetic subject responds.
type Participant struct {
	MeanRT time.Duration
	StdDev time.Duration
	// CommissionRate is the chance of pressing on a target.
	CommissionRate float64
	// LapseRate is the chance of missing a non-target.
	LapseRate float64
}

// DefaultParticipant is an attentive adult.
func DefaultParticipant() Participant {
	return Participant{
		MeanRT:         320 * time.Millisecond,
		StdDev:         70 * time.Millisecond,
		CommissionRate: 0.15,
		LapseRate:      0.03,
	}
}

// Validate checks the participant parameters.
func (p Participant) Validate() error {
	if p.MeanRT <= 0 || p.StdDev < 0 {
		return fmt.Errorf("participant: reaction time must be positive")
	}
	if p.CommissionRate < 0 || p.CommissionRate > 1 || p.LapseRate < 0 || p.LapseRate > 1 {
		return fmt.Errorf("participant: rates must be within 0-1")
	}
	return nil
}

// Options configures one simulated session.
type Options struct {
	Config      engine.Config
	Participant Participant
	Seed        uint64
	// Start is the virtual clock's origin. Zero means time.Now().
	Start time.Time
	// View, if set, also receives every presentation call.
	View engine.Presenter
	Log  *zap.Logger
}

// Run resolves the target, generates the sequence and drives the engine
// to completion. Sequence construction failures wrap
// sequence.ErrSequenceConstruction.
func Run(opts Options) (engine.Summary, error) {
	if err := opts.Participant.Validate(); err != nil {
		return engine.Summary{}, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5851f42d4c957f2d))
	cfg := opts.Config.ResolveTarget(rng)
	seq, err := cfg.GenerateSequence(rng)
	if err != nil {
		return engine.Summary{}, fmt.Errorf("simulate: %w", err)
	}

	clock := sched.NewManual(start)
	bot := &subject{p: opts.Participant, clock: clock, rng: rng, view: opts.View, target: cfg.Target}
	eng := engine.New(clock, bot, rng, log.Named("engine"))
	bot.eng = eng

	var (
		summary engine.Summary
		done    bool
	)
	eng.OnEnd = func(s engine.Summary) {
		summary = s
		done = true
	}
	if err := eng.Begin(cfg, seq); err != nil {
		return engine.Summary{}, fmt.Errorf("simulate: %w", err)
	}

	// Each trial fires at most four callbacks: interval, press, window, feedback.
	clock.RunUntilIdle(4*cfg.TotalTrials + 8)
	if !done {
		eng.Abort()
		return engine.Summary{}, ErrUnfinished
	}
	log.Info("simulation finished",
		zap.Int("presses", bot.presses),
		zap.Int("trials", summary.TotalTrials),
	)
	return summary, nil
}

// subject is a Presenter that answers stimuli by scheduling presses.
type subject struct {
	p      Participant
	clock  *sched.Manual
	rng    *rand.Rand
	view   engine.Presenter
	eng    *engine.Engine
	target int

	pending sched.Handle
	presses int
}

func (s *subject) ShowStimulus(digit int) {
	if s.view != nil {
		s.view.ShowStimulus(digit)
	}
	if !s.wantsToPress(digit) {
		return
	}
	s.pending = s.clock.ScheduleAfter(s.reactionTime(), sched.TokenPress, func() {
		s.pending = 0
		s.presses++
		s.eng.Respond()
	})
}

func (s *subject) ClearStimulus() {
	if s.pending != 0 {
		s.clock.Cancel(s.pending)
		s.pending = 0
	}
	if s.view != nil {
		s.view.ClearStimulus()
	}
}

func (s *subject) ShowFeedback(text string, style engine.Style) {
	if s.view != nil {
		s.view.ShowFeedback(text, style)
	}
}

func (s *subject) ClearFeedback() {
	if s.view != nil {
		s.view.ClearFeedback()
	}
}

func (s *subject) wantsToPress(digit int) bool {
	if digit == s.target {
		return s.rng.Float64() < s.p.CommissionRate
	}
	return s.rng.Float64() >= s.p.LapseRate
}

func (s *subject) reactionTime() time.Duration {
	d := time.Duration(float64(s.p.MeanRT) + s.rng.NormFloat64()*float64(s.p.StdDev))
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d.Round(time.Millisecond)
}
