// Package engine runs the Go/No-Go trial cycle: wait a random interval,
// show a digit, wait for a press or the end of the response window,
// classify, show feedback, repeat.
//
// An Engine is not safe for concurrent use. Every method and every
// scheduler callback must run on the same goroutine (see package sched).
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/gng-pvt/internal/sched"
	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

// ErrSessionActive is returned by Begin while a session is running.
var ErrSessionActive = errors.New("session already in progress")

// windowGrace keeps the response window open until a press can no longer
// round to the limit, so rt == limit is always a response.
const windowGrace = time.Millisecond / 2

// State is the engine's position in the trial cycle.
type State int

const (
	Idle State = iota
	WaitingInterval
	StimulusVisible
	Feedback
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WaitingInterval:
		return "waiting_interval"
	case StimulusVisible:
		return "stimulus_visible"
	case Feedback:
		return "feedback"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Presenter displays stimuli and feedback.
type Presenter interface {
	ShowStimulus(digit int)
	ClearStimulus()
	ShowFeedback(text string, style Style)
	ClearFeedback()
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) ShowStimulus(int)           {}
func (NopPresenter) ClearStimulus()             {}
func (NopPresenter) ShowFeedback(string, Style) {}
func (NopPresenter) ClearFeedback()             {}

// Trial is one finalized presentation.
type Trial struct {
	Number     int
	Stimulus   int
	IntervalMs int
	IsTarget   bool
	// ReactionMs is nil when the response window expired.
	ReactionMs *int
	Outcome    Outcome
}

// Engine owns the state of one session at a time.
type Engine struct {
	// OnEnd receives the summary when a session ends on its own.
	OnEnd func(Summary)

	sched sched.Scheduler
	view  Presenter
	rng   *rand.Rand
	log   *zap.Logger

	cfg     Config
	seq     *sequence.Sequence
	state   State
	started time.Time

	trials []Trial
	counts Counts
	rts    []int

	stimulus   int
	intervalMs int
	onset      time.Time

	intervalTimer sched.Handle
	windowTimer   sched.Handle
	feedbackTimer sched.Handle

	summary *Summary
}

// New returns an idle Engine. view and log may be nil.
func New(s sched.Scheduler, view Presenter, rng *rand.Rand, log *zap.Logger) *Engine {
	if view == nil {
		view = NopPresenter{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{sched: s, view: view, rng: rng, log: log}
}

// Begin starts a session over seq. cfg must have a resolved target.
func (e *Engine) Begin(cfg Config, seq *sequence.Sequence) error {
	if e.state != Idle && e.state != Ended {
		return ErrSessionActive
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Target == 0 {
		return fmt.Errorf("%w: target digit not resolved", ErrInvalidConfig)
	}

	e.cfg = cfg
	e.seq = seq
	e.started = e.sched.Now()
	e.trials = nil
	e.counts = Counts{}
	e.rts = nil
	e.summary = nil

	e.log.Info("session started",
		zap.Int("target", cfg.Target),
		zap.Int("total_trials", cfg.TotalTrials),
		zap.Int("target_trials", cfg.TargetTrials),
		zap.String("profile", string(cfg.Profile)),
	)
	e.scheduleTrial()
	return nil
}

// Respond records a press on the response control. Presses outside the
// stimulus window are ignored and return false.
func (e *Engine) Respond() (Outcome, bool) {
	if e.state != StimulusVisible {
		e.log.Debug("press ignored", zap.Stringer("state", e.state))
		return OutcomeNone, false
	}
	e.sched.Cancel(e.windowTimer)
	e.windowTimer = 0

	elapsed := e.sched.Now().Sub(e.onset)
	rt := int(math.Round(float64(elapsed) / float64(time.Millisecond)))
	if rt > ms(e.cfg.ResponseLimit) {
		// The loop ran the press after the window had closed.
		e.finalize(ClassifyTimeout(e.stimulus == e.cfg.Target), nil)
		return OutcomeNone, false
	}
	o := ClassifyResponse(rt, e.stimulus == e.cfg.Target, ms(e.cfg.OutlierThreshold))
	e.finalize(o, &rt)
	return o, true
}

// Abort tears the session down: pending timers are cancelled, the screen
// cleared and the state set to Ended. OnEnd is not called. The returned
// summary covers the trials finalized so far.
func (e *Engine) Abort() Summary {
	switch e.state {
	case Idle:
		return Summary{}
	case Ended:
		return *e.summary
	}
	e.cancelTimers()
	e.view.ClearStimulus()
	e.view.ClearFeedback()
	e.state = Ended

	s := e.summarize()
	s.Aborted = true
	e.summary = &s
	e.log.Warn("session aborted", zap.Int("trials_conducted", len(e.trials)))
	return s
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Config returns the config of the current or last session.
func (e *Engine) Config() Config { return e.cfg }

// Trials returns a copy of the finalized trials in presentation order.
func (e *Engine) Trials() []Trial { return append([]Trial(nil), e.trials...) }

// Counts returns the running outcome counters.
func (e *Engine) Counts() Counts { return e.counts }

// ReactionTimes returns a copy of every recorded reaction time in ms.
func (e *Engine) ReactionTimes() []int { return append([]int(nil), e.rts...) }

// Summary returns the session summary once the engine has ended.
func (e *Engine) Summary() (Summary, bool) {
	if e.summary == nil {
		return Summary{}, false
	}
	return *e.summary, true
}

func (e *Engine) finished() bool {
	return len(e.trials) >= e.cfg.TotalTrials || e.seq.Len() == 0
}

func (e *Engine) scheduleTrial() {
	if e.finished() {
		e.end()
		return
	}
	e.intervalMs = e.drawInterval()
	e.setState(WaitingInterval)
	e.intervalTimer = e.sched.ScheduleAfter(time.Duration(e.intervalMs)*time.Millisecond, sched.TokenInterval, e.presentStimulus)
}

func (e *Engine) drawInterval() int {
	lo, hi := ms(e.cfg.MinInterval), ms(e.cfg.MaxInterval)
	return lo + e.rng.IntN(hi-lo+1)
}

func (e *Engine) presentStimulus() {
	e.intervalTimer = 0
	if e.state != WaitingInterval {
		return
	}
	digit, ok := e.seq.Pop()
	if !ok {
		e.end()
		return
	}
	e.stimulus = digit
	e.onset = e.sched.Now()
	e.view.ShowStimulus(digit)
	e.setState(StimulusVisible)
	e.windowTimer = e.sched.ScheduleAfter(e.cfg.ResponseLimit+windowGrace, sched.TokenResponse, e.expire)
}

func (e *Engine) expire() {
	e.windowTimer = 0
	if e.state != StimulusVisible {
		return
	}
	e.finalize(ClassifyTimeout(e.stimulus == e.cfg.Target), nil)
}

func (e *Engine) finalize(o Outcome, rt *int) {
	// Leave StimulusVisible first so nothing else can finalize this trial.
	e.setState(Feedback)
	e.view.ClearStimulus()

	t := Trial{
		Number:     len(e.trials) + 1,
		Stimulus:   e.stimulus,
		IntervalMs: e.intervalMs,
		IsTarget:   e.stimulus == e.cfg.Target,
		ReactionMs: rt,
		Outcome:    o,
	}
	e.trials = append(e.trials, t)
	e.counts.Add(o)
	if rt != nil {
		e.rts = append(e.rts, *rt)
	}

	fields := []zap.Field{
		zap.Int("trial", t.Number),
		zap.Int("stimulus", t.Stimulus),
		zap.Int("interval_ms", t.IntervalMs),
		zap.Stringer("outcome", o),
	}
	if rt != nil {
		fields = append(fields, zap.Int("rt_ms", *rt))
	}
	e.log.Info("trial finalized", fields...)

	text, style := o.Feedback()
	e.view.ShowFeedback(text, style)
	e.feedbackTimer = e.sched.ScheduleAfter(e.cfg.FeedbackDuration, sched.TokenFeedback, e.feedbackDone)
}

func (e *Engine) feedbackDone() {
	e.feedbackTimer = 0
	if e.state != Feedback {
		return
	}
	e.view.ClearFeedback()
	e.scheduleTrial()
}

func (e *Engine) end() {
	e.cancelTimers()
	e.setState(Ended)
	s := e.summarize()
	e.summary = &s
	e.log.Info("session ended",
		zap.Int("trials_conducted", s.TotalTrials),
		zap.Float64("accuracy_pct", s.Accuracy),
	)
	if e.OnEnd != nil {
		e.OnEnd(s)
	}
}

func (e *Engine) summarize() Summary {
	s := Summarize(e.cfg, e.trials)
	s.StartedAt = e.started
	s.EndedAt = e.sched.Now()
	return s
}

func (e *Engine) cancelTimers() {
	for _, h := range []*sched.Handle{&e.intervalTimer, &e.windowTimer, &e.feedbackTimer} {
		if *h != 0 {
			e.sched.Cancel(*h)
			*h = 0
		}
	}
}

func (e *Engine) setState(s State) {
	if e.state != s {
		e.log.Debug("state", zap.Stringer("from", e.state), zap.Stringer("to", s))
	}
	e.state = s
}
