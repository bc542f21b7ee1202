package engine

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/suykerbuyk/gng-pvt/internal/sched"
	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	shown    []int
	cleared  int
	feedback []string
	styles   []Style
	fbClears int
	visible  bool
}

func (r *recorder) ShowStimulus(d int) { r.shown = append(r.shown, d); r.visible = true }
func (r *recorder) ClearStimulus()     { r.cleared++; r.visible = false }
func (r *recorder) ShowFeedback(text string, s Style) {
	r.feedback = append(r.feedback, text)
	r.styles = append(r.styles, s)
}
func (r *recorder) ClearFeedback() { r.fbClears++ }

func testConfig(target, total int) Config {
	return Config{
		Profile:          sequence.ProfilePVT,
		Target:           target,
		TotalTrials:      total,
		MinInterval:      500 * time.Millisecond,
		MaxInterval:      500 * time.Millisecond,
		ResponseLimit:    500 * time.Millisecond,
		OutlierThreshold: 100 * time.Millisecond,
		FeedbackDuration: 10 * time.Millisecond,
	}
}

func newEngine(t *testing.T) (*Engine, *sched.Manual, *recorder) {
	t.Helper()
	m := sched.NewManual(epoch)
	r := &recorder{}
	e := New(m, r, rand.New(rand.NewPCG(1, 2)), nil)
	return e, m, r
}

// startSingle begins a one-trial session and advances to stimulus onset.
func startSingle(t *testing.T, target, stimulus int) (*Engine, *sched.Manual, *recorder) {
	t.Helper()
	e, m, r := newEngine(t)
	if err := e.Begin(testConfig(target, 1), sequence.New(stimulus)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if e.State() != WaitingInterval {
		t.Fatalf("State = %s, want waiting_interval", e.State())
	}
	m.Advance(500 * time.Millisecond)
	if e.State() != StimulusVisible {
		t.Fatalf("State = %s, want stimulus_visible", e.State())
	}
	return e, m, r
}

func TestScenarioA_CorrectGo(t *testing.T) {
	e, m, r := startSingle(t, 9, 3)
	m.Advance(200 * time.Millisecond)

	o, ok := e.Respond()
	if !ok || o != CorrectGo {
		t.Fatalf("Respond = %s, %v, want correct_go", o, ok)
	}
	if rts := e.ReactionTimes(); len(rts) != 1 || rts[0] != 200 {
		t.Errorf("ReactionTimes = %v, want [200]", rts)
	}
	if len(r.feedback) != 1 || r.feedback[0] != "Good!" || r.styles[0] != StyleGood {
		t.Errorf("feedback = %v %v", r.feedback, r.styles)
	}
	if r.visible {
		t.Error("stimulus still visible after response")
	}
}

func TestScenarioB_TooFastOnTargetIsOutlier(t *testing.T) {
	e, m, _ := startSingle(t, 2, 2)
	m.Advance(50 * time.Millisecond)

	o, ok := e.Respond()
	if !ok || o != CommissionOutlier {
		t.Fatalf("Respond = %s, want commission_outlier", o)
	}
	c := e.Counts()
	if c.CommissionOutliers != 1 || c.CommissionErrors != 0 {
		t.Errorf("Counts = %+v", c)
	}
	if rts := e.ReactionTimes(); len(rts) != 1 || rts[0] != 50 {
		t.Errorf("ReactionTimes = %v, want [50]", rts)
	}
}

func TestCommissionError(t *testing.T) {
	e, m, r := startSingle(t, 7, 7)
	m.Advance(300 * time.Millisecond)

	o, _ := e.Respond()
	if o != CommissionError {
		t.Fatalf("Respond = %s, want commission_error", o)
	}
	if r.feedback[0] != "Bad!" || r.styles[0] != StyleBad {
		t.Errorf("feedback = %v %v", r.feedback, r.styles)
	}
	trials := e.Trials()
	if trials[0].Outcome.Correct() {
		t.Error("commission error marked correct")
	}
}

func TestScenarioC_TimeoutOnTargetIsCorrectNoGo(t *testing.T) {
	e, m, _ := startSingle(t, 3, 3)
	m.Advance(501 * time.Millisecond)

	trials := e.Trials()
	if len(trials) != 1 || trials[0].Outcome != CorrectNoGo {
		t.Fatalf("Trials = %+v", trials)
	}
	if trials[0].ReactionMs != nil {
		t.Error("timeout trial recorded a reaction time")
	}
	if len(e.ReactionTimes()) != 0 {
		t.Errorf("ReactionTimes = %v, want empty", e.ReactionTimes())
	}
}

func TestScenarioD_TimeoutOnGoIsOmission(t *testing.T) {
	e, m, r := startSingle(t, 4, 5)
	m.Advance(501 * time.Millisecond)

	if c := e.Counts(); c.OmissionOutliers != 1 || c.Total() != 1 {
		t.Fatalf("Counts = %+v", c)
	}
	if r.feedback[0] != "TooLate!" {
		t.Errorf("feedback = %v", r.feedback)
	}
}

func TestRespond_Idempotent(t *testing.T) {
	e, m, _ := startSingle(t, 9, 1)
	m.Advance(250 * time.Millisecond)

	if _, ok := e.Respond(); !ok {
		t.Fatal("first press rejected")
	}
	if o, ok := e.Respond(); ok || o != OutcomeNone {
		t.Errorf("second press accepted: %s", o)
	}
	// The response window must not fire a second outcome.
	m.Advance(time.Second)

	if c := e.Counts(); c.Total() != 1 || c.CorrectGo != 1 {
		t.Errorf("Counts = %+v, want one correct_go", c)
	}
	if len(e.Trials()) != 1 {
		t.Errorf("Trials = %d, want 1", len(e.Trials()))
	}
}

func TestRespond_AfterTimeoutIgnored(t *testing.T) {
	e, m, _ := startSingle(t, 9, 1)
	m.Advance(501 * time.Millisecond)

	if _, ok := e.Respond(); ok {
		t.Error("press after expiry accepted")
	}
	if c := e.Counts(); c.Total() != 1 || c.OmissionOutliers != 1 {
		t.Errorf("Counts = %+v", c)
	}
	if len(e.ReactionTimes()) != 0 {
		t.Error("late press recorded a reaction time")
	}
}

func TestRespond_AtResponseLimit(t *testing.T) {
	e, m, _ := startSingle(t, 9, 3)
	var got Outcome
	m.ScheduleAfter(500*time.Millisecond, sched.TokenPress, func() { got, _ = e.Respond() })
	m.Advance(500 * time.Millisecond)

	if got != CorrectGo {
		t.Fatalf("press at the limit = %s, want correct_go", got)
	}
	if rts := e.ReactionTimes(); len(rts) != 1 || rts[0] != 500 {
		t.Errorf("ReactionTimes = %v, want [500]", rts)
	}
}

func TestRespond_RoundingPastLimitIsTimeout(t *testing.T) {
	e, m, _ := startSingle(t, 9, 3)
	// Stands in for a press the loop ran after the window closed.
	e.sched.Cancel(e.windowTimer)
	m.Advance(502 * time.Millisecond)

	if _, ok := e.Respond(); ok {
		t.Error("press past the limit accepted")
	}
	trials := e.Trials()
	if len(trials) != 1 || trials[0].Outcome != OmissionOutlier || trials[0].ReactionMs != nil {
		t.Errorf("Trials = %+v", trials)
	}
}

func TestResponseWindowClosesAfterLimit(t *testing.T) {
	e, m, _ := startSingle(t, 9, 3)
	m.Advance(500 * time.Millisecond)
	if e.State() != StimulusVisible {
		t.Fatalf("State = %s at the limit, want stimulus_visible", e.State())
	}
	m.Advance(time.Millisecond)
	if e.State() != Feedback {
		t.Errorf("State = %s after the limit, want feedback", e.State())
	}
}

func TestRespond_DuringIntervalIgnored(t *testing.T) {
	e, m, r := newEngine(t)
	if err := e.Begin(testConfig(9, 1), sequence.New(1)); err != nil {
		t.Fatal(err)
	}
	m.Advance(100 * time.Millisecond)
	if _, ok := e.Respond(); ok {
		t.Error("press before stimulus accepted")
	}
	if len(r.shown) != 0 || len(e.Trials()) != 0 {
		t.Error("premature press changed state")
	}
}

func TestRespond_WhenIdle(t *testing.T) {
	e, _, _ := newEngine(t)
	if _, ok := e.Respond(); ok {
		t.Error("press accepted while idle")
	}
}

func TestResponseWindowCancelledOnPress(t *testing.T) {
	e, m, _ := startSingle(t, 9, 1)
	m.Advance(100 * time.Millisecond)
	if !m.Pending(sched.TokenResponse) {
		t.Fatal("response window not pending")
	}
	e.Respond()
	if m.Pending(sched.TokenResponse) {
		t.Error("response window still pending after press")
	}
	if !m.Pending(sched.TokenFeedback) {
		t.Error("feedback timer not pending")
	}
}

func TestFullSession(t *testing.T) {
	e, m, r := newEngine(t)
	cfg := testConfig(5, 20)
	cfg.TargetTrials = 5
	cfg.MinInterval = 200 * time.Millisecond
	cfg.MaxInterval = 900 * time.Millisecond

	rng := rand.New(rand.NewPCG(7, 8))
	seq, err := cfg.GenerateSequence(rng)
	if err != nil {
		t.Fatal(err)
	}

	ends := 0
	var got Summary
	e.OnEnd = func(s Summary) {
		ends++
		got = s
	}
	if err := e.Begin(cfg, seq); err != nil {
		t.Fatal(err)
	}

	// Press on every third stimulus at 150ms, otherwise wait it out.
	for i := 0; e.State() != Ended && i < 10000; i++ {
		if e.State() == StimulusVisible && len(r.shown)%3 == 0 {
			m.Advance(150 * time.Millisecond)
			e.Respond()
			continue
		}
		m.Step()
	}

	if e.State() != Ended {
		t.Fatalf("State = %s, want ended", e.State())
	}
	if ends != 1 {
		t.Errorf("OnEnd called %d times", ends)
	}
	if got.TotalTrials != 20 || got.Counts.Total() != 20 {
		t.Errorf("TotalTrials = %d, counts = %d", got.TotalTrials, got.Counts.Total())
	}
	if m.Len() != 0 {
		t.Errorf("%d timers left after end: %v", m.Len(), m.Tokens())
	}

	responses := 0
	for i, tr := range got.Trials {
		if tr.Number != i+1 {
			t.Errorf("trial %d numbered %d", i, tr.Number)
		}
		if tr.IntervalMs < 200 || tr.IntervalMs > 900 {
			t.Errorf("interval %d outside [200, 900]", tr.IntervalMs)
		}
		if tr.IsTarget != (tr.Stimulus == 5) {
			t.Errorf("trial %d IsTarget = %v for stimulus %d", tr.Number, tr.IsTarget, tr.Stimulus)
		}
		responded := tr.ReactionMs != nil
		byPress := tr.Outcome == CorrectGo || tr.Outcome == CommissionError || tr.Outcome == CommissionOutlier
		if responded != byPress {
			t.Errorf("trial %d: outcome %s with reaction %v", tr.Number, tr.Outcome, tr.ReactionMs)
		}
		if responded {
			responses++
		}
	}
	if len(got.ReactionTimes) != responses {
		t.Errorf("ReactionTimes = %d, responses = %d", len(got.ReactionTimes), responses)
	}
	if r.fbClears != 20 {
		t.Errorf("feedback cleared %d times, want 20", r.fbClears)
	}
}

func TestSessionEndsWhenSequenceExhausted(t *testing.T) {
	e, m, _ := newEngine(t)
	ended := false
	e.OnEnd = func(Summary) { ended = true }
	if err := e.Begin(testConfig(9, 5), sequence.New(1, 2)); err != nil {
		t.Fatal(err)
	}
	m.RunUntilIdle(100)
	if !ended || len(e.Trials()) != 2 {
		t.Errorf("ended = %v, trials = %d", ended, len(e.Trials()))
	}
}

func TestBegin_EmptySequenceEndsImmediately(t *testing.T) {
	e, m, _ := newEngine(t)
	if err := e.Begin(testConfig(9, 3), sequence.New()); err != nil {
		t.Fatal(err)
	}
	if e.State() != Ended || m.Len() != 0 {
		t.Errorf("State = %s, pending = %d", e.State(), m.Len())
	}
	s, ok := e.Summary()
	if !ok || s.TotalTrials != 0 || s.Accuracy != 0 {
		t.Errorf("Summary = %+v", s)
	}
}

func TestBegin_WhileActive(t *testing.T) {
	e, _, _ := newEngine(t)
	if err := e.Begin(testConfig(9, 1), sequence.New(1)); err != nil {
		t.Fatal(err)
	}
	if err := e.Begin(testConfig(9, 1), sequence.New(1)); !errors.Is(err, ErrSessionActive) {
		t.Errorf("err = %v, want ErrSessionActive", err)
	}
}

func TestBegin_InvalidConfig(t *testing.T) {
	e, _, _ := newEngine(t)
	cfg := testConfig(9, 1)
	cfg.MinInterval = 2 * time.Second
	if err := e.Begin(cfg, sequence.New(1)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
	if err := e.Begin(testConfig(0, 1), sequence.New(1)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unresolved target: err = %v, want ErrInvalidConfig", err)
	}
	if e.State() != Idle {
		t.Errorf("State = %s after failed Begin", e.State())
	}
}

func TestBegin_RestartResetsCounters(t *testing.T) {
	e, m, _ := startSingle(t, 9, 1)
	m.Advance(200 * time.Millisecond)
	e.Respond()
	m.RunUntilIdle(10)
	if e.State() != Ended {
		t.Fatalf("State = %s", e.State())
	}

	if err := e.Begin(testConfig(9, 1), sequence.New(9)); err != nil {
		t.Fatal(err)
	}
	if len(e.Trials()) != 0 || e.Counts().Total() != 0 || len(e.ReactionTimes()) != 0 {
		t.Error("restart did not reset session state")
	}
}

func TestAbort_CancelsTimers(t *testing.T) {
	e, m, r := startSingle(t, 9, 1)
	ended := false
	e.OnEnd = func(Summary) { ended = true }

	s := e.Abort()
	if !s.Aborted || e.State() != Ended {
		t.Errorf("Aborted = %v, State = %s", s.Aborted, e.State())
	}
	if m.Len() != 0 {
		t.Errorf("pending after abort: %v", m.Tokens())
	}
	if ended {
		t.Error("OnEnd called on abort")
	}
	if r.visible {
		t.Error("stimulus left on screen")
	}
	if _, ok := e.Respond(); ok {
		t.Error("press accepted after abort")
	}
	if again := e.Abort(); !again.Aborted {
		t.Error("second Abort lost the summary")
	}
}

func TestAbort_Idle(t *testing.T) {
	e, _, _ := newEngine(t)
	if s := e.Abort(); s.Aborted || s.TotalTrials != 0 {
		t.Errorf("Abort on idle = %+v", s)
	}
}
