package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/gng-pvt/internal/engine"
	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

func ms(v int) *int { return &v }

func testConfig() engine.Config {
	return engine.Config{
		Profile:          sequence.ProfilePVT,
		Target:           2,
		TotalTrials:      5,
		TargetTrials:     2,
		MinInterval:      time.Second,
		MaxInterval:      10 * time.Second,
		ResponseLimit:    500 * time.Millisecond,
		OutlierThreshold: 100 * time.Millisecond,
		FeedbackDuration: time.Second,
	}
}

func scenarioE() engine.Summary {
	trials := []engine.Trial{
		{Number: 1, Stimulus: 1, IntervalMs: 1200, ReactionMs: ms(180), Outcome: engine.CorrectGo},
		{Number: 2, Stimulus: 1, IntervalMs: 3400, ReactionMs: ms(220), Outcome: engine.CorrectGo},
		{Number: 3, Stimulus: 2, IntervalMs: 5100, IsTarget: true, Outcome: engine.CorrectNoGo},
		{Number: 4, Stimulus: 2, IntervalMs: 2000, IsTarget: true, ReactionMs: ms(300), Outcome: engine.CommissionError},
		{Number: 5, Stimulus: 3, IntervalMs: 9000, Outcome: engine.OmissionOutlier},
	}
	return engine.Summarize(testConfig(), trials)
}

var stamp = time.Date(2026, 3, 14, 9, 26, 53, 0, time.FixedZone("CET", 3600))

func TestFromSummary_ScenarioE(t *testing.T) {
	r := FromSummary(scenarioE(), stamp)

	if r.DateTime != "2026-03-14T09:26:53+01:00" {
		t.Errorf("DateTime = %q", r.DateTime)
	}
	s := r.Summary
	if s.TotalTrialsConducted != 5 || s.CorrectGoResponses != 2 || s.CorrectNoGoResponses != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.CommissionErrors != 1 || s.OutliersOmissionTooLate != 1 || s.OutliersCommissionTooFast != 0 {
		t.Errorf("error counts = %+v", s)
	}
	if s.AccuracyPercentage != 60 {
		t.Errorf("AccuracyPercentage = %v", s.AccuracyPercentage)
	}
	// RTs {180, 220, 300}: mean 233.33, sample SD 61.1.
	if s.AverageReactionTimeMs == nil || *s.AverageReactionTimeMs != 233 {
		t.Errorf("AverageReactionTimeMs = %v", s.AverageReactionTimeMs)
	}
	if s.WorstReactionTimeMs == nil || *s.WorstReactionTimeMs != 300 {
		t.Errorf("WorstReactionTimeMs = %v", s.WorstReactionTimeMs)
	}
	if s.ReactionTimeStdDevMs == nil || *s.ReactionTimeStdDevMs != 61 {
		t.Errorf("ReactionTimeStdDevMs = %v", s.ReactionTimeStdDevMs)
	}

	if len(r.Trials) != 5 {
		t.Fatalf("len(Trials) = %d", len(r.Trials))
	}
	tr := r.Trials[3]
	if tr.TrialNumber != 4 || tr.IsTarget != 1 || tr.IsCorrect != 0 || *tr.ReactionTimeMs != 300 {
		t.Errorf("trial 4 = %+v", tr)
	}
	if r.Trials[2].IsCorrect != 1 || r.Trials[2].ReactionTimeMs != nil {
		t.Errorf("trial 3 = %+v", r.Trials[2])
	}

	if r.Settings.MinIntervalS != 1 || r.Settings.MaxIntervalS != 10 || r.Settings.ResponseLimitMs != 500 {
		t.Errorf("Settings = %+v", r.Settings)
	}
}

func TestFromSummary_RoundsHalfToEven(t *testing.T) {
	cases := []struct {
		rts  []int
		mean int
	}{
		{[]int{200, 201}, 200},
		{[]int{201, 202}, 202},
	}
	for _, c := range cases {
		var trials []engine.Trial
		for i, rt := range c.rts {
			trials = append(trials, engine.Trial{Number: i + 1, Stimulus: 1, ReactionMs: ms(rt), Outcome: engine.CorrectGo})
		}
		r := FromSummary(engine.Summarize(testConfig(), trials), stamp)
		if got := r.Summary.AverageReactionTimeMs; got == nil || *got != c.mean {
			t.Errorf("mean of %v = %v, want %d", c.rts, got, c.mean)
		}
		// Sample SD of two values one apart is 0.707.
		if got := r.Summary.ReactionTimeStdDevMs; got == nil || *got != 1 {
			t.Errorf("SD of %v = %v, want 1", c.rts, got)
		}
	}

	half := 2.5
	if got := roundPtr(&half); *got != 2 {
		t.Errorf("roundPtr(2.5) = %d, want 2", *got)
	}
}

func TestMarshal_Schema(t *testing.T) {
	data, err := Marshal(FromSummary(engine.Summarize(testConfig(), nil), stamp))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"\n    \"test_settings\": {",
		"\"average_reaction_time_ms\": null",
		"\"worst_reaction_time_ms\": null",
		"\"reaction_time_std_dev_ms\": null",
		"\"accuracy_percentage\": 0",
		"\"trials\": []",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"datetime_iso", "test_settings", "summary_results", "trials"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
}

func TestMarshal_NullReactionTimePerTrial(t *testing.T) {
	data, err := Marshal(FromSummary(scenarioE(), stamp))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\"reaction_time_ms\": null") {
		t.Error("trial without a press should carry a null reaction time")
	}
}

func TestWriteRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	r := FromSummary(scenarioE(), stamp)

	path, err := Write(dir, BaseName(stamp), r)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "2026-03-14_09-26-53.json" {
		t.Errorf("path = %s", path)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Summary.CorrectGoResponses != 2 || len(got.Trials) != 5 {
		t.Errorf("round trip = %+v", got.Summary)
	}
	if *got.Summary.AverageReactionTimeMs != 233 {
		t.Errorf("AverageReactionTimeMs = %d", *got.Summary.AverageReactionTimeMs)
	}
}

func TestWrite_UnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Write(filepath.Join(blocker, "sub"), "x", Report{}); err == nil {
		t.Error("expected error writing beneath a regular file")
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for missing report")
	}
}

func TestFormat(t *testing.T) {
	out := Format(FromSummary(scenarioE(), stamp), "/tmp/a.json", "", "/tmp/a.png")
	for _, want := range []string{"Test Complete", "60.00%", "233 ms", "/tmp/a.json", "/tmp/a.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format output missing %q:\n%s", want, out)
		}
	}

	empty := Format(FromSummary(engine.Summarize(testConfig(), nil), stamp))
	if !strings.Contains(empty, "N/A") {
		t.Errorf("empty report should show N/A:\n%s", empty)
	}
	if strings.Contains(empty, "Saved") {
		t.Error("no Saved section without paths")
	}
}
