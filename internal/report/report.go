package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/suykerbuyk/gng-pvt/internal/engine"
)

// TimestampLayout names report and plot files for a session.
const TimestampLayout = "2006-01-02_15-04-05"

// Report is the on-disk JSON document for one session.
type Report struct {
	DateTime string        `json:"datetime_iso"`
	Settings Settings      `json:"test_settings"`
	Summary  Results       `json:"summary_results"`
	Trials   []TrialRecord `json:"trials"`
}

// Settings echoes the configuration the session ran with.
type Settings struct {
	TargetNumber        int     `json:"target_number"`
	ResponseLimitMs     int     `json:"response_limit_ms"`
	FeedbackDurationMs  int     `json:"feedback_duration_ms"`
	MinIntervalS        float64 `json:"min_interval_s"`
	MaxIntervalS        float64 `json:"max_interval_s"`
	ConfiguredMaxTrials int     `json:"configured_max_trials"`
}

// Results holds the aggregate counters and reaction-time statistics.
type Results struct {
	TotalTrialsConducted      int     `json:"total_trials_conducted"`
	CorrectGoResponses        int     `json:"correct_go_responses"`
	CorrectNoGoResponses      int     `json:"correct_no_go_responses"`
	CommissionErrors          int     `json:"commission_errors"`
	OutliersCommissionTooFast int     `json:"outliers_commission_too_fast"`
	OutliersOmissionTooLate   int     `json:"outliers_omission_too_late"`
	AccuracyPercentage        float64 `json:"accuracy_percentage"`
	AverageReactionTimeMs     *int    `json:"average_reaction_time_ms"`
	WorstReactionTimeMs       *int    `json:"worst_reaction_time_ms"`
	ReactionTimeStdDevMs      *int    `json:"reaction_time_std_dev_ms"`
}

// TrialRecord is one trial row. Booleans are 0/1 integers.
type TrialRecord struct {
	TrialNumber           int  `json:"trial_number"`
	PreStimulusIntervalMs int  `json:"pre_stimulus_interval_ms"`
	Stimulus              int  `json:"stimulus"`
	IsTarget              int  `json:"is_target"`
	IsCorrect             int  `json:"is_correct"`
	ReactionTimeMs        *int `json:"reaction_time_ms"`
}

// FromSummary builds the report for s, stamped with at.
func FromSummary(s engine.Summary, at time.Time) Report {
	cfg := s.Config
	r := Report{
		DateTime: at.Format(time.RFC3339Nano),
		Settings: Settings{
			TargetNumber:        cfg.Target,
			ResponseLimitMs:     int(cfg.ResponseLimit / time.Millisecond),
			FeedbackDurationMs:  int(cfg.FeedbackDuration / time.Millisecond),
			MinIntervalS:        cfg.MinInterval.Seconds(),
			MaxIntervalS:        cfg.MaxInterval.Seconds(),
			ConfiguredMaxTrials: cfg.TotalTrials,
		},
		Summary: Results{
			TotalTrialsConducted:      s.TotalTrials,
			CorrectGoResponses:        s.Counts.CorrectGo,
			CorrectNoGoResponses:      s.Counts.CorrectNoGo,
			CommissionErrors:          s.Counts.CommissionErrors,
			OutliersCommissionTooFast: s.Counts.CommissionOutliers,
			OutliersOmissionTooLate:   s.Counts.OmissionOutliers,
			AccuracyPercentage:        engine.RoundTo(s.Accuracy, 2),
			AverageReactionTimeMs:     roundPtr(s.MeanRT),
			WorstReactionTimeMs:       s.WorstRT,
			ReactionTimeStdDevMs:      roundPtr(s.StdDevRT),
		},
		Trials: make([]TrialRecord, 0, len(s.Trials)),
	}
	for _, t := range s.Trials {
		r.Trials = append(r.Trials, TrialRecord{
			TrialNumber:           t.Number,
			PreStimulusIntervalMs: t.IntervalMs,
			Stimulus:              t.Stimulus,
			IsTarget:              boolInt(t.IsTarget),
			IsCorrect:             boolInt(t.Outcome.Correct()),
			ReactionTimeMs:        t.ReactionMs,
		})
	}
	return r
}

// Marshal encodes r with four-space indentation and unescaped text.
func Marshal(r Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores r as dir/<base>.json and returns the path.
func Write(dir, base string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	data, err := Marshal(r)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, base+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Decode reads a report from r.
func Decode(r io.Reader) (Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, fmt.Errorf("parse report: %w", err)
	}
	return rep, nil
}

// Read loads a report from path.
func Read(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// BaseName returns the file stem shared by a session's report and plot.
func BaseName(at time.Time) string {
	return at.Format(TimestampLayout)
}

// roundPtr rounds half to even.
func roundPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(math.RoundToEven(*f))
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
