package engine

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary is the read-only result of a session.
type Summary struct {
	Config    Config
	StartedAt time.Time
	EndedAt   time.Time

	Counts      Counts
	TotalTrials int
	Trials      []Trial
	// ReactionTimes holds every recorded press in order, outliers and
	// commission errors included.
	ReactionTimes []int

	// Accuracy is 100 * correct / total, 0 when no trials ran.
	Accuracy float64
	// MeanRT and WorstRT are nil without reaction times; StdDevRT is nil
	// with fewer than two. StdDevRT is the sample standard deviation.
	MeanRT   *float64
	WorstRT  *int
	StdDevRT *float64

	Aborted bool
}

// Summarize derives a Summary from finalized trials.
func Summarize(cfg Config, trials []Trial) Summary {
	s := Summary{
		Config:      cfg,
		Trials:      append([]Trial(nil), trials...),
		TotalTrials: len(trials),
	}
	for _, t := range trials {
		s.Counts.Add(t.Outcome)
		if t.ReactionMs != nil {
			s.ReactionTimes = append(s.ReactionTimes, *t.ReactionMs)
		}
	}
	if s.TotalTrials > 0 {
		s.Accuracy = float64(s.Counts.Correct()) / float64(s.TotalTrials) * 100
	}
	s.MeanRT, s.WorstRT, s.StdDevRT = ReactionStats(s.ReactionTimes)
	return s
}

// ReactionStats returns mean, max and sample standard deviation of rts.
func ReactionStats(rts []int) (mean *float64, worst *int, stdDev *float64) {
	if len(rts) == 0 {
		return nil, nil, nil
	}
	xs := make([]float64, len(rts))
	w := rts[0]
	for i, rt := range rts {
		xs[i] = float64(rt)
		if rt > w {
			w = rt
		}
	}
	m := stat.Mean(xs, nil)
	mean, worst = &m, &w
	if len(xs) >= 2 {
		sd := stat.StdDev(xs, nil)
		stdDev = &sd
	}
	return mean, worst, stdDev
}

// RoundTo rounds f to the given number of decimal places.
func RoundTo(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
