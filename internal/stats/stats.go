package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/suykerbuyk/gng-pvt/internal/history"
)

// Summary holds aggregate metrics computed from session history.
type Summary struct {
	TotalSessions     int
	SimulatedSessions int
	TotalTrials       int
	TotalErrors       int // commission errors plus both outlier kinds

	MeanAccuracy float64
	// MeanRT averages the per-session mean reaction times; nil when no
	// session recorded a press.
	MeanRT *float64

	Best  *SessionRef
	Worst *SessionRef

	Profiles []ProfileStats
	Monthly  []MonthStats
}

// SessionRef names one session by ID and accuracy.
type SessionRef struct {
	ID       string
	Date     string // YYYY-MM-DD
	Accuracy float64
}

// ProfileStats holds per-profile aggregate metrics.
type ProfileStats struct {
	Name         string
	Sessions     int
	MeanAccuracy float64
}

// MonthStats holds per-month aggregate metrics.
type MonthStats struct {
	Month        string // YYYY-MM
	Sessions     int
	Trials       int
	MeanAccuracy float64
}

// Compute builds a Summary from history entries, optionally filtered by
// profile.
func Compute(entries []history.Entry, profile string) Summary {
	var s Summary

	var accuracies, rts []float64
	profileAcc := make(map[string][]float64)
	monthMap := make(map[string]*MonthStats)
	monthAcc := make(map[string][]float64)

	for _, e := range entries {
		if profile != "" && e.Profile != profile {
			continue
		}

		s.TotalSessions++
		if e.Simulated {
			s.SimulatedSessions++
		}
		s.TotalTrials += e.TotalTrials
		s.TotalErrors += e.Counts.CommissionErrors + e.Counts.CommissionOutliers + e.Counts.OmissionOutliers

		accuracies = append(accuracies, e.Accuracy)
		if e.MeanRT != nil {
			rts = append(rts, *e.MeanRT)
		}

		ref := SessionRef{ID: e.ID, Date: e.StartedAt.Format("2006-01-02"), Accuracy: e.Accuracy}
		if s.Best == nil || e.Accuracy > s.Best.Accuracy {
			r := ref
			s.Best = &r
		}
		if s.Worst == nil || e.Accuracy < s.Worst.Accuracy {
			r := ref
			s.Worst = &r
		}

		profileAcc[e.Profile] = append(profileAcc[e.Profile], e.Accuracy)

		month := e.StartedAt.Format("2006-01")
		mm, ok := monthMap[month]
		if !ok {
			mm = &MonthStats{Month: month}
			monthMap[month] = mm
		}
		mm.Sessions++
		mm.Trials += e.TotalTrials
		monthAcc[month] = append(monthAcc[month], e.Accuracy)
	}

	if len(accuracies) > 0 {
		s.MeanAccuracy = stat.Mean(accuracies, nil)
	}
	if len(rts) > 0 {
		m := stat.Mean(rts, nil)
		s.MeanRT = &m
	}

	for name, accs := range profileAcc {
		s.Profiles = append(s.Profiles, ProfileStats{
			Name:         name,
			Sessions:     len(accs),
			MeanAccuracy: stat.Mean(accs, nil),
		})
	}
	sort.Slice(s.Profiles, func(i, j int) bool {
		if s.Profiles[i].Sessions != s.Profiles[j].Sessions {
			return s.Profiles[i].Sessions > s.Profiles[j].Sessions
		}
		return s.Profiles[i].Name < s.Profiles[j].Name
	})

	// Months recent-first, cap at 6
	for month, mm := range monthMap {
		mm.MeanAccuracy = stat.Mean(monthAcc[month], nil)
		s.Monthly = append(s.Monthly, *mm)
	}
	sort.Slice(s.Monthly, func(i, j int) bool {
		return s.Monthly[i].Month > s.Monthly[j].Month
	})
	if len(s.Monthly) > 6 {
		s.Monthly = s.Monthly[:6]
	}

	return s
}
