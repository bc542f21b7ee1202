package trends

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/suykerbuyk/gng-pvt/internal/history"
)

// Metric names.
const (
	MetricMeanRT      = "mean rt"
	MetricAccuracy    = "accuracy"
	MetricCommissions = "commissions"
	MetricLapses      = "lapses"
)

// WeekBucket accumulates per-session values for a single ISO week.
type WeekBucket struct {
	Year, Week int
	Start      time.Time // Monday of the ISO week

	MeanRTs     []float64
	Accuracies  []float64
	Commissions []float64
	Lapses      []float64

	Sessions int
}

// TrendPoint is a single data point in a metric time series.
type TrendPoint struct {
	WeekLabel  string  // "Jan 06", "Feb 17", etc.
	Value      float64 // per-week average
	RollingAvg float64 // 4-week rolling average (0 if < 4 weeks of data)
	Anomaly    bool    // >1.5 stddev from rolling avg
}

// MetricTrend holds the full time series for one metric.
type MetricTrend struct {
	Name       string
	Points     []TrendPoint // most recent first
	OverallAvg float64
	Direction  string  // "improving", "worsening", "stable"
	DeltaPct   float64 // percent change of recent vs previous 4 weeks
}

// Result holds the complete trends analysis.
type Result struct {
	TotalSessions int
	TotalWeeks    int
	DisplayWeeks  int
	Profile       string
	Metrics       []MetricTrend
}

// Compute buckets history entries into ISO weeks and builds one trend per
// metric. Simulated sessions are excluded. A non-empty profile filters
// entries.
func Compute(entries []history.Entry, profile string, displayWeeks int) Result {
	if displayWeeks <= 0 {
		displayWeeks = 12
	}

	var valid []history.Entry
	for _, e := range entries {
		if e.Simulated || e.StartedAt.IsZero() {
			continue
		}
		if profile != "" && e.Profile != profile {
			continue
		}
		valid = append(valid, e)
	}

	if len(valid) == 0 {
		return Result{Profile: profile, DisplayWeeks: displayWeeks}
	}

	bucketMap := make(map[[2]int]*WeekBucket)
	for _, e := range valid {
		year, week := e.StartedAt.ISOWeek()
		key := [2]int{year, week}

		b, ok := bucketMap[key]
		if !ok {
			b = &WeekBucket{Year: year, Week: week, Start: isoWeekStart(year, week)}
			bucketMap[key] = b
		}
		b.Sessions++

		if e.MeanRT != nil {
			b.MeanRTs = append(b.MeanRTs, *e.MeanRT)
		}
		b.Accuracies = append(b.Accuracies, e.Accuracy)
		b.Commissions = append(b.Commissions, float64(e.Counts.CommissionErrors+e.Counts.CommissionOutliers))
		b.Lapses = append(b.Lapses, float64(e.Counts.OmissionOutliers))
	}

	// Oldest first for the rolling average.
	buckets := make([]*WeekBucket, 0, len(bucketMap))
	for _, b := range bucketMap {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Week < buckets[j].Week
	})

	rtPts := buildPoints(buckets, func(b *WeekBucket) (float64, bool) { return avg(b.MeanRTs) })
	accPts := buildPoints(buckets, func(b *WeekBucket) (float64, bool) { return avg(b.Accuracies) })
	comPts := buildPoints(buckets, func(b *WeekBucket) (float64, bool) { return avg(b.Commissions) })
	lapsePts := buildPoints(buckets, func(b *WeekBucket) (float64, bool) { return avg(b.Lapses) })

	metrics := []MetricTrend{
		buildMetric(MetricMeanRT, rtPts, displayWeeks, true),
		buildMetric(MetricAccuracy, accPts, displayWeeks, false),
		buildMetric(MetricCommissions, comPts, displayWeeks, true),
		buildMetric(MetricLapses, lapsePts, displayWeeks, true),
	}

	return Result{
		TotalSessions: len(valid),
		TotalWeeks:    len(buckets),
		DisplayWeeks:  displayWeeks,
		Profile:       profile,
		Metrics:       metrics,
	}
}

// buildPoints creates TrendPoints from buckets using an extractor function.
// Points are returned oldest-first.
func buildPoints(buckets []*WeekBucket, extract func(*WeekBucket) (float64, bool)) []TrendPoint {
	var pts []TrendPoint
	for _, b := range buckets {
		val, ok := extract(b)
		if !ok {
			continue
		}
		pts = append(pts, TrendPoint{
			WeekLabel: weekLabel(b.Start),
			Value:     val,
		})
	}
	return pts
}

// buildMetric computes rolling averages, anomalies, and direction for a metric.
// lowerIsBetter controls direction interpretation.
func buildMetric(name string, pts []TrendPoint, displayWeeks int, lowerIsBetter bool) MetricTrend {
	m := MetricTrend{Name: name}

	if len(pts) == 0 {
		m.Direction = "stable"
		return m
	}

	values := make([]float64, len(pts))
	for i := range pts {
		values[i] = pts[i].Value
	}

	for i := range pts {
		if i >= 3 {
			ra := rollingAvg(values, i, 4)
			pts[i].RollingAvg = ra

			sd := rollingStddev(values, i, 4)
			if sd > 0 && math.Abs(pts[i].Value-ra) > 1.5*sd {
				pts[i].Anomaly = true
			}
		}
	}

	m.OverallAvg = stat.Mean(values, nil)
	m.Direction, m.DeltaPct = metricDirection(values, lowerIsBetter)

	// Most recent first, trimmed to displayWeeks.
	reversed := make([]TrendPoint, len(pts))
	for i, p := range pts {
		reversed[len(pts)-1-i] = p
	}
	if len(reversed) > displayWeeks {
		reversed = reversed[:displayWeeks]
	}
	m.Points = reversed

	return m
}

// metricDirection compares the last 4 values vs the previous 4.
func metricDirection(values []float64, lowerIsBetter bool) (string, float64) {
	n := len(values)
	if n < 8 {
		return "stable", 0
	}

	recent := rollingAvg(values, n-1, 4)
	prev := rollingAvg(values, n-5, 4)
	if prev == 0 {
		return "stable", 0
	}

	delta := (recent - prev) / prev * 100
	if math.Abs(delta) < 10 {
		return "stable", delta
	}

	if (delta < 0) == lowerIsBetter {
		return "improving", delta
	}
	return "worsening", delta
}

// isoWeekStart returns the Monday of the given ISO year/week.
func isoWeekStart(year, week int) time.Time {
	// Jan 4 is always in week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := jan4.Weekday()
	if weekday == time.Sunday {
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, -int(weekday-time.Monday))
	return monday.AddDate(0, 0, (week-1)*7)
}

// weekLabel formats a date as "Jan 06".
func weekLabel(t time.Time) string {
	return t.Format("Jan 02")
}

func avg(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

// window returns the up to n values ending at index end (inclusive).
func window(values []float64, end, n int) []float64 {
	start := max(end-n+1, 0)
	return values[start : end+1]
}

func rollingAvg(values []float64, end, n int) float64 {
	w := window(values, end, n)
	if len(w) == 0 {
		return 0
	}
	return stat.Mean(w, nil)
}

// rollingStddev is the population standard deviation of the window.
func rollingStddev(values []float64, end, n int) float64 {
	w := window(values, end, n)
	if len(w) < 2 {
		return 0
	}
	return stat.PopStdDev(w, nil)
}
