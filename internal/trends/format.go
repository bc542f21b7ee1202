package trends

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Format renders a Result as aligned terminal output.
func Format(r Result) string {
	if r.TotalSessions == 0 {
		if r.Profile != "" {
			return fmt.Sprintf("gngpvt trends --profile %s\n\n  No sessions found for profile %q.\n", r.Profile, r.Profile)
		}
		return "gngpvt trends\n\n  No sessions found. Run `gngpvt run` first.\n"
	}

	var b strings.Builder

	if r.Profile != "" {
		fmt.Fprintf(&b, "gngpvt trends --profile %s\n", r.Profile)
	} else {
		b.WriteString("gngpvt trends\n")
	}

	fmt.Fprintf(&b, "\nOverview (%s sessions, %d weeks)\n", humanize.Comma(int64(r.TotalSessions)), r.TotalWeeks)
	for _, m := range r.Metrics {
		detail := ""
		if m.Direction != "stable" && m.DeltaPct != 0 {
			detail = fmt.Sprintf(" (%+.0f%%)", m.DeltaPct)
		}
		fmt.Fprintf(&b, "  %-12s %10s avg  %s %s%s\n",
			m.Name, formatMetricValue(m.Name, m.OverallAvg), directionArrow(m.Direction), m.Direction, detail)
	}

	for _, m := range r.Metrics {
		if len(m.Points) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", metricTitle(m.Name))
		fmt.Fprintf(&b, "  %-10s %10s %10s\n", "Week", "Value", "Avg")
		for _, p := range m.Points {
			avgStr := ""
			if p.RollingAvg > 0 {
				avgStr = formatMetricValue(m.Name, p.RollingAvg)
			}
			fmt.Fprintf(&b, "  %-10s %10s %10s%s\n", p.WeekLabel, formatMetricValue(m.Name, p.Value), avgStr, anomalyMarker(p))
		}
	}

	var anomalies []string
	for _, m := range r.Metrics {
		for _, p := range m.Points {
			if !p.Anomaly {
				continue
			}
			kind := "spike"
			if p.Value < p.RollingAvg {
				kind = "dip"
			}
			anomalies = append(anomalies, fmt.Sprintf("  %-10s %-12s %s (avg %s)  %s",
				p.WeekLabel, m.Name, formatMetricValue(m.Name, p.Value), formatMetricValue(m.Name, p.RollingAvg), kind))
		}
	}
	if len(anomalies) > 0 {
		b.WriteString("\nAnomalies\n")
		for _, a := range anomalies {
			b.WriteString(a)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func anomalyMarker(p TrendPoint) string {
	if !p.Anomaly {
		return ""
	}
	if p.Value > p.RollingAvg {
		return "  ^ spike"
	}
	return "  v dip"
}

// directionArrow marks improvement with + and decline with -.
func directionArrow(dir string) string {
	switch dir {
	case "improving":
		return "+"
	case "worsening":
		return "-"
	default:
		return "="
	}
}

func metricTitle(name string) string {
	switch name {
	case MetricMeanRT:
		return "Mean Reaction Time"
	case MetricAccuracy:
		return "Accuracy"
	case MetricCommissions:
		return "Commission Errors per Session"
	case MetricLapses:
		return "Lapses per Session"
	default:
		return name
	}
}

func formatMetricValue(metric string, val float64) string {
	switch metric {
	case MetricMeanRT:
		return humanize.Comma(int64(val+0.5)) + " ms"
	case MetricAccuracy:
		return fmt.Sprintf("%.1f%%", val)
	default:
		return fmt.Sprintf("%.1f", val)
	}
}
