package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Format renders entries as an aligned table, newest first as given.
func Format(entries []Entry, now time.Time) string {
	if len(entries) == 0 {
		return "gngpvt history\n\n  No sessions recorded. Run `gngpvt run` or `gngpvt simulate` first.\n"
	}

	var b strings.Builder
	b.WriteString("gngpvt history\n\n")
	fmt.Fprintf(&b, "  %-36s  %-14s  %-4s  %-6s  %6s  %8s  %8s\n",
		"session", "when", "prof", "target", "trials", "accuracy", "mean rt")
	for _, e := range entries {
		id := e.ID
		if e.Simulated {
			id += "*"
		}
		fmt.Fprintf(&b, "  %-36s  %-14s  %-4s  %6d  %6d  %7.2f%%  %8s\n",
			id,
			humanize.RelTime(e.StartedAt, now, "ago", "from now"),
			e.Profile,
			e.Target,
			e.TotalTrials,
			e.Accuracy,
			FormatRT(e.MeanRT),
		)
	}
	if hasSimulated(entries) {
		b.WriteString("\n  * simulated session\n")
	}
	return b.String()
}

// FormatRT renders an optional reaction time in whole milliseconds.
func FormatRT(rt *float64) string {
	if rt == nil {
		return "N/A"
	}
	return humanize.Comma(int64(*rt+0.5)) + " ms"
}

func hasSimulated(entries []Entry) bool {
	for _, e := range entries {
		if e.Simulated {
			return true
		}
	}
	return false
}
