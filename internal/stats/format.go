package stats

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/suykerbuyk/gng-pvt/internal/history"
)

// Format renders a Summary as aligned terminal output.
func Format(s Summary, profile string) string {
	if s.TotalSessions == 0 {
		if profile != "" {
			return fmt.Sprintf("gngpvt stats --profile %s\n\n  No sessions found for profile %q.\n", profile, profile)
		}
		return "gngpvt stats\n\n  No sessions found. Run `gngpvt run` or `gngpvt simulate` first.\n"
	}

	var b strings.Builder

	if profile != "" {
		fmt.Fprintf(&b, "gngpvt stats --profile %s\n", profile)
	} else {
		b.WriteString("gngpvt stats\n")
	}

	b.WriteString("\nOverview\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "sessions", humanize.Comma(int64(s.TotalSessions)))
	if s.SimulatedSessions > 0 {
		fmt.Fprintf(&b, "  %-20s %s\n", "simulated", humanize.Comma(int64(s.SimulatedSessions)))
	}
	fmt.Fprintf(&b, "  %-20s %s\n", "trials", humanize.Comma(int64(s.TotalTrials)))
	fmt.Fprintf(&b, "  %-20s %s\n", "errors", humanize.Comma(int64(s.TotalErrors)))

	b.WriteString("\nAverages\n")
	fmt.Fprintf(&b, "  %-20s %.2f%%\n", "accuracy", s.MeanAccuracy)
	fmt.Fprintf(&b, "  %-20s %s\n", "reaction time", history.FormatRT(s.MeanRT))

	if s.Best != nil && s.Worst != nil {
		b.WriteString("\nSessions\n")
		fmt.Fprintf(&b, "  %-20s %.2f%%  %s  %s\n", "best", s.Best.Accuracy, s.Best.Date, s.Best.ID)
		fmt.Fprintf(&b, "  %-20s %.2f%%  %s  %s\n", "worst", s.Worst.Accuracy, s.Worst.Date, s.Worst.ID)
	}

	if profile == "" && len(s.Profiles) > 0 {
		b.WriteString("\nProfiles\n")
		for _, p := range s.Profiles {
			fmt.Fprintf(&b, "  %-12s %3d sessions   %6.2f%%\n", p.Name, p.Sessions, p.MeanAccuracy)
		}
	}

	if len(s.Monthly) > 0 {
		b.WriteString("\nMonthly Trend\n")
		for _, m := range s.Monthly {
			fmt.Fprintf(&b, "  %-12s %3d sessions   %6s trials   %6.2f%%\n",
				m.Month, m.Sessions, humanize.Comma(int64(m.Trials)), m.MeanAccuracy)
		}
	}

	return b.String()
}
