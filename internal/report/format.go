package report

import (
	"fmt"
	"strings"
)

// Format renders r as aligned terminal output. Saved lists file paths
// written for the session and may be empty.
func Format(r Report, saved ...string) string {
	var b strings.Builder
	s := r.Summary

	b.WriteString("Test Complete\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "date", r.DateTime)
	fmt.Fprintf(&b, "  %-20s %d\n", "target", r.Settings.TargetNumber)

	b.WriteString("\nResults\n")
	fmt.Fprintf(&b, "  %-20s %d\n", "trials", s.TotalTrialsConducted)
	fmt.Fprintf(&b, "  %-20s %d\n", "correct go", s.CorrectGoResponses)
	fmt.Fprintf(&b, "  %-20s %d\n", "correct no-go", s.CorrectNoGoResponses)
	fmt.Fprintf(&b, "  %-20s %d\n", "commission errors", s.CommissionErrors)
	fmt.Fprintf(&b, "  %-20s %d\n", "too fast", s.OutliersCommissionTooFast)
	fmt.Fprintf(&b, "  %-20s %d\n", "too late", s.OutliersOmissionTooLate)
	fmt.Fprintf(&b, "  %-20s %.2f%%\n", "accuracy", s.AccuracyPercentage)

	b.WriteString("\nReaction Time\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "average", formatMs(s.AverageReactionTimeMs))
	fmt.Fprintf(&b, "  %-20s %s\n", "worst", formatMs(s.WorstReactionTimeMs))
	fmt.Fprintf(&b, "  %-20s %s\n", "std dev", formatMs(s.ReactionTimeStdDevMs))

	var paths []string
	for _, p := range saved {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) > 0 {
		b.WriteString("\nSaved\n")
		for _, p := range paths {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	return b.String()
}

func formatMs(v *int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d ms", *v)
}
