package help

import (
	"fmt"
	"strings"
	"time"
)

const manual = "GNG-PVT Manual"

// Term is one entry of a roff definition list.
type Term struct {
	Name string
	Desc string
}

// Outcomes lists the trial classifications shown on the top-level page.
var Outcomes = []Term{
	{"CorrectGo", "Press on a non-target between the outlier threshold and the response limit, both ends counted as on time."},
	{"CorrectNoGo", "No press on the target before the response window closed."},
	{"CommissionError", "Press on the target at or after the outlier threshold."},
	{"CommissionOutlier", "Press on any digit faster than the outlier threshold. Takes precedence over CommissionError."},
	{"OmissionOutlier", "No press on a non-target before the response window closed."},
}

// Files lists the paths under the data directory, relative to it.
var Files = []Term{
	{"YYYY-MM-DD_HH-MM-SS.json", "Session report named after the session's local end time."},
	{"YYYY-MM-DD_HH-MM-SS.png", "Reaction-time plot for the same session."},
	{"archive/<session-id>.json.zst", "Compressed copy of the report."},
	{"history.db", "SQLite history of completed sessions."},
	{"logs/gngpvt.log", "Rotating JSON log."},
}

// ExitStatus lists the process exit codes.
var ExitStatus = []Term{
	{"0", "Success, including a session aborted by the operator."},
	{"1", "Invalid arguments or configuration, an unknown command, a missing session, or a failed check."},
}

// FormatRoff renders a subcommand as a roff-formatted man page (.1).
// If date is empty, today's date is used (pass a fixed date for reproducible builds).
func FormatRoff(c Command, date string) string {
	var b strings.Builder
	writeTH(&b, c.ManName(), date)

	b.WriteString(".SH NAME\n")
	fmt.Fprintf(&b, "%s \\- %s\n", c.ManName(), escapeRoff(c.Synopsis))

	b.WriteString(".SH SYNOPSIS\n")
	b.WriteString(".B " + escapeRoff(c.Usage) + "\n")

	if c.Description != "" {
		b.WriteString(".SH DESCRIPTION\n")
		writeRoffParagraphs(&b, c.Description)
	}

	if len(c.Args) > 0 || len(c.Flags) > 0 {
		opts := make([]Term, 0, len(c.Args)+len(c.Flags))
		for _, a := range c.Args {
			opts = append(opts, Term{a.Name, a.Desc})
		}
		for _, f := range c.Flags {
			opts = append(opts, Term{f.Name, f.Desc})
		}
		writeTerms(&b, "OPTIONS", opts)
	}

	if len(c.Examples) > 0 {
		b.WriteString(".SH EXAMPLES\n.nf\n")
		for _, e := range c.Examples {
			b.WriteString(escapeRoff(e) + "\n")
		}
		b.WriteString(".fi\n")
	}

	refs := make([]string, len(c.SeeAlso))
	for i, ref := range c.SeeAlso {
		refs[i] = formatManRef(ref)
	}
	writeSeeAlso(&b, refs)

	return b.String()
}

// FormatRoffTopLevel renders the top-level gngpvt.1 man page: commands,
// trial outcomes, data files and exit status.
func FormatRoffTopLevel(top Command, subs []Command, date string) string {
	var b strings.Builder
	writeTH(&b, "gngpvt", date)

	b.WriteString(".SH NAME\n")
	fmt.Fprintf(&b, "gngpvt \\- %s\n", escapeRoff(top.Synopsis))

	b.WriteString(".SH SYNOPSIS\n")
	b.WriteString(".B gngpvt\n.RI [ command ]\n.RI [ options ]\n")

	b.WriteString(".SH DESCRIPTION\n")
	b.WriteString(".B gngpvt\n")
	b.WriteString("presents single digits at random intervals. The participant responds\n")
	b.WriteString("to every digit except the session's target digit and withholds on the\n")
	b.WriteString("target. Each trial is classified by reaction time and the session is\n")
	b.WriteString("saved as a JSON report, a reaction-time plot and a history record.\n")
	b.WriteString(".PP\n")
	b.WriteString("With no command,\n.B gngpvt\nruns an interactive session.\n")

	b.WriteString(".SH COMMANDS\n")
	for _, s := range subs {
		fmt.Fprintf(&b, ".TP\n.B \"%s\"\n%s\n", escapeRoff(s.tableUsage()), escapeRoff(s.Brief))
	}

	writeTerms(&b, "OUTCOMES", Outcomes)

	b.WriteString(".SH CONFIGURATION\n")
	b.WriteString("Configuration file: ~/.config/gng-pvt/config.toml\n")
	b.WriteString(".PP\n")
	b.WriteString("Changes to the file apply from the next session of a running\n.B gngpvt run\n")

	writeTerms(&b, "FILES", Files)
	writeTerms(&b, "EXIT STATUS", ExitStatus)

	refs := make([]string, len(subs))
	for i, s := range subs {
		refs[i] = formatManRef(s.ManName() + "(1)")
	}
	writeSeeAlso(&b, refs)

	return b.String()
}

func writeTH(b *strings.Builder, name, date string) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	fmt.Fprintf(b, ".TH %s 1 %q %q %q\n", strings.ToUpper(name), date, "gngpvt "+Version, manual)
}

// writeTerms writes a .SH section holding a tagged paragraph per term.
func writeTerms(b *strings.Builder, section string, terms []Term) {
	if len(terms) == 0 {
		return
	}
	fmt.Fprintf(b, ".SH %s\n", section)
	for _, t := range terms {
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", escapeRoff(t.Name), escapeRoff(t.Desc))
	}
}

func writeSeeAlso(b *strings.Builder, refs []string) {
	if len(refs) == 0 {
		return
	}
	b.WriteString(".SH SEE ALSO\n")
	b.WriteString(strings.Join(refs, ",\n") + "\n")
}

// escapeRoff escapes backslashes, leading dots and hyphens.
func escapeRoff(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n.", "\n\\&.")
	if strings.HasPrefix(s, ".") {
		s = "\\&" + s
	}
	return strings.ReplaceAll(s, "-", "\\-")
}

// writeRoffParagraphs writes description text; blank lines become .PP.
func writeRoffParagraphs(b *strings.Builder, text string) {
	prevBlank := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if !prevBlank {
				b.WriteString(".PP\n")
			}
			prevBlank = true
			continue
		}
		prevBlank = false
		b.WriteString(escapeRoff(line) + "\n")
	}
}

// formatManRef turns "gngpvt-run(1)" into ".BR gngpvt\-run (1)".
func formatManRef(ref string) string {
	if i := strings.Index(ref, "("); i >= 0 {
		return fmt.Sprintf(".BR %s %s", escapeRoff(ref[:i]), ref[i:])
	}
	return ".B " + escapeRoff(ref)
}
