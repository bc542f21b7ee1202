package help

import (
	"fmt"
	"strings"
)

// FormatTerminal renders a subcommand's help text for terminal --help output.
func FormatTerminal(c Command) string {
	var sections []string

	sections = append(sections, fmt.Sprintf("gngpvt %s: %s", c.Name, c.Synopsis))
	sections = append(sections, fmt.Sprintf("Usage: %s", c.Usage))

	// Args and flags share one description column.
	maxNameLen := 0
	for _, a := range c.Args {
		if len(a.Name) > maxNameLen {
			maxNameLen = len(a.Name)
		}
	}
	for _, f := range c.Flags {
		if len(f.Name) > maxNameLen {
			maxNameLen = len(f.Name)
		}
	}
	col := 2 + maxNameLen + 3
	if len(c.Args) > 0 && len(c.Flags) > 0 && col < 13 {
		col = 13
	}

	if len(c.Args) > 0 {
		var s strings.Builder
		s.WriteString("Arguments:")
		for _, a := range c.Args {
			gap := col - 2 - len(a.Name)
			fmt.Fprintf(&s, "\n  %s%s%s", a.Name, strings.Repeat(" ", gap), a.Desc)
		}
		sections = append(sections, s.String())
	}

	if len(c.Flags) > 0 {
		var s strings.Builder
		s.WriteString("Flags:")
		for _, f := range c.Flags {
			gap := col - 2 - len(f.Name)
			fmt.Fprintf(&s, "\n  %s%s%s", f.Name, strings.Repeat(" ", gap), f.Desc)
		}
		sections = append(sections, s.String())
	}

	if c.Description != "" {
		sections = append(sections, c.Description)
	}

	if len(c.Examples) > 0 {
		s := "Examples:"
		for _, e := range c.Examples {
			s += "\n  " + e
		}
		sections = append(sections, s)
	}

	return strings.Join(sections, "\n\n") + "\n"
}

// FormatUsage renders the top-level usage text (for gngpvt --help / gngpvt help).
func FormatUsage(top Command, subs []Command) string {
	var b strings.Builder

	fmt.Fprintf(&b, "gngpvt v%s: %s\n", Version, top.Synopsis)

	b.WriteString("\nUsage:\n")

	type entry struct {
		usage string
		brief string
	}
	entries := make([]entry, 0, len(subs)+1)
	for _, s := range subs {
		entries = append(entries, entry{s.tableUsage(), s.Brief})
	}
	entries = append(entries, entry{"gngpvt help [command]", "Show this help"})

	maxWidth := 0
	for _, e := range entries {
		if len(e.usage) > maxWidth {
			maxWidth = len(e.usage)
		}
	}

	for _, e := range entries {
		gap := maxWidth - len(e.usage) + 3
		fmt.Fprintf(&b, "  %s%s%s\n", e.usage, strings.Repeat(" ", gap), e.brief)
	}

	b.WriteString(`
During a session press Enter to respond, q then Enter to quit.

Configuration: ~/.config/gng-pvt/config.toml
`)
	return b.String()
}
