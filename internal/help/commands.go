package help

import "strings"

// Version is the gngpvt release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--seed <n>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string // e.g. "session-id"
	Desc     string
	Optional bool
}

// Command describes a gngpvt subcommand (or the top-level binary when Name is "").
type Command struct {
	Name        string   // "run", "simulate", etc; "" for top-level
	Synopsis    string   // one-line description (lowercase, for --help header)
	Brief       string   // short description for usage table (capitalized)
	Usage       string   // full usage line, e.g. "gngpvt history [--limit <n>]"
	TableUsage  string   // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "gngpvt(1)"
}

// tableUsage returns TableUsage if set, otherwise Usage.
func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "gngpvt" for top-level, "gngpvt-<name>" for subs.
func (c Command) ManName() string {
	if c.Name == "" {
		return "gngpvt"
	}
	return "gngpvt-" + strings.ReplaceAll(c.Name, " ", "-")
}

// TopLevel is the top-level gngpvt command (used by FormatUsage).
var TopLevel = Command{
	Name:     "",
	Synopsis: "Go/No-Go psychomotor vigilance test",
}

var CmdRun = Command{
	Name:       "run",
	Synopsis:   "run interactive test sessions",
	Brief:      "Run an interactive session (default)",
	Usage:      "gngpvt run [--target <n>] [--profile pvt|sart] [--trials <n>]",
	TableUsage: "gngpvt run [--target N] [--profile P]",
	Flags: []Flag{
		{Name: "--target <n>", Desc: "Target digit 1-9; 0 picks one at random (default: config)"},
		{Name: "--profile <p>", Desc: "pvt (independent target count) or sart (targets = trials / 9)"},
		{Name: "--trials <n>", Desc: "Number of trials (default: config max_trials)"},
	},
	Description: `Shows the instructions with the session's target digit, then presents
digits one at a time. Press Enter for every digit except the target;
withhold on the target. Each response is classified and feedback is
shown briefly before the next digit.

When the session ends the results are printed and saved as a JSON
report and a reaction-time plot in the data directory. Type q then
Enter at any time to quit; an unfinished session is not saved.

After each session you can start another. The config file is re-read
between sessions, so edits take effect without restarting.`,
	Examples: []string{
		"gngpvt run                    Run with configured settings",
		"gngpvt run --target 3         Withhold on 3",
		"gngpvt run --profile sart     SART-style session",
	},
	SeeAlso: []string{"gngpvt(1)", "gngpvt-simulate(1)", "gngpvt-history(1)"},
}

var CmdSimulate = Command{
	Name:       "simulate",
	Synopsis:   "run an unattended session with a synthetic participant",
	Brief:      "Run a session with a synthetic participant",
	Usage:      "gngpvt simulate [--seed <n>] [--trials <n>] [--mean-rt <ms>]",
	TableUsage: "gngpvt simulate [--seed N]",
	Flags: []Flag{
		{Name: "--seed <n>", Desc: "Random seed for a reproducible session"},
		{Name: "--trials <n>", Desc: "Number of trials (default: config max_trials)"},
		{Name: "--mean-rt <ms>", Desc: "Mean reaction time of the participant (default: 320)"},
	},
	Description: `Runs a complete session on a virtual clock against a synthetic
participant who presses for non-targets after a normally distributed
delay, occasionally presses on targets, and occasionally lapses.
The session finishes instantly and is exported like a real one,
flagged as simulated in the history.`,
	Examples: []string{
		"gngpvt simulate --seed 42     Reproducible simulated session",
	},
	SeeAlso: []string{"gngpvt(1)", "gngpvt-run(1)"},
}

var CmdHistory = Command{
	Name:       "history",
	Synopsis:   "list past sessions",
	Brief:      "List past sessions",
	Usage:      "gngpvt history [--limit <n>]",
	TableUsage: "gngpvt history [--limit N]",
	Flags: []Flag{
		{Name: "--limit <n>", Desc: "Show at most n sessions (default: 20, 0 for all)"},
	},
	Description: `Lists sessions from the history database, newest first, with
profile, target, trial count, accuracy and mean reaction time.`,
	SeeAlso: []string{"gngpvt(1)", "gngpvt-show(1)", "gngpvt-stats(1)"},
}

var CmdStats = Command{
	Name:       "stats",
	Synopsis:   "show aggregate statistics across sessions",
	Brief:      "Show aggregate statistics",
	Usage:      "gngpvt stats [--profile <p>]",
	TableUsage: "gngpvt stats [--profile P]",
	Flags: []Flag{
		{Name: "--profile <p>", Desc: "Only include sessions of this profile"},
	},
	Description: `Summarizes the history database: session and trial totals, mean
accuracy and reaction time, best and worst sessions, and breakdowns
by profile and by month.`,
	SeeAlso: []string{"gngpvt(1)", "gngpvt-history(1)", "gngpvt-trends(1)"},
}

var CmdTrends = Command{
	Name:       "trends",
	Synopsis:   "show weekly performance trends",
	Brief:      "Show weekly performance trends",
	Usage:      "gngpvt trends [--profile <p>] [--weeks <n>]",
	TableUsage: "gngpvt trends [--weeks N]",
	Flags: []Flag{
		{Name: "--profile <p>", Desc: "Only include sessions of this profile"},
		{Name: "--weeks <n>", Desc: "Number of recent weeks to list (default: 12)"},
	},
	Description: `Groups sessions by ISO week and tracks mean reaction time, accuracy,
commission errors and lapses. Each week is compared against a 4-week
rolling average and outlying weeks are flagged. The last 4 weeks are
compared with the 4 before them to report whether each measure is
improving or worsening. Simulated sessions are not included.`,
	SeeAlso: []string{"gngpvt(1)", "gngpvt-stats(1)"},
}

var CmdShow = Command{
	Name:     "show",
	Synopsis: "print a stored session report",
	Brief:    "Print a stored session report",
	Usage:    "gngpvt show <session-id>",
	Args: []Arg{
		{Name: "session-id", Desc: "ID from gngpvt history"},
	},
	Description: `Prints the results of a past session. Reads the JSON report from the
data directory, or the compressed archive copy when the report file
has been removed.`,
	SeeAlso: []string{"gngpvt(1)", "gngpvt-history(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config and environment",
	Brief:    "Validate config and environment",
	Usage:    "gngpvt check",
	Description: `Checks the config file, session settings, whether a stimulus sequence
can be built for the configured counts, the data directory, the
history database, archiving and logging. Exits 1 on any failure.`,
	SeeAlso: []string{"gngpvt(1)", "gngpvt-init(1)"},
}

var CmdInit = Command{
	Name:     "init",
	Synopsis: "write a default config file",
	Brief:    "Write a default config file",
	Usage:    "gngpvt init [data-dir]",
	Args: []Arg{
		{Name: "data-dir", Desc: "Where reports are saved (default: ~/.local/share/gng-pvt)", Optional: true},
	},
	Description: `Writes ~/.config/gng-pvt/config.toml with every setting at its default
value. An existing file is left untouched.`,
	SeeAlso: []string{"gngpvt(1)", "gngpvt-check(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "gngpvt version",
	SeeAlso:  []string{"gngpvt(1)"},
}

// Subcommands lists all subcommands in display order.
var Subcommands = []Command{
	CmdRun,
	CmdSimulate,
	CmdHistory,
	CmdStats,
	CmdTrends,
	CmdShow,
	CmdCheck,
	CmdInit,
	CmdVersion,
}

// Lookup returns the subcommand named name.
func Lookup(name string) (Command, bool) {
	for _, c := range Subcommands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}
