package check

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/suykerbuyk/gng-pvt/internal/config"
	"github.com/suykerbuyk/gng-pvt/internal/history"
	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "gngpvt check\n\n  no checks ran\n"
	}

	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("gngpvt check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports which config file was loaded.
func CheckConfig(cfg config.Config) Result {
	if cfg.Path == "" {
		return Result{Name: "config", Status: Warn, Detail: "no config file, using defaults (run gngpvt init)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(cfg.Path)}
}

// CheckSession validates the [session] settings.
func CheckSession(cfg config.Config) Result {
	ec, err := cfg.SessionConfig()
	if err != nil {
		return Result{Name: "session", Status: Fail, Detail: err.Error()}
	}
	target := "random target"
	if ec.Target != 0 {
		target = fmt.Sprintf("target %d", ec.Target)
	}
	return Result{
		Name:   "session",
		Status: Pass,
		Detail: fmt.Sprintf("%s, %d trials, %d targets, %s", ec.Profile, ec.TotalTrials, ec.TargetTrials, target),
	}
}

// CheckSequence confirms a sequence with no adjacent targets can be built
// for the configured counts.
func CheckSequence(cfg config.Config) Result {
	ec, err := cfg.SessionConfig()
	if err != nil {
		return Result{Name: "sequence", Status: Fail, Detail: "session settings invalid"}
	}
	if !sequence.Feasible(ec.TotalTrials, ec.TargetTrials) {
		return Result{
			Name:   "sequence",
			Status: Fail,
			Detail: fmt.Sprintf("%d targets cannot be spread over %d trials without adjacency", ec.TargetTrials, ec.TotalTrials),
		}
	}
	ec = ec.ResolveTarget(rand.New(rand.NewPCG(1, 2)))
	if _, err := ec.GenerateSequence(rand.New(rand.NewPCG(3, 4))); err != nil {
		return Result{Name: "sequence", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "sequence", Status: Pass, Detail: "feasible"}
}

// CheckDataDir checks that the data directory can be created and written.
func CheckDataDir(dir string) Result {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: "data dir", Status: Fail, Detail: dir + " cannot be created"}
	}
	f, err := os.CreateTemp(dir, ".gngpvt-check-*")
	if err != nil {
		return Result{Name: "data dir", Status: Fail, Detail: dir + " not writable"}
	}
	f.Close()
	os.Remove(f.Name())
	return Result{Name: "data dir", Status: Pass, Detail: config.CompressHome(dir)}
}

// CheckHistory opens the history database and reports its size.
func CheckHistory(path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Name: "history", Status: Warn, Detail: filepath.Base(path) + " not created yet"}
	}
	store, err := history.Open(path)
	if err != nil {
		return Result{Name: "history", Status: Fail, Detail: err.Error()}
	}
	defer store.Close()
	n, err := store.Count()
	if err != nil {
		return Result{Name: "history", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "history", Status: Pass, Detail: fmt.Sprintf("%s (%d sessions)", filepath.Base(path), n)}
}

// CheckArchive reports archive settings and archived report count.
func CheckArchive(cfg config.Config) Result {
	if !cfg.Archive.Compress {
		return Result{Name: "archive", Status: Pass, Detail: "disabled"}
	}
	matches, _ := filepath.Glob(filepath.Join(cfg.ArchiveDir(), "*.json.zst"))
	return Result{Name: "archive", Status: Pass, Detail: fmt.Sprintf("%d archived reports", len(matches))}
}

// CheckLogging validates the configured log level.
func CheckLogging(lcfg config.LoggingConfig) Result {
	if _, err := zapcore.ParseLevel(lcfg.Level); err != nil {
		return Result{Name: "logging", Status: Fail, Detail: fmt.Sprintf("unknown level %q", lcfg.Level)}
	}
	return Result{Name: "logging", Status: Pass, Detail: "level " + lcfg.Level}
}

// Run executes all checks against the given config and returns a report.
func Run(cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig(cfg))
	results = append(results, CheckSession(cfg))
	results = append(results, CheckSequence(cfg))
	results = append(results, CheckDataDir(cfg.DataDir))
	results = append(results, CheckHistory(cfg.HistoryPath()))
	results = append(results, CheckArchive(cfg))
	results = append(results, CheckLogging(cfg.Logging))

	return Report{Results: results}
}
