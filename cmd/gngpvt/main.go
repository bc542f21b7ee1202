package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/gng-pvt/internal/archive"
	"github.com/suykerbuyk/gng-pvt/internal/check"
	"github.com/suykerbuyk/gng-pvt/internal/config"
	"github.com/suykerbuyk/gng-pvt/internal/help"
	"github.com/suykerbuyk/gng-pvt/internal/history"
	"github.com/suykerbuyk/gng-pvt/internal/logging"
	"github.com/suykerbuyk/gng-pvt/internal/report"
	"github.com/suykerbuyk/gng-pvt/internal/screen"
	"github.com/suykerbuyk/gng-pvt/internal/session"
	"github.com/suykerbuyk/gng-pvt/internal/simulate"
	"github.com/suykerbuyk/gng-pvt/internal/stats"
	"github.com/suykerbuyk/gng-pvt/internal/trends"
)

func main() {
	cmd := "run"
	var args []string
	if len(os.Args) > 1 {
		cmd = os.Args[1]
		args = os.Args[2:]
	}

	if c, ok := help.Lookup(cmd); ok && hasFlag(args, "--help", "-h") {
		fmt.Print(help.FormatTerminal(c))
		return
	}

	switch cmd {
	case "run":
		runSessions(args)

	case "simulate":
		runSimulate(args)

	case "history":
		showHistory(args)

	case "stats":
		showStats(args)

	case "trends":
		showTrends(args)

	case "show":
		if len(args) < 1 || args[0] == "" {
			fatal("usage: %s", help.CmdShow.Usage)
		}
		showSession(args[0])

	case "check":
		cfg := loadConfig()
		r := check.Run(cfg)
		fmt.Print(r.Format())
		if r.HasFailures() {
			os.Exit(1)
		}

	case "init":
		dataDir := ""
		if len(args) > 0 {
			dataDir = args[0]
		}
		path, action, err := config.WriteDefault(dataDir)
		if err != nil {
			fatal("init: %v", err)
		}
		fmt.Printf("%s: %s\n", action, config.CompressHome(path))

	case "version":
		fmt.Printf("gngpvt v%s\n", help.Version)

	case "help", "--help", "-h":
		if len(args) > 0 {
			if c, ok := help.Lookup(args[0]); ok {
				fmt.Print(help.FormatTerminal(c))
				return
			}
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		}
		fmt.Print(help.FormatUsage(help.TopLevel, help.Subcommands))

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, help.FormatUsage(help.TopLevel, help.Subcommands))
		os.Exit(1)
	}
}

// runSessions runs interactive sessions until the operator quits. The
// config file is watched so edits apply to the next session.
func runSessions(args []string) {
	cfg := loadConfig()
	log := newLogger(cfg)
	defer log.Sync()

	var watcher *config.Watcher
	if cfg.Path != "" {
		w, err := config.Watch(cfg.Path, log.Named("config"))
		if err != nil {
			log.Warn("config watch unavailable", zap.Error(err))
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scr := screen.New(os.Stdout)
	events := screen.Responses(ctx, os.Stdin)
	runner := &session.Runner{Screen: scr, Events: events, Log: log.Named("session")}

	for {
		if watcher != nil {
			cfg = watcher.Current()
		}
		cfg = applySessionFlags(cfg, args)

		res, err := runner.Run(ctx, cfg)
		if errors.Is(err, session.ErrAborted) {
			scr.Prompt("Session aborted, nothing saved.")
			return
		}
		if err != nil {
			fatal("run: %v", err)
		}

		scr.Results(report.Format(res.Report, res.ReportPath, res.PlotPath))
		for _, w := range res.Warnings {
			scr.Error(w)
		}

		scr.Prompt("\nPress Enter to run again, q to quit.")
		select {
		case ev, ok := <-events:
			if !ok || ev == screen.Quit {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func runSimulate(args []string) {
	cfg := applySessionFlags(loadConfig(), args)
	log := newLogger(cfg)
	defer log.Sync()

	p := simulate.DefaultParticipant()
	if v := flagValue(args, "--mean-rt"); v != "" {
		p.MeanRT = time.Duration(intFlag("--mean-rt", v)) * time.Millisecond
	}
	var seed uint64
	if v := flagValue(args, "--seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			fatal("--seed: %v", err)
		}
		seed = n
	}

	res, err := session.Simulate(cfg, p, seed, log.Named("simulate"))
	if err != nil {
		fatal("simulate: %v", err)
	}
	fmt.Printf("session %s (simulated)\n\n", res.ID)
	fmt.Print(report.Format(res.Report, res.ReportPath, res.PlotPath))
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
}

func showHistory(args []string) {
	limit := 20
	if v := flagValue(args, "--limit"); v != "" {
		limit = intFlag("--limit", v)
	}
	if limit <= 0 {
		limit = -1
	}

	entries := listEntries(loadConfig(), limit)
	fmt.Print(history.Format(entries, time.Now()))
}

func showStats(args []string) {
	profile := flagValue(args, "--profile")
	entries := listEntries(loadConfig(), -1)
	fmt.Print(stats.Format(stats.Compute(entries, profile), profile))
}

func showTrends(args []string) {
	profile := flagValue(args, "--profile")
	weeks := 12
	if v := flagValue(args, "--weeks"); v != "" {
		weeks = intFlag("--weeks", v)
	}
	entries := listEntries(loadConfig(), -1)
	fmt.Print(trends.Format(trends.Compute(entries, profile, weeks)))
}

func showSession(id string) {
	cfg := loadConfig()
	store := openHistory(cfg)
	defer store.Close()

	e, err := store.Get(id)
	if err != nil {
		fatal("show: %v", err)
	}

	r, err := report.Read(e.ReportPath)
	if err != nil {
		rc, aerr := archive.Open(id, cfg.ArchiveDir())
		if aerr != nil {
			fatal("show: %v (no archive copy: %v)", err, aerr)
		}
		defer rc.Close()
		r, err = report.Decode(rc)
		if err != nil {
			fatal("show: archive %s: %v", id, err)
		}
	}

	fmt.Printf("session %s", e.ID)
	if e.Simulated {
		fmt.Print(" (simulated)")
	}
	fmt.Print("\n\n")
	fmt.Print(report.Format(r, e.ReportPath, e.PlotPath, e.ArchivePath))
}

// applySessionFlags overrides [session] settings from command-line flags.
func applySessionFlags(cfg config.Config, args []string) config.Config {
	if v := flagValue(args, "--profile"); v != "" {
		cfg.Session.Profile = v
	}
	if v := flagValue(args, "--target"); v != "" {
		cfg.Session.TargetNumber = intFlag("--target", v)
	}
	if v := flagValue(args, "--trials"); v != "" {
		n := intFlag("--trials", v)
		// Keep the configured target share for independent target counts.
		if cfg.Session.MaxTrials > 0 && cfg.Session.TargetTrials > 0 && n > 0 {
			t := cfg.Session.TargetTrials * n / cfg.Session.MaxTrials
			cfg.Session.TargetTrials = max(t, 1)
		}
		cfg.Session.MaxTrials = n
	}
	return cfg
}

func listEntries(cfg config.Config, limit int) []history.Entry {
	if _, err := os.Stat(cfg.HistoryPath()); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	store := openHistory(cfg)
	defer store.Close()
	entries, err := store.List(limit)
	if err != nil {
		fatal("history: %v", err)
	}
	return entries
}

func openHistory(cfg config.Config) *history.Store {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		fatal("open history: %v", err)
	}
	return store
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	return cfg
}

func newLogger(cfg config.Config) *zap.Logger {
	log, err := logging.New(cfg.Logging, cfg.DataDir)
	if err != nil {
		fatal("logging: %v", err)
	}
	return log
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

func intFlag(name, v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		fatal("%s: %q is not a number", name, v)
	}
	return n
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "gngpvt: "+format+"\n", args...)
	os.Exit(1)
}
