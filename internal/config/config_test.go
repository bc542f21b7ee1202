package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/gng-pvt/internal/engine"
	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DataDir != "~/.local/share/gng-pvt" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	s := cfg.Session
	if s.Profile != "pvt" {
		t.Errorf("Profile = %q", s.Profile)
	}
	if s.MaxTrials != 100 || s.TargetTrials != 25 {
		t.Errorf("trials = %d/%d", s.MaxTrials, s.TargetTrials)
	}
	if s.MinIntervalS != 0.5 || s.MaxIntervalS != 5.0 {
		t.Errorf("intervals = %v-%v", s.MinIntervalS, s.MaxIntervalS)
	}
	if s.ResponseLimitMs != 1500 || s.ResponseOutlierMs != 100 || s.FeedbackDurationMs != 1000 {
		t.Errorf("durations = %d/%d/%d", s.ResponseLimitMs, s.ResponseOutlierMs, s.FeedbackDurationMs)
	}
	if !cfg.Archive.Compress {
		t.Error("Archive.Compress should default to true")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.HasPrefix(cfg.DataDir, "~/") {
		t.Errorf("DataDir not expanded: %q", cfg.DataDir)
	}
	if !strings.HasSuffix(cfg.DataDir, ".local/share/gng-pvt") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty for defaults", cfg.Path)
	}
}

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	dir := filepath.Join(root, "gng-pvt")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, xdg, `data_dir = "/custom/data"

[session]
profile = "sart"
target_number = 3
max_trials = 45
min_interval_s = 1.0

[archive]
compress = false

[logging]
level = "debug"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.DataDir != "/custom/data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Session.Profile != "sart" || cfg.Session.TargetNumber != 3 || cfg.Session.MaxTrials != 45 {
		t.Errorf("Session = %+v", cfg.Session)
	}
	// Unset keys keep their defaults.
	if cfg.Session.ResponseLimitMs != 1500 {
		t.Errorf("ResponseLimitMs = %d", cfg.Session.ResponseLimitMs)
	}
	if cfg.Archive.Compress {
		t.Error("Archive.Compress should be false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.MaxBackups != 3 {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_XDGTakesPriority(t *testing.T) {
	xdg := t.TempDir()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", home)

	writeConfig(t, xdg, `data_dir = "/from/xdg"`)
	writeConfig(t, filepath.Join(home, ".config"), `data_dir = "/from/home"`)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/from/xdg" {
		t.Errorf("DataDir = %q, want /from/xdg", cfg.DataDir)
	}
}

func TestLoad_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	writeConfig(t, filepath.Join(home, ".config"), `data_dir = "~/pvt-data"`)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != filepath.Join(home, "pvt-data") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	writeConfig(t, xdg, "this is not [valid toml")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestSessionConfig_Defaults(t *testing.T) {
	ec, err := DefaultConfig().SessionConfig()
	if err != nil {
		t.Fatalf("SessionConfig: %v", err)
	}
	want := engine.Config{
		Profile:          sequence.ProfilePVT,
		Target:           0,
		TotalTrials:      100,
		TargetTrials:     25,
		MinInterval:      500 * time.Millisecond,
		MaxInterval:      5 * time.Second,
		ResponseLimit:    1500 * time.Millisecond,
		OutlierThreshold: 100 * time.Millisecond,
		FeedbackDuration: time.Second,
	}
	if ec != want {
		t.Errorf("SessionConfig = %+v\nwant %+v", ec, want)
	}
}

func TestSessionConfig_SARTDerivesTargets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Profile = "sart"
	cfg.Session.MaxTrials = 90
	cfg.Session.TargetTrials = 40

	ec, err := cfg.SessionConfig()
	if err != nil {
		t.Fatal(err)
	}
	if ec.TargetTrials != 10 {
		t.Errorf("TargetTrials = %d, want 10", ec.TargetTrials)
	}
}

func TestSessionConfig_Invalid(t *testing.T) {
	mutations := map[string]func(*SessionSettings){
		"profile":      func(s *SessionSettings) { s.Profile = "stroop" },
		"target":       func(s *SessionSettings) { s.TargetNumber = 12 },
		"intervals":    func(s *SessionSettings) { s.MinIntervalS = 6 },
		"limit":        func(s *SessionSettings) { s.ResponseLimitMs = 0 },
		"targets":      func(s *SessionSettings) { s.TargetTrials = 101 },
		"no trials":    func(s *SessionSettings) { s.MaxTrials = 0 },
		"no feedback":  func(s *SessionSettings) { s.FeedbackDurationMs = -5 },
		"zero outlier": func(s *SessionSettings) { s.ResponseOutlierMs = 0 },
	}
	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg.Session)
		if _, err := cfg.SessionConfig(); !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidConfig", name, err)
		}
	}
}

func TestPaths(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if cfg.HistoryPath() != "/data/history.db" {
		t.Errorf("HistoryPath = %q", cfg.HistoryPath())
	}
	if cfg.ArchiveDir() != "/data/archive" {
		t.Errorf("ArchiveDir = %q", cfg.ArchiveDir())
	}
	if cfg.LogDir() != "/data/logs" {
		t.Errorf("LogDir = %q", cfg.LogDir())
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandHome("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome = %q", got)
	}
}
