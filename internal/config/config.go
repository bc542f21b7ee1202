package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/suykerbuyk/gng-pvt/internal/engine"
	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

// Config holds all gng-pvt configuration.
type Config struct {
	DataDir string `toml:"data_dir"`

	Session SessionSettings `toml:"session"`
	Archive ArchiveConfig   `toml:"archive"`
	Logging LoggingConfig   `toml:"logging"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// SessionSettings are the per-session test parameters.
type SessionSettings struct {
	Profile            string  `toml:"profile"`
	TargetNumber       int     `toml:"target_number"`
	MaxTrials          int     `toml:"max_trials"`
	TargetTrials       int     `toml:"target_trials"`
	MinIntervalS       float64 `toml:"min_interval_s"`
	MaxIntervalS       float64 `toml:"max_interval_s"`
	ResponseLimitMs    int     `toml:"response_limit_ms"`
	ResponseOutlierMs  int     `toml:"response_outlier_ms"`
	FeedbackDurationMs int     `toml:"feedback_duration_ms"`
	// Seed fixes the random source when non-zero.
	Seed uint64 `toml:"seed"`
}

type ArchiveConfig struct {
	Compress bool `toml:"compress"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: "~/.local/share/gng-pvt",
		Session: SessionSettings{
			Profile:            string(sequence.ProfilePVT),
			TargetNumber:       0,
			MaxTrials:          100,
			TargetTrials:       25,
			MinIntervalS:       0.5,
			MaxIntervalS:       5.0,
			ResponseLimitMs:    1500,
			ResponseOutlierMs:  100,
			FeedbackDurationMs: 1000,
		},
		Archive: ArchiveConfig{
			Compress: true,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	cfg := DefaultConfig()
	cfg.DataDir = expandHome(cfg.DataDir)
	return cfg, nil
}

// LoadFile reads config from path on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.DataDir = expandHome(cfg.DataDir)
	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "gng-pvt", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "gng-pvt", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// SessionConfig validates the [session] table and converts it to an
// engine config. Target trials are not yet derived for the profile; see
// engine.Config.ResolveTarget.
func (c Config) SessionConfig() (engine.Config, error) {
	s := c.Session
	profile, err := sequence.ParseProfile(s.Profile)
	if err != nil {
		return engine.Config{}, fmt.Errorf("%w: %w", engine.ErrInvalidConfig, err)
	}
	ec := engine.Config{
		Profile:          profile,
		Target:           s.TargetNumber,
		TotalTrials:      s.MaxTrials,
		TargetTrials:     sequence.TargetCount(profile, s.MaxTrials, s.TargetTrials),
		MinInterval:      seconds(s.MinIntervalS),
		MaxInterval:      seconds(s.MaxIntervalS),
		ResponseLimit:    time.Duration(s.ResponseLimitMs) * time.Millisecond,
		OutlierThreshold: time.Duration(s.ResponseOutlierMs) * time.Millisecond,
		FeedbackDuration: time.Duration(s.FeedbackDurationMs) * time.Millisecond,
	}
	if err := ec.Validate(); err != nil {
		return engine.Config{}, err
	}
	return ec, nil
}

// HistoryPath returns the SQLite history database path.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// ArchiveDir returns the directory for compressed reports.
func (c Config) ArchiveDir() string {
	return filepath.Join(c.DataDir, "archive")
}

// LogDir returns the directory for rotated log files.
func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
