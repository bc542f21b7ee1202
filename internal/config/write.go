package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the gng-pvt config directory path.
// Uses $XDG_CONFIG_HOME/gng-pvt if set, otherwise ~/.config/gng-pvt.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gng-pvt")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gng-pvt")
}

// WriteDefault writes a default config.toml storing data under dataDir.
// Returns the config file path and "created" or "exists".
func WriteDefault(dataDir string) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, "exists", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	d := DefaultConfig()
	if dataDir == "" {
		dataDir = d.DataDir
	}
	s := d.Session

	content := fmt.Sprintf(`data_dir = %q

[session]
# pvt: target_trials used as given. sart: target_trials = max_trials / 9.
profile = %q
# 1-9, or 0 to pick a target at random for each session.
target_number = %d
max_trials = %d
target_trials = %d
min_interval_s = %.1f
max_interval_s = %.1f
response_limit_ms = %d
response_outlier_ms = %d
feedback_duration_ms = %d
# 0 seeds from the clock.
seed = 0

[archive]
compress = %t

[logging]
level = %q
max_size_mb = %d
max_backups = %d
max_age_days = %d
`, CompressHome(dataDir),
		s.Profile, s.TargetNumber, s.MaxTrials, s.TargetTrials,
		s.MinIntervalS, s.MaxIntervalS, s.ResponseLimitMs, s.ResponseOutlierMs, s.FeedbackDurationMs,
		d.Archive.Compress,
		d.Logging.Level, d.Logging.MaxSizeMB, d.Logging.MaxBackups, d.Logging.MaxAgeDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, "created", nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
