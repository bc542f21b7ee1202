package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

// ErrInvalidConfig wraps every Config validation failure.
var ErrInvalidConfig = errors.New("invalid session config")

// Config holds the immutable settings of one session.
type Config struct {
	Profile sequence.Profile
	// Target is the no-go digit. 0 means pick one at session start.
	Target           int
	TotalTrials      int
	TargetTrials     int
	MinInterval      time.Duration
	MaxInterval      time.Duration
	ResponseLimit    time.Duration
	OutlierThreshold time.Duration
	FeedbackDuration time.Duration
}

// Validate checks the invariants a session relies on. A zero Target is
// accepted; Begin requires it resolved.
func (c Config) Validate() error {
	if c.Target < 0 || c.Target > 9 {
		return fmt.Errorf("%w: target %d outside 0-9", ErrInvalidConfig, c.Target)
	}
	if c.TotalTrials <= 0 {
		return fmt.Errorf("%w: total trials must be positive, got %d", ErrInvalidConfig, c.TotalTrials)
	}
	if c.TargetTrials < 0 || c.TargetTrials > c.TotalTrials {
		return fmt.Errorf("%w: target trials %d not within 0-%d", ErrInvalidConfig, c.TargetTrials, c.TotalTrials)
	}
	if c.MinInterval <= 0 || c.MaxInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	}
	if c.MinInterval > c.MaxInterval {
		return fmt.Errorf("%w: min interval %v exceeds max interval %v", ErrInvalidConfig, c.MinInterval, c.MaxInterval)
	}
	if c.ResponseLimit <= 0 || c.OutlierThreshold <= 0 || c.FeedbackDuration <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	}
	return nil
}

// ResolveTarget returns c with a random target in 1-9 if Target is 0, and
// TargetTrials derived from the profile.
func (c Config) ResolveTarget(rng *rand.Rand) Config {
	if c.Target == 0 {
		c.Target = rng.IntN(9) + 1
	}
	c.TargetTrials = sequence.TargetCount(c.Profile, c.TotalTrials, c.TargetTrials)
	return c
}

// GenerateSequence builds the stimulus sequence for a resolved config.
func (c Config) GenerateSequence(rng *rand.Rand) (*sequence.Sequence, error) {
	return sequence.Generate(rng, c.Target, c.TotalTrials, c.TargetTrials)
}

func ms(d time.Duration) int {
	return int(d / time.Millisecond)
}
