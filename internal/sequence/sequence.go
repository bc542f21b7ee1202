package sequence

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrSequenceConstruction is returned when no ordering without adjacent
// targets exists for the requested counts. Callers must treat it as a
// failed session start.
var ErrSequenceConstruction = errors.New("no stimulus order without adjacent targets exists")

// Profile selects how the target-trial count is derived.
type Profile string

const (
	// ProfilePVT takes the target-trial count from configuration.
	ProfilePVT Profile = "pvt"
	// ProfileSART derives the target-trial count as total/9.
	ProfileSART Profile = "sart"
)

// ParseProfile accepts "pvt" or "sart" (empty means pvt).
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case "", ProfilePVT:
		return ProfilePVT, nil
	case ProfileSART:
		return ProfileSART, nil
	default:
		return "", fmt.Errorf("unknown profile %q (want pvt or sart)", s)
	}
}

// TargetCount returns the number of target trials for a session of total
// trials under profile p. configured is used only by ProfilePVT.
func TargetCount(p Profile, total, configured int) int {
	if p == ProfileSART {
		return total / 9
	}
	return configured
}

// Sequence is an ordered list of stimulus digits consumed from the tail.
type Sequence struct {
	digits []int
}

// New wraps digits as a Sequence. The slice is copied.
func New(digits ...int) *Sequence {
	return &Sequence{digits: append([]int(nil), digits...)}
}

// Pop removes and returns the last digit. ok is false when empty.
func (s *Sequence) Pop() (digit int, ok bool) {
	if s == nil || len(s.digits) == 0 {
		return 0, false
	}
	last := len(s.digits) - 1
	digit = s.digits[last]
	s.digits = s.digits[:last]
	return digit, true
}

// Len returns the number of digits left.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.digits)
}

// Digits returns a copy of the remaining digits in storage order.
func (s *Sequence) Digits() []int {
	if s == nil {
		return nil
	}
	return append([]int(nil), s.digits...)
}

// Generate builds a sequence of total digits holding exactly targetCount
// copies of target, with every other slot drawn uniformly from the eight
// non-target digits, and no two targets adjacent.
//
// Targets are placed into distinct gaps around the non-target digits, each
// subset of gaps equally likely. Failure depends only on the counts, never
// on the random draw: Generate returns ErrSequenceConstruction exactly when
// Feasible is false.
func Generate(rng *rand.Rand, target, total, targetCount int) (*Sequence, error) {
	if target < 1 || target > 9 {
		return nil, fmt.Errorf("generate sequence: target %d outside 1-9", target)
	}
	if total < 0 || targetCount < 0 {
		return nil, fmt.Errorf("generate sequence: negative count (total=%d targets=%d)", total, targetCount)
	}
	if targetCount > total {
		return nil, fmt.Errorf("generate sequence: %d targets exceed %d trials", targetCount, total)
	}

	if !Feasible(total, targetCount) {
		return nil, fmt.Errorf("generate sequence (target=%d total=%d targets=%d): %w",
			target, total, targetCount, ErrSequenceConstruction)
	}

	nonTargets := total - targetCount
	gaps := nonTargets + 1

	others := make([]int, 0, 8)
	for d := 1; d <= 9; d++ {
		if d != target {
			others = append(others, d)
		}
	}

	chosen := make([]bool, gaps)
	for _, g := range rng.Perm(gaps)[:targetCount] {
		chosen[g] = true
	}

	digits := make([]int, 0, total)
	for g := 0; g < gaps; g++ {
		if chosen[g] {
			digits = append(digits, target)
		}
		if g < nonTargets {
			digits = append(digits, others[rng.IntN(len(others))])
		}
	}

	return &Sequence{digits: digits}, nil
}

// Feasible reports whether targetCount targets fit into total slots without
// two of them touching.
func Feasible(total, targetCount int) bool {
	return targetCount >= 0 && targetCount <= total && targetCount <= total-targetCount+1
}

// HasAdjacent reports whether two consecutive entries both equal target.
func HasAdjacent(digits []int, target int) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] == target && digits[i-1] == target {
			return true
		}
	}
	return false
}
