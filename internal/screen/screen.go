// Package screen is the terminal front end: it draws stimuli and feedback
// and turns keyboard input into response events.
package screen

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/suykerbuyk/gng-pvt/internal/engine"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiClearLine = "\r\033[2K"
)

// Screen renders a session to a terminal. It implements engine.Presenter.
// All methods are safe for concurrent use.
type Screen struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// New returns a Screen writing to out. ANSI styling is used only when out
// is a terminal and NO_COLOR is unset.
func New(out io.Writer) *Screen {
	return &Screen{out: out, color: colorEnabled(out)}
}

// NewPlain returns a Screen that never emits escape sequences.
func NewPlain(out io.Writer) *Screen {
	return &Screen{out: out}
}

func colorEnabled(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Color reports whether ANSI styling is enabled.
func (s *Screen) Color() bool { return s.color }

// Instructions prints the start screen for a session with the given target.
func (s *Screen) Instructions(cfg engine.Config) {
	var b strings.Builder
	b.WriteString(s.paint(ansiBold, "GNG-PVT") + "\n\n")
	fmt.Fprintf(&b, "Target digit this session: %s\n\n", s.paint(ansiBold, fmt.Sprint(cfg.Target)))
	b.WriteString("Digits from 1 to 9 will appear one at a time.\n")
	fmt.Fprintf(&b, "When any digit other than %d appears, press Enter as fast as you can.\n", cfg.Target)
	fmt.Fprintf(&b, "When %d appears, do not press anything.\n", cfg.Target)
	fmt.Fprintf(&b, "%d trials, profile %s. Type q then Enter to quit at any time.\n\n", cfg.TotalTrials, cfg.Profile)
	b.WriteString("Press Enter to start.\n")
	s.write(b.String())
}

// Prompt prints a single line such as a restart question.
func (s *Screen) Prompt(text string) {
	s.write(text + "\n")
}

// Results prints the formatted results text.
func (s *Screen) Results(text string) {
	s.write("\n" + text)
}

// Error prints a failure message.
func (s *Screen) Error(err error) {
	s.write(s.paint(ansiRed, "error: "+err.Error()) + "\n")
}

func (s *Screen) ShowStimulus(digit int) {
	if s.color {
		s.write(ansiClearLine + "        " + s.paint(ansiBold, fmt.Sprint(digit)))
		return
	}
	s.write(fmt.Sprintf("%d\n", digit))
}

func (s *Screen) ClearStimulus() {
	if s.color {
		s.write(ansiClearLine)
	}
}

func (s *Screen) ShowFeedback(text string, style engine.Style) {
	if s.color {
		s.write(ansiClearLine + "        " + s.paint(styleCode(style), text))
		return
	}
	s.write(text + "\n")
}

func (s *Screen) ClearFeedback() {
	if s.color {
		s.write(ansiClearLine)
	}
}

func (s *Screen) paint(code, text string) string {
	if !s.color {
		return text
	}
	return code + text + ansiReset
}

func (s *Screen) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.out, text)
}

func styleCode(st engine.Style) string {
	switch st {
	case engine.StyleGood:
		return ansiGreen
	case engine.StyleBad:
		return ansiRed
	default:
		return ansiYellow
	}
}
