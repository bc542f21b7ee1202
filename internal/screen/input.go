package screen

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Event is one line of operator input.
type Event int

const (
	// Press is a bare Enter (or any text other than a quit command).
	Press Event = iota
	// Quit is "q" or "quit".
	Quit
)

func (e Event) String() string {
	if e == Quit {
		return "quit"
	}
	return "press"
}

// ParseLine maps one input line to an event.
func ParseLine(line string) Event {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "quit", "exit":
		return Quit
	}
	return Press
}

// Responses reads r line by line and delivers an event per line. The
// channel is closed on EOF, read error or when ctx is done.
func Responses(ctx context.Context, r io.Reader) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- ParseLine(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
