// Command gen-man writes the gngpvt man pages into a directory (default
// "man"). SOURCE_DATE_EPOCH, when set, fixes the page date.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/suykerbuyk/gng-pvt/internal/help"
)

func main() {
	dir := "man"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	date, err := pageDate(os.Getenv("SOURCE_DATE_EPOCH"), time.Now())
	if err != nil {
		fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal(err)
	}

	pages := map[string]string{
		"gngpvt.1": help.FormatRoffTopLevel(help.TopLevel, help.Subcommands, date),
	}
	names := []string{"gngpvt.1"}
	for _, cmd := range help.Subcommands {
		name := cmd.ManName() + ".1"
		pages[name] = help.FormatRoff(cmd, date)
		names = append(names, name)
	}

	for _, name := range names {
		if err := write(dir, name, pages[name]); err != nil {
			fatal(err)
		}
	}
	fmt.Printf("%d pages dated %s\n", len(names), date)
}

// pageDate formats epoch (seconds, UTC) as the page date, or now when
// epoch is empty.
func pageDate(epoch string, now time.Time) (string, error) {
	if epoch == "" {
		return now.Format("2006-01-02"), nil
	}
	sec, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return "", fmt.Errorf("SOURCE_DATE_EPOCH: %w", err)
	}
	return time.Unix(sec, 0).UTC().Format("2006-01-02"), nil
}

func write(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  %s\n", path)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "gen-man: %v\n", err)
	os.Exit(1)
}
