package git

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// ReadPiped returns the lines waiting on f when it is not a terminal and
// already has data. ok is false when the caller should run a backend
// instead, including when f reads as empty; the check never blocks.
func ReadPiped(f *os.File) (lines []string, ok bool, err error) {
	if f == nil || isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return nil, false, nil
	}
	if !inputReady(f) {
		return nil, false, nil
	}
	lines, err = SplitLines(f)
	if err != nil {
		return nil, false, fmt.Errorf("read stdin: %w", err)
	}
	if len(lines) == 0 {
		// /dev/null and closed pipes poll as readable but carry nothing.
		slog.Debug("stdin is empty, falling back to backend")
		return nil, false, nil
	}
	slog.Debug("status read from stdin", slog.Int("lines", len(lines)))
	return lines, true, nil
}
