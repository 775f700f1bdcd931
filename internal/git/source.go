package git

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	BackendCLI    = "cli"
	BackendNative = "native"
)

// ErrNotRepository is returned when the status source reports that the
// directory is not inside a repository.
var ErrNotRepository = errors.New("not a git repository")

// Source produces "git status --porcelain --branch" output as lines, the
// "## ..." header first.
type Source interface {
	StatusLines(ctx context.Context) ([]string, error)
}

// NewSource returns the status source for backend rooted at dir.
func NewSource(backend, dir string) (Source, error) {
	switch backend {
	case "", BackendCLI:
		return CLI{Dir: dir}, nil
	case BackendNative:
		return Native{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", backend, BackendCLI, BackendNative)
	}
}

// SplitLines reads r line by line, dropping carriage returns.
func SplitLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}

// IsNotRepositoryOutput reports whether lines are the error git prints
// outside a repository, as seen when its stderr was piped in.
func IsNotRepositoryOutput(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	return isNotRepositoryMessage(lines[0])
}

func isNotRepositoryMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.HasPrefix(msg, "fatal: ") && strings.Contains(msg, "not a git repository")
}
