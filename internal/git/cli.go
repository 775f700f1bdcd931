package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// CLI runs the git executable.
type CLI struct {
	Dir string
}

func (c CLI) StatusLines(ctx context.Context) ([]string, error) {
	// --no-optional-locks keeps status from rewriting the index, which
	// would otherwise wake up watchers of the metadata directory.
	out, err := runGitCommand(ctx, c.Dir, []string{"--no-optional-locks", "status", "--porcelain", "--branch"}, "git status")
	if errors.Is(err, ErrNotRepository) {
		return nil, err
	}
	if err != nil {
		return nil, explainFailure(ctx, err)
	}
	lines, err := SplitLines(strings.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("read git status: %w", err)
	}
	slog.Debug("git status", slog.String("dir", c.Dir), slog.Int("lines", len(lines)))
	return lines, nil
}

func runGitCommand(ctx context.Context, dir string, args []string, label string) (string, error) {
	cmdArgs := args
	if dir != "" {
		cmdArgs = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	// The branch header sentinels are matched in English.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if isNotRepositoryMessage(msg) {
			return "", ErrNotRepository
		}
		if msg != "" {
			return "", fmt.Errorf("%s: %v: %s", label, err, msg)
		}
		return "", fmt.Errorf("%s: %w", label, err)
	}
	return stdout.String(), nil
}
