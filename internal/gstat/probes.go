package gstat

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// StashCount returns the number of non-empty lines in the stash reflog.
// A missing or unreadable log means there are no stashes.
func StashCount(stashLog string) uint64 {
	f, err := os.Open(stashLog)
	if err != nil {
		slog.Debug("stash log unavailable, assuming no stashes", slog.String("path", stashLog), slog.Any("error", err))
		return 0
	}
	defer f.Close()

	var count uint64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Debug("stash log read stopped early", slog.String("path", stashLog), slog.Any("error", err))
	}
	return count
}

// MergeInProgress reports whether the MERGE_HEAD marker exists.
func MergeInProgress(mergeHead string) bool {
	_, err := os.Stat(mergeHead)
	return err == nil
}

// RebaseProgress is the position inside an active rebase. The zero value
// means no rebase is running.
type RebaseProgress struct {
	Current uint64
	Total   uint64
}

func (r RebaseProgress) Active() bool {
	return r != RebaseProgress{}
}

func (r RebaseProgress) String() string {
	if !r.Active() {
		return "0"
	}
	return fmt.Sprintf("%d/%d", r.Current, r.Total)
}

// ReadRebaseProgress reads the step counters of an active rebase from
// dir/next and dir/last. When either file is missing the zero progress is
// returned, as it is for an empty file. A counter that is not an integer is
// an error.
func ReadRebaseProgress(dir string) (RebaseProgress, error) {
	return readStepFiles(dir, "next", "last")
}

// ReadRebaseMergeProgress is ReadRebaseProgress for the rebase-merge
// layout, which keeps its counters in msgnum and end.
func ReadRebaseMergeProgress(dir string) (RebaseProgress, error) {
	return readStepFiles(dir, "msgnum", "end")
}

func readStepFiles(dir, currentName, totalName string) (RebaseProgress, error) {
	current, ok, err := readCounter(filepath.Join(dir, currentName))
	if err != nil || !ok {
		return RebaseProgress{}, err
	}
	total, ok, err := readCounter(filepath.Join(dir, totalName))
	if err != nil || !ok {
		return RebaseProgress{}, err
	}
	return RebaseProgress{Current: current, Total: total}, nil
}

// readCounter returns ok=false when the file does not exist, cannot be
// opened or is still empty because git is writing it; all mean no rebase
// progress can be shown.
func readCounter(path string) (uint64, bool, error) {
	token, err := readFirstToken(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("rebase counter unreadable", slog.String("path", path), slog.Any("error", err))
		}
		return 0, false, nil
	}
	if token == "" {
		slog.Debug("rebase counter empty", slog.String("path", path))
		return 0, false, nil
	}
	n, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: rebase counter %s: %w", ErrParse, path, err)
	}
	return n, true, nil
}
