package gstat

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// NoUpstream is written in place of the upstream name when none is set.
// It can never be a valid ref name.
const NoUpstream = ".."

// Options tweaks how a detached HEAD is displayed.
type Options struct {
	// HashPrefix is prepended to the commit hash while detached.
	HashPrefix string
	// HashLength truncates the commit hash while detached; 0 keeps it whole.
	HashLength int
}

// Status is everything reported on one status line.
type Status struct {
	BranchInfo
	TrackingDelta
	FileStats
	Stashes uint64
	Merging bool
	Rebase  RebaseProgress
}

// Assemble derives a Status from porcelain v1 lines (header first) and the
// metadata files under paths. Any failure aborts the whole result.
func Assemble(lines []string, paths RepoPaths, opts Options) (Status, error) {
	if len(lines) == 0 {
		return Status{}, fmt.Errorf("%w: no header line", ErrParse)
	}
	header := lines[0]
	slog.Debug("assembling status",
		slog.String("header", header),
		slog.Int("entries", len(lines)-1),
		slog.String("tree", paths.Tree),
		slog.String("root", paths.Root),
	)

	branch, err := ParseBranch(header, paths.Head())
	if err != nil {
		return Status{}, err
	}
	if branch.Detached {
		branch.Branch = opts.HashPrefix + shorten(branch.Branch, opts.HashLength)
	}
	delta, err := ParseTracking(header)
	if err != nil {
		return Status{}, err
	}
	stats, err := ParseStats(lines[1:])
	if err != nil {
		return Status{}, err
	}
	rebase, err := ReadRebaseProgress(paths.Rebase())
	if err != nil {
		return Status{}, err
	}
	if !rebase.Active() {
		rebase, err = ReadRebaseMergeProgress(paths.RebaseMerge())
		if err != nil {
			return Status{}, err
		}
	}

	return Status{
		BranchInfo:    branch,
		TrackingDelta: delta,
		FileStats:     stats,
		Stashes:       StashCount(paths.Stash()),
		Merging:       MergeInProgress(paths.Merge()),
		Rebase:        rebase,
	}, nil
}

func shorten(hash string, n int) string {
	if n <= 0 || len(hash) <= n {
		return hash
	}
	return hash[:n]
}

// Clean reports whether there is nothing staged, changed, conflicted or
// untracked.
func (s Status) Clean() bool {
	return s.FileStats == FileStats{}
}

// UpstreamField is the upstream as written on the status line.
func (s Status) UpstreamField() string {
	if s.Upstream == "" {
		return NoUpstream
	}
	return s.Upstream
}

// Line serializes s in the field order shell prompts expect:
//
//	branch ahead behind staged conflicts changed untracked stashes local upstream merge rebase
func (s Status) Line() string {
	fields := []string{
		s.Branch,
		u(s.Ahead), u(s.Behind),
		u(s.Staged), u(s.Conflicts), u(s.Changed), u(s.Untracked),
		u(s.Stashes),
		flag(s.LocalOnly),
		s.UpstreamField(),
		flag(s.Merging),
		s.Rebase.String(),
	}
	return strings.Join(fields, " ")
}

func u(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
