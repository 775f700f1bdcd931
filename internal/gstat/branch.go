package gstat

import (
	"fmt"
	"os"
	"strings"
)

const (
	headerPrefix     = "## "
	upstreamSep      = "..."
	detachedSentinel = "(no branch)"
)

// Sentinels git prints for a repository without commits. "Initial commit"
// is used by git older than 2.17.
var unbornSentinels = []string{"Initial commit", "No commits yet"}

// BranchInfo describes HEAD as reported by the status header line.
type BranchInfo struct {
	Branch   string
	Upstream string
	// LocalOnly is set when there is no upstream, including the detached
	// and unborn states.
	LocalOnly bool
	// Detached is set when Branch holds a commit hash read from HEAD.
	Detached bool
}

// ParseBranch interprets a "## ..." header line. headFile is only read
// when the header reports a detached HEAD.
func ParseBranch(line, headFile string) (BranchInfo, error) {
	rest, ok := strings.CutPrefix(line, headerPrefix)
	if !ok {
		return BranchInfo{}, fmt.Errorf("%w: header %q lacks %q prefix", ErrParse, line, headerPrefix)
	}
	if i := strings.LastIndex(rest, trackingOpen); i >= 0 && strings.HasSuffix(rest, trackingClose) {
		rest = rest[:i]
	}

	if branch, upstream, found := strings.Cut(rest, upstreamSep); found {
		return BranchInfo{Branch: branch, Upstream: upstream}, nil
	}
	if strings.Contains(rest, detachedSentinel) {
		hash, err := readFirstToken(headFile)
		if err != nil {
			return BranchInfo{}, fmt.Errorf("%w: detached HEAD: %w", ErrIO, err)
		}
		return BranchInfo{Branch: hash, LocalOnly: true, Detached: true}, nil
	}
	for _, sentinel := range unbornSentinels {
		if strings.Contains(rest, sentinel) {
			return BranchInfo{Branch: rest[strings.LastIndex(rest, " ")+1:], LocalOnly: true}, nil
		}
	}
	return BranchInfo{Branch: rest, LocalOnly: true}, nil
}

func readFirstToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}
