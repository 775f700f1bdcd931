package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// minGitVersion is the oldest git accepting every flag CLI passes
// ("--no-optional-locks" landed in 2.15).
var minGitVersion = gitVersion{major: 2, minor: 15}

type gitVersion struct {
	major int
	minor int
	patch int
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersion accepts "git version 2.44.0" and vendor variants such as
// "2.39.3 (Apple Git-146)" or "2.39.3.windows.1".
func parseGitVersion(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	s = strings.TrimSpace(strings.TrimPrefix(s, "git version"))
	end := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var nums [3]int
	for i := 0; i < len(parts) && i < len(nums); i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return gitVersion{}, false
		}
		nums[i] = n
	}
	return gitVersion{major: nums[0], minor: nums[1], patch: nums[2]}, true
}

func checkGitVersion(out string) error {
	got, ok := parseGitVersion(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; gitstatus requires git >= %s", got, minGitVersion)
	}
	return nil
}

// explainFailure turns a failed status run into a version error when the
// installed git is too old to understand it.
func explainFailure(ctx context.Context, cause error) error {
	out, err := runGitCommand(ctx, "", []string{"--version"}, "git --version")
	if err != nil {
		return cause
	}
	if err := checkGitVersion(out); err != nil {
		return fmt.Errorf("%w (%v)", cause, err)
	}
	return cause
}
