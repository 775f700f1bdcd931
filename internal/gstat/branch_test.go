package gstat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want BranchInfo
	}{
		{
			name: "local",
			line: "## master",
			want: BranchInfo{Branch: "master", LocalOnly: true},
		},
		{
			name: "upstream",
			line: "## master...up/master",
			want: BranchInfo{Branch: "master", Upstream: "up/master"},
		},
		{
			name: "upstream_with_tracking",
			line: "## main...origin/main [ahead 2, behind 1]",
			want: BranchInfo{Branch: "main", Upstream: "origin/main"},
		},
		{
			name: "upstream_gone",
			line: "## feature/x...origin/feature/x [gone]",
			want: BranchInfo{Branch: "feature/x", Upstream: "origin/feature/x"},
		},
		{
			name: "initial_commit_old_git",
			line: "## Initial commit on master",
			want: BranchInfo{Branch: "master", LocalOnly: true},
		},
		{
			name: "no_commits_yet",
			line: "## No commits yet on trunk",
			want: BranchInfo{Branch: "trunk", LocalOnly: true},
		},
		{
			name: "bracket_without_close_kept",
			line: "## topic [wip",
			want: BranchInfo{Branch: "topic [wip", LocalOnly: true},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseBranch(tt.line, filepath.Join(t.TempDir(), "HEAD"))
			if err != nil {
				t.Fatalf("ParseBranch(%q): %v", tt.line, err)
			}
			if got != tt.want {
				t.Fatalf("ParseBranch(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseBranch_Detached(t *testing.T) {
	t.Parallel()

	head := filepath.Join(t.TempDir(), "HEAD")
	if err := os.WriteFile(head, []byte("abc123\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ParseBranch("## HEAD (no branch)", head)
	if err != nil {
		t.Fatalf("ParseBranch: %v", err)
	}
	want := BranchInfo{Branch: "abc123", LocalOnly: true, Detached: true}
	if got != want {
		t.Fatalf("ParseBranch = %+v, want %+v", got, want)
	}
}

func TestParseBranch_DetachedMissingHead(t *testing.T) {
	t.Parallel()

	_, err := ParseBranch("## HEAD (no branch)", filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestParseBranch_MissingPrefix(t *testing.T) {
	t.Parallel()

	_, err := ParseBranch("M  a.txt", "")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}
