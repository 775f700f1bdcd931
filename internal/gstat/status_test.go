package gstat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newRepoPaths(t *testing.T) RepoPaths {
	t.Helper()
	gitDir := filepath.Join(t.TempDir(), ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return RepoPaths{Root: gitDir, Tree: gitDir}
}

func TestAssemble_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		files map[string]string
		opts  Options
		want  string
	}{
		{
			name:  "tracking_with_changes",
			lines: []string{"## main...origin/main [ahead 2, behind 1]", "M  a.txt", "?? b.txt"},
			files: map[string]string{"logs/refs/stash": ""},
			want:  "main 2 1 1 0 0 1 0 0 origin/main 0 0",
		},
		{
			name:  "detached",
			lines: []string{"## HEAD (no branch)"},
			files: map[string]string{"HEAD": "abc123\n"},
			want:  "abc123 0 0 0 0 0 0 0 1 .. 0 0",
		},
		{
			name:  "detached_prefixed_and_short",
			lines: []string{"## HEAD (no branch)"},
			files: map[string]string{"HEAD": "0123456789abcdef\n"},
			opts:  Options{HashPrefix: ":", HashLength: 7},
			want:  ":0123456 0 0 0 0 0 0 0 1 .. 0 0",
		},
		{
			name:  "rebase_apply",
			lines: []string{"## HEAD (no branch)", "UU conflict.go"},
			files: map[string]string{
				"HEAD":              "feedface\n",
				"rebase-apply/next": "2",
				"rebase-apply/last": "5",
			},
			want: "feedface 0 0 0 1 0 0 0 1 .. 0 2/5",
		},
		{
			name:  "rebase_merge",
			lines: []string{"## HEAD (no branch)"},
			files: map[string]string{
				"HEAD":                "cafe\n",
				"rebase-merge/msgnum": "1\n",
				"rebase-merge/end":    "4\n",
			},
			want: "cafe 0 0 0 0 0 0 0 1 .. 0 1/4",
		},
		{
			name:  "merge_and_stashes",
			lines: []string{"## topic", "UU x", "AA y", " M z"},
			files: map[string]string{
				"MERGE_HEAD":      "1234\n",
				"logs/refs/stash": "one\ntwo\n",
			},
			want: "topic 0 0 0 2 1 0 2 1 .. 1 0",
		},
		{
			name:  "unborn",
			lines: []string{"## No commits yet on main", "A  README"},
			want:  "main 0 0 1 0 0 0 0 1 .. 0 0",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			paths := newRepoPaths(t)
			for name, content := range tt.files {
				writeFile(t, filepath.Join(paths.Tree, filepath.FromSlash(name)), content)
			}

			st, err := Assemble(tt.lines, paths, tt.opts)
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if got := st.Line(); got != tt.want {
				t.Fatalf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble_Worktree(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "g", ".git")
	tree := filepath.Join(root, "worktrees", "wg")
	writeFile(t, filepath.Join(tree, "HEAD"), "ref: refs/heads/wg\n")
	writeFile(t, filepath.Join(root, "logs", "refs", "stash"), "s1\n")
	entry := filepath.Join(base, "wg", ".git")
	writeFile(t, entry, "gitdir: "+tree+"\n")

	paths, err := ResolvePaths(entry)
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}
	st, err := Assemble([]string{"## wg"}, paths, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got, want := st.Line(), "wg 0 0 0 0 0 0 1 1 .. 0 0"; got != want {
		t.Fatalf("Line() = %q, want %q", got, want)
	}
}

func TestAssemble_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  error
	}{
		{name: "no_lines", lines: nil, want: ErrParse},
		{name: "detached_without_head", lines: []string{"## HEAD (no branch)"}, want: ErrIO},
		{name: "bad_tracking", lines: []string{"## a...b [ahead z]"}, want: ErrParse},
		{name: "short_entry", lines: []string{"## a", "M"}, want: ErrParse},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st, err := Assemble(tt.lines, newRepoPaths(t), Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if st != (Status{}) {
				t.Fatalf("expected no partial status, got %+v", st)
			}
		})
	}
}

func TestStatus_Clean(t *testing.T) {
	t.Parallel()

	if !(Status{}).Clean() {
		t.Fatal("zero status should be clean")
	}
	if (Status{FileStats: FileStats{Untracked: 1}}).Clean() {
		t.Fatal("untracked file should not be clean")
	}
}
