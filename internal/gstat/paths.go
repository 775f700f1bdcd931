package gstat

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const gitDirName = ".git"

// RepoPaths holds the metadata locations for one repository.
//
// Root is the shared .git directory. Tree is the metadata tree of the
// current checkout; it equals Root except inside a linked worktree, where
// .git is a file pointing at Root/worktrees/<name>.
type RepoPaths struct {
	Root string
	Tree string
}

// FindRepo walks upward from start until an entry named .git exists and
// resolves worktree indirection.
func FindRepo(start string) (RepoPaths, error) {
	entry, err := findGitEntry(start)
	if err != nil {
		return RepoPaths{}, err
	}
	return ResolvePaths(entry)
}

func findGitEntry(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	for {
		candidate := filepath.Join(dir, gitDirName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: searched upward from %s", ErrNotFound, start)
		}
		dir = parent
	}
}

// ResolvePaths builds RepoPaths from a .git entry. A directory is used as
// is; a regular file is read as a "gitdir: <path>" redirect.
func ResolvePaths(entry string) (RepoPaths, error) {
	info, err := os.Stat(entry)
	if err != nil {
		return RepoPaths{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if info.IsDir() {
		return RepoPaths{Root: entry, Tree: entry}, nil
	}
	tree, err := readGitdirFile(entry)
	if err != nil {
		return RepoPaths{}, err
	}
	root, err := rootFromTree(tree)
	if err != nil {
		return RepoPaths{}, err
	}
	return RepoPaths{Root: root, Tree: tree}, nil
}

func readGitdirFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: worktree file: %w", ErrIO, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: worktree file %s: %w", ErrIO, path, err)
		}
		return "", fmt.Errorf("%w: worktree file %s is empty", ErrIO, path)
	}
	_, value, ok := strings.Cut(scanner.Text(), ":")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: worktree file %s: expected \"gitdir: <path>\"", ErrParse, path)
	}
	if !filepath.IsAbs(value) {
		value = filepath.Join(filepath.Dir(path), value)
	}
	return filepath.Clean(value), nil
}

// rootFromTree climbs from a worktree metadata tree to the enclosing .git
// directory, which owns the stash log shared by all worktrees.
func rootFromTree(tree string) (string, error) {
	dir := tree
	for filepath.Base(dir) != gitDirName {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s above worktree %s", ErrNotFound, gitDirName, tree)
		}
		dir = parent
	}
	return dir, nil
}

func (p RepoPaths) Head() string {
	return filepath.Join(p.Tree, "HEAD")
}

func (p RepoPaths) Merge() string {
	return filepath.Join(p.Tree, "MERGE_HEAD")
}

func (p RepoPaths) Rebase() string {
	return filepath.Join(p.Tree, "rebase-apply")
}

// RebaseMerge is the state directory used by interactive rebases.
func (p RepoPaths) RebaseMerge() string {
	return filepath.Join(p.Tree, "rebase-merge")
}

func (p RepoPaths) Stash() string {
	return filepath.Join(p.Root, "logs", "refs", "stash")
}

// WorkDir is the checkout directory owning the .git entry. For a linked
// worktree it is read back from the gitdir file inside Tree.
func (p RepoPaths) WorkDir() string {
	if p.Root == p.Tree {
		return filepath.Dir(p.Root)
	}
	back, err := os.ReadFile(filepath.Join(p.Tree, "gitdir"))
	if err != nil {
		return ""
	}
	return filepath.Dir(strings.TrimSpace(string(back)))
}
