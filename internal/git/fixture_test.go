package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type fixtureRepo struct {
	dir  string
	repo *gitlib.Repository
	wt   *gitlib.Worktree
	// commits advances the commit clock so history walks see increasing
	// timestamps.
	commits int
}

func newFixtureRepo(t *testing.T) *fixtureRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &fixtureRepo{dir: dir, repo: repo, wt: wt}
}

func (f *fixtureRepo) write(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(f.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixtureRepo) commit(t *testing.T, name, content string) plumbing.Hash {
	t.Helper()
	f.write(t, name, content)
	if _, err := f.wt.Add(name); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	f.commits++
	when := time.Unix(1700000000+int64(f.commits)*60, 0)
	hash, err := f.wt.Commit("update "+name, &gitlib.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: when},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash
}
