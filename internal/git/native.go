package git

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Native builds porcelain lines with go-git, without a git executable.
type Native struct {
	Dir string
}

func (n Native) StatusLines(ctx context.Context) ([]string, error) {
	repo, err := gitlib.PlainOpenWithOptions(n.Dir, &gitlib.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gitlib.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	header, err := nativeHeader(ctx, repo)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	tracked, err := trackedDirs(repo)
	if err != nil {
		return nil, err
	}
	var changes, untracked []string
	seen := map[string]bool{}
	for path, st := range status {
		switch {
		case st.Staging == gitlib.Untracked || st.Worktree == gitlib.Untracked:
			name := collapseUntracked(path, tracked)
			if !seen[name] {
				seen[name] = true
				untracked = append(untracked, name)
			}
		case st.Staging == gitlib.Unmodified && st.Worktree == gitlib.Unmodified:
		default:
			name := path
			if st.Extra != "" {
				name = st.Extra + " -> " + path
			}
			changes = append(changes, fmt.Sprintf("%c%c %s", byte(st.Staging), byte(st.Worktree), name))
		}
	}
	// git lists changes by path, then untracked entries by path.
	sort.Slice(changes, func(i, j int) bool { return changes[i][3:] < changes[j][3:] })
	sort.Strings(untracked)

	lines := make([]string, 0, len(changes)+len(untracked)+1)
	lines = append(lines, header)
	lines = append(lines, changes...)
	for _, name := range untracked {
		lines = append(lines, "?? "+name)
	}
	slog.Debug("native status", slog.String("header", header), slog.Int("entries", len(lines)-1))
	return lines, nil
}

func nativeHeader(ctx context.Context, repo *gitlib.Repository) (string, error) {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		sym, symErr := repo.Storer.Reference(plumbing.HEAD)
		if symErr != nil {
			return "", fmt.Errorf("resolve HEAD: %w", symErr)
		}
		return "## No commits yet on " + sym.Target().Short(), nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "## HEAD (no branch)", nil
	}

	branch := head.Name().Short()
	cfg, err := repo.Config()
	if err != nil {
		return "", fmt.Errorf("read config: %w", err)
	}
	bc, ok := cfg.Branches[branch]
	if !ok || bc.Remote == "" || bc.Merge == "" {
		return "## " + branch, nil
	}

	upstreamRef := plumbing.NewRemoteReferenceName(bc.Remote, bc.Merge.Short())
	upstream := bc.Remote + "/" + bc.Merge.Short()
	if bc.Remote == "." {
		upstreamRef = bc.Merge
		upstream = bc.Merge.Short()
	}
	ref, err := repo.Reference(upstreamRef, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return formatHeader(branch, upstream, "gone"), nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", upstreamRef, err)
	}

	ahead, behind, err := aheadBehind(ctx, repo, head.Hash(), ref.Hash())
	if err != nil {
		return "", err
	}
	var parts []string
	if ahead > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d", ahead))
	}
	if behind > 0 {
		parts = append(parts, fmt.Sprintf("behind %d", behind))
	}
	return formatHeader(branch, upstream, strings.Join(parts, ", ")), nil
}

func formatHeader(branch, upstream, tracking string) string {
	header := "## " + branch + "..." + upstream
	if tracking != "" {
		header += " [" + tracking + "]"
	}
	return header
}

// side records which tips reach a commit.
type side uint8

const (
	fromLocal side = 1 << iota
	fromUpstream
	fromBoth = fromLocal | fromUpstream
)

// commitQueue pops the most recently committed commit first.
type commitQueue []*object.Commit

func (q commitQueue) Len() int { return len(q) }
func (q commitQueue) Less(i, j int) bool {
	ti, tj := q[i].Committer.When, q[j].Committer.When
	if ti.Equal(tj) {
		return q[i].Hash.String() < q[j].Hash.String()
	}
	return ti.After(tj)
}
func (q commitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *commitQueue) Push(x any)   { *q = append(*q, x.(*object.Commit)) }
func (q *commitQueue) Pop() any {
	old := *q
	c := old[len(old)-1]
	*q = old[:len(old)-1]
	return c
}

// aheadBehind counts commits reachable from only one of local and
// upstream.
func aheadBehind(ctx context.Context, repo *gitlib.Repository, local, upstream plumbing.Hash) (ahead, behind int, err error) {
	if local == upstream {
		return 0, 0, nil
	}
	marks, err := paintDown(ctx, repo, local, upstream)
	if err != nil {
		return 0, 0, err
	}
	for _, s := range marks {
		switch s {
		case fromLocal:
			ahead++
		case fromUpstream:
			behind++
		}
	}
	return ahead, behind, nil
}

// paintDown marks the commits reachable from local and upstream. History
// is walked newest first and the walk stops once every queued commit is
// reachable from both tips, so only commits since the merge base and a
// few shared ones are loaded.
func paintDown(ctx context.Context, repo *gitlib.Repository, local, upstream plumbing.Hash) (map[plumbing.Hash]side, error) {
	marks := map[plumbing.Hash]side{}
	queue := &commitQueue{}
	// unsettled holds queued commits reached from only one tip so far.
	unsettled := map[plumbing.Hash]bool{}
	push := func(h plumbing.Hash, s side) error {
		old := marks[h]
		if old|s == old {
			return nil
		}
		c, err := repo.CommitObject(h)
		if err != nil {
			return fmt.Errorf("load commit %s: %w", h, err)
		}
		marks[h] = old | s
		if marks[h] == fromBoth {
			delete(unsettled, h)
		} else {
			unsettled[h] = true
		}
		heap.Push(queue, c)
		return nil
	}
	if err := push(local, fromLocal); err != nil {
		return nil, err
	}
	if err := push(upstream, fromUpstream); err != nil {
		return nil, err
	}

	for len(unsettled) > 0 && queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := heap.Pop(queue).(*object.Commit)
		delete(unsettled, c.Hash)
		s := marks[c.Hash]
		for _, parent := range c.ParentHashes {
			if err := push(parent, s); err != nil {
				return nil, err
			}
		}
	}
	return marks, nil
}

// trackedDirs returns every directory holding an index entry, with a
// trailing slash ("a/", "a/b/").
func trackedDirs(repo *gitlib.Repository) (map[string]struct{}, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	dirs := map[string]struct{}{}
	for _, e := range idx.Entries {
		for i := strings.LastIndexByte(e.Name, '/'); i > 0; i = strings.LastIndexByte(e.Name[:i], '/') {
			dir := e.Name[:i+1]
			if _, ok := dirs[dir]; ok {
				break
			}
			dirs[dir] = struct{}{}
		}
	}
	return dirs, nil
}

// collapseUntracked shortens an untracked file to its topmost directory
// without tracked content, as git status does in its default -unormal mode.
func collapseUntracked(path string, tracked map[string]struct{}) string {
	for i := strings.IndexByte(path, '/'); i >= 0; {
		dir := path[:i+1]
		if _, ok := tracked[dir]; !ok {
			return dir
		}
		next := strings.IndexByte(path[i+1:], '/')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return path
}
