// Package watch reruns a callback whenever files that affect the status
// line change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/thiagokokada/gitstatus-go/internal/debounce"
	"github.com/thiagokokada/gitstatus-go/internal/gstat"
)

const gitDirName = ".git"

// Paths lists the metadata directories to watch for a repository: the
// tree (HEAD, index, MERGE_HEAD, rebase state) and the shared ref logs
// for stashes. Missing directories are skipped.
func Paths(repo gstat.RepoPaths) []string {
	candidates := []string{
		repo.Tree,
		repo.Rebase(),
		repo.RebaseMerge(),
		filepath.Join(repo.Root, "logs", "refs"),
		filepath.Join(repo.Root, "refs", "heads"),
		filepath.Join(repo.Root, "refs", "remotes"),
	}
	var paths []string
	for _, p := range candidates {
		if p == "" || slices.Contains(paths, p) {
			continue
		}
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// workTree is the checkout, watched directory by directory since inotify
// and friends are not recursive. .git entries and ignored directories are
// left out.
type workTree struct {
	root    string
	matcher gitignore.Matcher
}

func newWorkTree(root string) *workTree {
	if root == "" {
		return nil
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		slog.Debug("reading ignore patterns", slog.String("root", root), slog.Any("error", err))
	}
	return &workTree{root: root, matcher: gitignore.NewMatcher(patterns)}
}

// rel splits path relative to the root. ok is false for the root itself,
// for paths outside the tree and for anything inside a .git entry.
func (t *workTree) rel(path string) (parts []string, ok bool) {
	if t == nil {
		return nil, false
	}
	r, err := filepath.Rel(t.root, path)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return nil, false
	}
	parts = strings.Split(filepath.ToSlash(r), "/")
	if slices.Contains(parts, gitDirName) {
		return nil, false
	}
	return parts, true
}

func (t *workTree) ignored(path string, isDir bool) bool {
	parts, ok := t.rel(path)
	return ok && t.matcher.Match(parts, isDir)
}

// dirs lists start and every directory below it, skipping .git entries
// and ignored directories.
func (t *workTree) dirs(start string) []string {
	var out []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("walking work tree", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != t.root && (d.Name() == gitDirName || t.ignored(path, true)) {
			return filepath.SkipDir
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		slog.Debug("walking work tree", slog.String("start", start), slog.Any("error", err))
	}
	return out
}

type dirAdder interface {
	Add(name string) error
}

// handler turns watcher events into triggers and extends the watch to
// directories created after startup.
type handler struct {
	repo    gstat.RepoPaths
	tree    *workTree
	watcher dirAdder
	trigger func()
}

func (h *handler) handle(ev fsnotify.Event) {
	info, err := os.Stat(ev.Name)
	isDir := err == nil && info.IsDir()
	if h.tree.ignored(ev.Name, isDir) {
		return
	}
	if isDir && ev.Has(fsnotify.Create) {
		h.addCreated(ev.Name)
	}
	h.trigger()
}

func (h *handler) addCreated(dir string) {
	if _, ok := h.tree.rel(dir); ok {
		for _, d := range h.tree.dirs(dir) {
			h.addTreeDir(d)
		}
		return
	}
	// rebase-apply and rebase-merge appear inside the metadata tree.
	if filepath.Dir(dir) == h.repo.Tree {
		h.addTreeDir(dir)
	}
}

// addTreeDir is best effort: a work tree can exceed the watch limit, and
// the metadata watches still keep the line current on commits.
func (h *handler) addTreeDir(dir string) {
	slog.Debug("adding path to FS watcher", slog.String("path", dir))
	if err := h.watcher.Add(dir); err != nil {
		slog.Warn("watch directory", slog.String("path", dir), slog.Any("error", err))
	}
}

// Run calls fn, debounced by delay, after every relevant change in the
// repository until ctx is done.
func Run(ctx context.Context, repo gstat.RepoPaths, delay time.Duration, fn func()) error {
	paths := Paths(repo)
	if len(paths) == 0 {
		return errors.New("watch: nothing to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()
	for _, p := range paths {
		slog.Debug("adding path to FS watcher", slog.String("path", p))
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	d := debounce.New(delay, fn)
	defer d.Stop()
	h := &handler{repo: repo, tree: newWorkTree(repo.WorkDir()), watcher: w, trigger: d.Trigger}
	if h.tree != nil {
		for _, dir := range h.tree.dirs(h.tree.root) {
			h.addTreeDir(dir)
		}
	}
	return loop(ctx, w.Events, w.Errors, h.handle)
}

func loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, onEvent func(fsnotify.Event)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnore(ev.Name) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			onEvent(ev)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

// shouldIgnore skips lock files git holds while writing and socket files
// such as the fsmonitor daemon's.
func shouldIgnore(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lock", ".ipc":
		return true
	}
	return false
}
