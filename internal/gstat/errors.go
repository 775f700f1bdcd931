package gstat

import "errors"

var (
	// ErrNotFound is returned when no .git entry exists between the start
	// directory and the filesystem root.
	ErrNotFound = errors.New("git directory not found")
	// ErrIO marks a file that must be readable but is not, such as HEAD
	// while detached or a worktree redirect file.
	ErrIO = errors.New("read failed")
	// ErrParse marks input that does not follow the porcelain grammar.
	ErrParse = errors.New("malformed status")
)
