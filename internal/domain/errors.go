package domain

import "errors"

var (
	// ErrNotGitRepository is returned when the working directory is outside a work tree.
	ErrNotGitRepository = errors.New("not a git repository")
	// ErrCommandTimeout is returned when an external command exceeds its deadline.
	ErrCommandTimeout = errors.New("command timed out")
	// ErrNoVersion is returned when version output carries no recognisable version.
	ErrNoVersion = errors.New("no version in output")
	// ErrProjectRootNotFound is returned when no project root can be located.
	ErrProjectRootNotFound = errors.New("project root not found (.promptline directory not found)")
)
