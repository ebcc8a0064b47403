// Package patch builds the optimize steps that rewrite a project's editor
// integration files.
package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/promptline/internal/domain"
)

// StateDirName is the per-project directory owned by promptline.
const StateDirName = ".promptline"

// FindProjectRoot walks up from start looking for a .promptline directory. When
// none is found within domain.MaxProjectRootDepth levels, start itself is
// accepted if it carries a .claude directory or a CLAUDE.md file.
func FindProjectRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	dir := abs
	for i := 0; i < domain.MaxProjectRootDepth; i++ {
		if isDir(filepath.Join(dir, StateDirName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if isDir(filepath.Join(abs, ".claude")) || exists(filepath.Join(abs, "CLAUDE.md")) {
		return abs, nil
	}
	return "", fmt.Errorf("%w from %s", domain.ErrProjectRootNotFound, abs)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
