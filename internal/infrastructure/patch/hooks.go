package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doeshing/promptline/assets"
	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/pkg/filesystem"
)

// HookHeaderMarker identifies a hook that already carries the encoding header.
const HookHeaderMarker = "promptline: utf-8 io"

// hooksStep inserts the encoding header into every python and shell hook
// under .claude/hooks that lacks it and pins the output encoding of python
// subprocess.run calls. Each file is handled on its own and
// failures are joined into a single step error.
func hooksStep(opts Options) domain.PatchStep {
	dir := filepath.Join(opts.Root, ".claude", "hooks")
	return domain.PatchStep{
		ID: StepHooks,
		IdempotencyCheck: func() bool {
			pending, err := pendingHooks(dir)
			return err == nil && len(pending) == 0
		},
		Apply: func() (domain.AppliedChange, error) {
			pending, err := pendingHooks(dir)
			if err != nil {
				return domain.AppliedChange{}, err
			}
			var (
				patched int
				errs    []error
			)
			for _, hook := range pending {
				if err := patchHook(hook); err != nil {
					errs = append(errs, err)
					continue
				}
				patched++
			}
			change := domain.AppliedChange{
				Path:    relative(opts.Root, dir),
				Summary: fmt.Sprintf("patched %d hook(s) for utf-8 io", patched),
			}
			return change, errors.Join(errs...)
		},
	}
}

type hookFile struct {
	path string
	mode fs.FileMode
}

// pendingHooks lists hooks PatchHookSource would change. A missing hooks
// directory has nothing pending. Unreadable files are returned so Apply
// surfaces their error.
func pendingHooks(dir string) ([]hookFile, error) {
	if !isDir(dir) {
		return nil, nil
	}
	var pending []hookFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || headerFor(path) == nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil || PatchHookSource(path, string(data)) != string(data) {
			pending = append(pending, hookFile{path: path, mode: info.Mode().Perm()})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan hooks %s: %w", dir, err)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].path < pending[j].path })
	return pending, nil
}

func patchHook(hook hookFile) error {
	data, err := os.ReadFile(hook.path)
	if err != nil {
		return fmt.Errorf("read hook %s: %w", hook.path, err)
	}
	patched := PatchHookSource(hook.path, string(data))
	if err := filesystem.WriteFileAtomic(hook.path, []byte(patched), hook.mode.Perm()); err != nil {
		return fmt.Errorf("write hook %s: %w", hook.path, err)
	}
	return nil
}

func headerFor(path string) []byte {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return assets.HookHeaderPython
	case ".sh":
		return assets.HookHeaderShell
	default:
		return nil
	}
}

// PatchHookSource returns the fully patched hook: header inserted and, for
// python, subprocess.run calls given an explicit encoding.
func PatchHookSource(path, content string) string {
	patched := InsertHookHeader(path, content)
	if strings.EqualFold(filepath.Ext(path), ".py") {
		patched, _ = AddSubprocessEncoding(patched)
	}
	return patched
}

// InsertHookHeader returns content with the header for path's language
// inserted at the first legal position. Content that already has the marker
// is returned unchanged.
func InsertHookHeader(path, content string) string {
	header := headerFor(path)
	if header == nil || strings.Contains(content, HookHeaderMarker) {
		return content
	}
	lines := strings.SplitAfter(content, "\n")
	var at int
	if strings.EqualFold(filepath.Ext(path), ".py") {
		at = pythonInsertIndex(lines)
	} else {
		at = shellInsertIndex(lines)
	}

	var b strings.Builder
	for _, line := range lines[:at] {
		b.WriteString(line)
	}
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	b.Write(header)
	for _, line := range lines[at:] {
		b.WriteString(line)
	}
	return b.String()
}

func shellInsertIndex(lines []string) int {
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		return 1
	}
	return 0
}

// pythonInsertIndex skips the shebang, coding and other leading comments,
// the module docstring and __future__ imports, which must stay first.
func pythonInsertIndex(lines []string) int {
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}
		break
	}
	if i < len(lines) {
		if end, ok := docstringEnd(lines, i); ok {
			i = end + 1
		}
	}
	last := i
	for j := i; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if strings.HasPrefix(trimmed, "from __future__ import") {
			last = j + 1
			continue
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		break
	}
	return last
}

// docstringEnd reports the last line of a string-literal statement starting
// at start: single or triple quoted, with an optional r/u/b/f prefix.
func docstringEnd(lines []string, start int) (int, bool) {
	trimmed := strings.TrimSpace(lines[start])
	for n := 0; n < 2 && len(trimmed) > 1 && strings.ContainsRune("rRuUbBfF", rune(trimmed[0])); n++ {
		trimmed = trimmed[1:]
	}
	if trimmed == "" || (trimmed[0] != '"' && trimmed[0] != '\'') {
		return 0, false
	}
	quote := trimmed[:1]
	delim := strings.Repeat(quote, 3)
	if !strings.HasPrefix(trimmed, delim) {
		// A single-quoted literal cannot span lines without a backslash.
		j := start
		for j < len(lines)-1 && strings.HasSuffix(strings.TrimRight(lines[j], "\r\n"), "\\") {
			j++
		}
		return j, true
	}
	if strings.Count(trimmed, delim) >= 2 {
		return start, true
	}
	for j := start + 1; j < len(lines); j++ {
		if strings.Contains(lines[j], delim) {
			return j, true
		}
	}
	return 0, false
}
