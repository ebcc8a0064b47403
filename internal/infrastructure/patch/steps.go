package patch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/pkg/filesystem"
)

// Step identifiers, in execution order.
const (
	StepStatuslineRunner = "statusline-runner"
	StepHooks            = "hooks"
	StepSettings         = "settings"
	StepMCPWrapper       = "mcp-wrapper"
)

// Options configures the step set for one project.
type Options struct {
	Root           string
	TargetOS       string
	PlaceholderVar string
}

func (o Options) placeholderVar() string {
	if o.PlaceholderVar == "" {
		return domain.DefaultPlaceholderVar
	}
	return o.PlaceholderVar
}

func (o Options) windows() bool {
	return o.TargetOS == "windows"
}

// Steps returns the ordered, independent optimize steps for opts.Root.
func Steps(opts Options) []domain.PatchStep {
	return []domain.PatchStep{
		runnerStep(opts),
		hooksStep(opts),
		settingsStep(opts),
		mcpStep(opts),
	}
}

// desiredFile describes the target content of a single file. A nil want
// means the file needs no change.
type desiredFile struct {
	path    string
	current []byte
	want    []byte
	perm    os.FileMode
	summary string
	// backup, when set, receives current before want is written.
	backup string
}

func (d desiredFile) satisfied() bool {
	return d.want == nil || bytes.Equal(d.current, d.want)
}

func (d desiredFile) write() error {
	if d.backup != "" {
		if err := filesystem.WriteFileAtomic(d.backup, d.current, d.perm); err != nil {
			return fmt.Errorf("back up %s: %w", d.path, err)
		}
	}
	if err := filesystem.WriteFileAtomic(d.path, d.want, d.perm); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// singleFileStep adapts a planner of one file into a PatchStep. A planning
// error makes the check fail so Apply reports it.
func singleFileStep(id string, root string, plan func() (desiredFile, error)) domain.PatchStep {
	return domain.PatchStep{
		ID: id,
		IdempotencyCheck: func() bool {
			d, err := plan()
			return err == nil && d.satisfied()
		},
		Apply: func() (domain.AppliedChange, error) {
			d, err := plan()
			if err != nil {
				return domain.AppliedChange{}, err
			}
			if d.satisfied() {
				return domain.AppliedChange{Path: relative(root, d.path), Summary: "no change needed"}, nil
			}
			if err := d.write(); err != nil {
				return domain.AppliedChange{}, err
			}
			return domain.AppliedChange{Path: relative(root, d.path), Summary: d.summary}, nil
		},
	}
}

func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func relative(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
