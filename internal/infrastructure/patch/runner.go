package patch

import (
	"fmt"
	"path/filepath"

	"github.com/doeshing/promptline/assets"
	"github.com/doeshing/promptline/internal/domain"
)

// RunnerName is the helper script file name for the target OS.
func RunnerName(targetOS string) string {
	if targetOS == "windows" {
		return "statusline-runner.cmd"
	}
	return "statusline-runner.sh"
}

// RunnerPath is where the helper script lives inside a project.
func RunnerPath(root, targetOS string) string {
	return filepath.Join(root, StateDirName, "scripts", RunnerName(targetOS))
}

// runnerStep writes the helper script, copied from the project's template
// when one exists and synthesized from the embedded default otherwise.
func runnerStep(opts Options) domain.PatchStep {
	return singleFileStep(StepStatuslineRunner, opts.Root, func() (desiredFile, error) {
		name := RunnerName(opts.TargetOS)
		dest := RunnerPath(opts.Root, opts.TargetOS)

		body, source, err := runnerTemplate(opts.Root, name, opts.TargetOS)
		if err != nil {
			return desiredFile{}, err
		}
		current, _, err := readOptional(dest)
		if err != nil {
			return desiredFile{}, fmt.Errorf("read %s: %w", dest, err)
		}
		return desiredFile{
			path:    dest,
			current: current,
			want:    body,
			perm:    domain.ScriptPermissions,
			summary: fmt.Sprintf("wrote %s from %s", name, source),
		}, nil
	})
}

func runnerTemplate(root, name, targetOS string) ([]byte, string, error) {
	path := filepath.Join(root, StateDirName, "templates", name)
	data, ok, err := readOptional(path)
	if err != nil {
		return nil, "", fmt.Errorf("read template %s: %w", path, err)
	}
	if ok {
		return data, "template", nil
	}
	if targetOS == "windows" {
		return assets.StatuslineRunnerCmd, "built-in default", nil
	}
	return assets.StatuslineRunnerSh, "built-in default", nil
}
