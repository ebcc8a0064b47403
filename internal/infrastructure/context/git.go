package contextcollector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/ports"
)

// gitBranch returns the current branch, "@<sha>" for a detached HEAD and ""
// outside a work tree.
func gitBranch(ctx context.Context, runner ports.CommandRunner, dir string) (string, error) {
	out, err := runner.Run(ctx, dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		if notRepository(err) {
			return "", nil
		}
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch != "HEAD" {
		return branch, nil
	}
	sha, err := runner.Run(ctx, dir, "git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return "@" + strings.TrimSpace(sha), nil
}

// gitStatusSummary condenses porcelain output to "+staged Mmodified ?untracked".
// A clean tree or a directory outside a work tree yields "".
func gitStatusSummary(ctx context.Context, runner ports.CommandRunner, dir string) (string, error) {
	out, err := runner.Run(ctx, dir, "git", "status", "--porcelain")
	if err != nil {
		if notRepository(err) {
			return "", nil
		}
		return "", err
	}
	return summarizePorcelain(out), nil
}

func summarizePorcelain(out string) string {
	staged, modified, untracked := 0, 0, 0
	for _, line := range strings.Split(out, "\n") {
		if len(strings.TrimSpace(line)) == 0 || len(line) < 2 {
			continue
		}
		if strings.HasPrefix(line, "??") {
			untracked++
			continue
		}
		if line[0] != ' ' {
			staged++
		}
		if line[1] != ' ' {
			modified++
		}
	}

	var parts []string
	if staged > 0 {
		parts = append(parts, fmt.Sprintf("+%d", staged))
	}
	if modified > 0 {
		parts = append(parts, fmt.Sprintf("M%d", modified))
	}
	if untracked > 0 {
		parts = append(parts, fmt.Sprintf("?%d", untracked))
	}
	return strings.Join(parts, " ")
}

// notRepository matches the sentinel as well as git's own stderr text.
func notRepository(err error) bool {
	if errors.Is(err, domain.ErrNotGitRepository) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not a git repository")
}
