package commands

import (
	"fmt"
	"io"

	"github.com/doeshing/promptline/internal/domain"
)

// displayPatchRecord prints one line per step and the aggregate summary.
func displayPatchRecord(out io.Writer, record domain.PatchRecord) {
	report := domain.PatchReport{Steps: record.Steps}
	for _, step := range record.Steps {
		line := fmt.Sprintf("[%s] %s", step.Outcome, step.ID)
		switch {
		case step.Outcome == domain.OutcomeFailed:
			line += " - " + step.Error
		case step.Change.Summary != "":
			line += " - " + step.Change.Path + ": " + step.Change.Summary
		}
		fmt.Fprintln(out, line)
	}
	prefix := ""
	if record.DryRun {
		prefix = "dry run "
	}
	fmt.Fprintf(out, "%s%s (root %s, target %s)\n", prefix, report.Summary(), record.Root, record.Target)
}
