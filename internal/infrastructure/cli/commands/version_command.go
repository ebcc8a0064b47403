package commands

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/promptline/internal/version"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show promptline version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			writeVersion(cmd.OutOrStdout())
		},
	}
}

// writeVersion prints a single line such as
// "promptline 1.2.0 (commit 3f2a9c1, built 2026-03-01, go1.25.3)".
func writeVersion(out io.Writer) {
	details := []string{}
	if version.Commit != "" {
		details = append(details, "commit "+version.Commit)
	}
	if version.BuildDate != "" {
		details = append(details, "built "+version.BuildDate)
	}
	details = append(details, runtime.Version())
	fmt.Fprintf(out, "promptline %s (%s)\n", version.Version, strings.Join(details, ", "))
}
