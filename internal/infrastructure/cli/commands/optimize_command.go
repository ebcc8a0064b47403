package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/promptline/internal/app"
	"github.com/doeshing/promptline/internal/application/patcher"
	"github.com/doeshing/promptline/internal/domain"
)

// NewOptimizeCommand creates the optimize command. Partial failures are
// reported in the output; the command itself only fails when no project
// root can be found.
func NewOptimizeCommand(container *app.Container) *cobra.Command {
	var (
		root   string
		dir    string
		target string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Make the project's agent configuration portable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.PatchService == nil {
				return errors.New(ErrPatchServiceUnavailable)
			}
			if target == "" {
				target = container.Config.TargetOS()
			}
			record, err := container.PatchService.Optimize(cmd.Context(), patcher.Request{
				Start:    dir,
				Root:     root,
				TargetOS: target,
				DryRun:   dryRun,
			})
			if err != nil {
				return err
			}
			displayPatchRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Project root (default: nearest ancestor with a .claude directory)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to start the project root search from")
	cmd.Flags().StringVar(&target, "target", "", "Target OS: windows|linux|darwin (default from config or runtime)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")

	cmd.AddCommand(newOptimizeHistoryCommand(container))
	return cmd
}

func newOptimizeHistoryCommand(container *app.Container) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded optimize runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPatchHistory(cmd.OutOrStdout(), container, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultPatchHistoryLimit, "Number of runs to show")
	return cmd
}

func listPatchHistory(out io.Writer, container *app.Container, limit int) error {
	if container.HistoryStore == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}
	records, err := container.HistoryStore.Records(limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}
	for _, record := range records {
		report := domain.PatchReport{Steps: record.Steps}
		mode := ""
		if record.DryRun {
			mode = " (dry run)"
		}
		fmt.Fprintf(out, "%s | %s | %s | %s%s | %s\n",
			record.Timestamp.Local().Format(TimestampFormat),
			shortRunID(record.RunID),
			record.Root,
			record.Target,
			mode,
			report.Summary())
	}
	return nil
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
