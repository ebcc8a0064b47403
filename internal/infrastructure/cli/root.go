package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/promptline/internal/app"
	"github.com/doeshing/promptline/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The returned cleanup releases
// the log file and the history database.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func(), error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, func() {}, err
	}

	verbose := opts.Verbose
	root := &cobra.Command{
		Use:   "promptline",
		Short: "Cached status line for agent sessions and shell prompts",
		Long: "promptline renders a one-line status summary from cached facts and keeps " +
			"a project's agent configuration portable across machines.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", opts.Verbose, "Log diagnostics to stderr")

	root.AddCommand(
		commands.NewRenderCommand(container),
		commands.NewOptimizeCommand(container),
		commands.NewCacheCommand(container),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewVersionCommand(),
	)

	cleanup := func() {
		_ = container.Close()
	}
	return root, cleanup, nil
}
