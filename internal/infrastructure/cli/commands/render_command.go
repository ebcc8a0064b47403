package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/doeshing/promptline/internal/app"
	"github.com/doeshing/promptline/internal/application/statusline"
	"github.com/doeshing/promptline/internal/domain"
)

// NewRenderCommand creates the render command. It prints exactly one line
// and always exits 0.
func NewRenderCommand(container *app.Container) *cobra.Command {
	var (
		mode     string
		dir      string
		exitCode string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the status line for the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			line := domain.AppName
			defer func() {
				if r := recover(); r != nil {
					container.Logger.Warn("render panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
					line = domain.AppName
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
				err = nil
			}()
			if container.StatuslineService != nil {
				line = container.StatuslineService.Render(cmd.Context(), statusline.Request{
					WorkingDir: dir,
					Mode:       mode,
					ExitCode:   exitCode,
					Session:    readSession(cmd.InOrStdin(), container),
					Env:        container.Env(),
				})
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Layout: compact|plain|extended|minimal (default from config)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Working directory (default: session cwd, then current directory)")
	cmd.Flags().StringVar(&exitCode, "exit-code", "", "Exit code of the previous shell command")
	return cmd
}

// readSession decodes a host payload piped on stdin. Terminals are skipped
// and a stalled pipe is abandoned after sessionReadTimeout.
func readSession(in io.Reader, container *app.Container) *domain.SessionContext {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil
	}

	type result struct {
		session *domain.SessionContext
		err     error
	}
	done := make(chan result, 1)
	go func() {
		session, err := statusline.ReadSession(in)
		done <- result{session: session, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			container.Logger.Debug("session payload ignored", map[string]interface{}{"error": res.err.Error()})
		}
		return res.session
	case <-time.After(sessionReadTimeout):
		container.Logger.Debug("session payload timed out", nil)
		return nil
	}
}
