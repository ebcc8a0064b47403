package capability

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/term"

	"github.com/doeshing/promptline/internal/domain"
)

// FromProcess captures the process environment once. assumeInteractive lets
// hosts that read the status line through a pipe opt into terminal output.
func FromProcess(out *os.File, assumeInteractive bool) domain.EnvironmentView {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	interactive := assumeInteractive
	if !interactive && out != nil {
		interactive = term.IsTerminal(int(out.Fd()))
	}
	return domain.EnvironmentView{
		Vars:        vars,
		GOOS:        runtime.GOOS,
		Interactive: interactive,
	}
}
