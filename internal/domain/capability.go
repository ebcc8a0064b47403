package domain

// TerminalClass groups terminals by how much they can be trusted to draw.
type TerminalClass string

const (
	TerminalUnknown  TerminalClass = "unknown"
	TerminalAdvanced TerminalClass = "advanced"
	TerminalEditor   TerminalClass = "editor"
	TerminalLegacy   TerminalClass = "legacy"
)

// CapabilityProfile is what the current output destination can display.
// It is computed on every invocation and never persisted.
type CapabilityProfile struct {
	SupportsUnicode bool
	SupportsColor   bool
	TerminalClass   TerminalClass
}

// EnvironmentView is a read-only snapshot of the process environment.
type EnvironmentView struct {
	Vars        map[string]string
	GOOS        string
	Interactive bool
}

// Get returns the variable value, or "" when it is unset.
func (e EnvironmentView) Get(key string) string {
	if e.Vars == nil {
		return ""
	}
	return e.Vars[key]
}

// Has reports whether the variable is set, even to the empty string.
func (e EnvironmentView) Has(key string) bool {
	if e.Vars == nil {
		return false
	}
	_, ok := e.Vars[key]
	return ok
}
