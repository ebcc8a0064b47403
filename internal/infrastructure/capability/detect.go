// Package capability decides what the current output destination can draw.
package capability

import (
	"strings"

	"github.com/doeshing/promptline/internal/domain"
)

// Override variables honoured by Detect.
const (
	EnvForceUnicode = "PROMPTLINE_FORCE_UNICODE"
	EnvForceColor   = "PROMPTLINE_FORCE_COLOR"
	EnvNoColor      = "NO_COLOR"
)

// Detect maps an environment snapshot to a capability profile. It is pure:
// the same view always yields the same profile.
func Detect(env domain.EnvironmentView) domain.CapabilityProfile {
	class := terminalClass(env)
	if !env.Interactive {
		return domain.CapabilityProfile{TerminalClass: class}
	}
	return domain.CapabilityProfile{
		SupportsUnicode: unicodeSupported(env),
		SupportsColor:   colorSupported(env),
		TerminalClass:   class,
	}
}

func unicodeSupported(env domain.EnvironmentView) bool {
	if hasAdvancedMarker(env) || !isLegacyOS(env.GOOS) {
		return true
	}
	return truthy(env.Get(EnvForceUnicode))
}

func colorSupported(env domain.EnvironmentView) bool {
	if env.Has(EnvNoColor) {
		return false
	}
	colorterm := strings.ToLower(env.Get("COLORTERM"))
	if colorterm == "truecolor" || colorterm == "24bit" {
		return true
	}
	if strings.Contains(strings.ToLower(env.Get("TERM")), "256color") {
		return true
	}
	return truthy(env.Get(EnvForceColor))
}

func terminalClass(env domain.EnvironmentView) domain.TerminalClass {
	switch {
	case isEditorIntegrated(env):
		return domain.TerminalEditor
	case hasAdvancedMarker(env):
		return domain.TerminalAdvanced
	case isLegacyOS(env.GOOS):
		return domain.TerminalLegacy
	default:
		return domain.TerminalUnknown
	}
}

func isEditorIntegrated(env domain.EnvironmentView) bool {
	if strings.EqualFold(env.Get("TERM_PROGRAM"), "vscode") || env.Get("VSCODE_PID") != "" {
		return true
	}
	return strings.Contains(env.Get("TERMINAL_EMULATOR"), "JetBrains")
}

func hasAdvancedMarker(env domain.EnvironmentView) bool {
	if env.Get("WT_SESSION") != "" || env.Get("TERM_PROGRAM") != "" || env.Get("ANSICON") != "" {
		return true
	}
	if strings.EqualFold(env.Get("ConEmuANSI"), "ON") {
		return true
	}
	term := strings.ToLower(env.Get("TERM"))
	for _, known := range []string{"xterm", "kitty", "alacritty", "wezterm", "tmux", "screen"} {
		if strings.Contains(term, known) {
			return true
		}
	}
	return false
}

func isLegacyOS(goos string) bool {
	return goos == "windows"
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
