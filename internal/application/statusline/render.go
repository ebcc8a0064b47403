// Package statusline turns collected facts into the single prompt line.
package statusline

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/doeshing/promptline/internal/domain"
)

// Separators between segments.
const (
	UnicodeSeparator = " │ "
	ASCIISeparator   = " | "
)

type segmentID int

const (
	segModel segmentID = iota
	segVersion
	segDirectory
	segBranch
	segStatus
	segMarker
	segExitCode
)

type segmentStyle struct {
	glyph string
	label string
	color lipgloss.Color
	value func(domain.StatusSnapshot) string
}

var segments = map[segmentID]segmentStyle{
	segModel:     {glyph: "🤖", label: "model", color: "213", value: func(s domain.StatusSnapshot) string { return s.ModelLabel }},
	segVersion:   {glyph: "📦", label: "ver", color: "246", value: func(s domain.StatusSnapshot) string { return prefixV(s.ToolVersion) }},
	segDirectory: {glyph: "📁", label: "dir", color: "39", value: func(s domain.StatusSnapshot) string { return s.DirectoryName }},
	segBranch:    {glyph: "🔀", label: "git", color: "114", value: func(s domain.StatusSnapshot) string { return s.VCSBranch }},
	segStatus:    {glyph: "📊", label: "chg", color: "221", value: func(s domain.StatusSnapshot) string { return s.VCSStatusSummary }},
	segMarker:    {glyph: "🐍", label: "env", color: "180", value: func(s domain.StatusSnapshot) string { return s.ActiveEnvironmentMarker }},
	segExitCode:  {glyph: "✗", label: "exit", color: "203", value: func(s domain.StatusSnapshot) string { return s.LastExitCode }},
}

var layouts = map[domain.RenderMode][]segmentID{
	domain.ModeCompact:  {segModel, segDirectory, segBranch, segExitCode},
	domain.ModePlain:    {segModel, segDirectory, segBranch, segStatus},
	domain.ModeExtended: {segModel, segVersion, segDirectory, segBranch, segStatus, segMarker, segExitCode},
	domain.ModeMinimal:  {segDirectory, segBranch},
}

// Render formats snapshot for the given capabilities and mode. It reads no
// ambient state, so equal inputs always produce identical bytes.
func Render(snapshot domain.StatusSnapshot, caps domain.CapabilityProfile, mode domain.RenderMode) string {
	layout, ok := layouts[mode]
	if !ok {
		layout = layouts[domain.ModeCompact]
	}
	paint := newPainter(caps)
	if snapshot.IsEmpty() {
		return paint(segments[segModel].color, domain.AppName)
	}

	parts := make([]string, 0, len(layout))
	for _, id := range layout {
		style := segments[id]
		value := style.value(snapshot)
		if value == "" {
			continue
		}
		parts = append(parts, paint(style.color, decorate(style, value, caps, mode)))
	}
	if len(parts) == 0 {
		return paint(segments[segModel].color, domain.AppName)
	}

	sep := ASCIISeparator
	if caps.SupportsUnicode {
		sep = UnicodeSeparator
	}
	return strings.Join(parts, paint("240", sep))
}

func decorate(style segmentStyle, value string, caps domain.CapabilityProfile, mode domain.RenderMode) string {
	switch {
	case mode == domain.ModePlain:
		return value
	case caps.SupportsUnicode:
		return style.glyph + " " + value
	default:
		return style.label + " " + value
	}
}

// newPainter returns an identity function when color is off so no escape
// sequence is ever emitted. The lipgloss renderer gets a fixed profile and
// background so it never queries the terminal.
func newPainter(caps domain.CapabilityProfile) func(lipgloss.Color, string) string {
	if !caps.SupportsColor {
		return func(_ lipgloss.Color, text string) string { return text }
	}
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	r.SetColorProfile(termenv.ANSI256)
	r.SetHasDarkBackground(true)
	return func(color lipgloss.Color, text string) string {
		return r.NewStyle().Foreground(color).Render(text)
	}
}

func prefixV(version string) string {
	if version == "" {
		return ""
	}
	return "v" + version
}
