package domain

import "strings"

// StatusSnapshot holds the facts gathered for a single render. Any field may be
// empty when its source failed; renderers omit empty segments.
type StatusSnapshot struct {
	ModelLabel              string
	ToolVersion             string
	DirectoryName           string
	VCSBranch               string
	VCSStatusSummary        string
	ActiveEnvironmentMarker string
	LastExitCode            string
}

// IsEmpty reports whether no field carries a value.
func (s StatusSnapshot) IsEmpty() bool {
	return s == StatusSnapshot{}
}

// SnapshotRequest carries the per-invocation inputs the collector cannot cache.
type SnapshotRequest struct {
	WorkingDir string
	ModelLabel string
	// LastExitCode is passed through by the shell hook; empty when unknown.
	LastExitCode string
}

// RenderMode selects the segment layout of the status line.
type RenderMode string

const (
	ModeCompact  RenderMode = "compact"
	ModePlain    RenderMode = "plain"
	ModeExtended RenderMode = "extended"
	ModeMinimal  RenderMode = "minimal"
)

// RenderModes lists every supported mode in display order.
var RenderModes = []RenderMode{ModeCompact, ModePlain, ModeExtended, ModeMinimal}

// ParseRenderMode maps a user supplied string to a mode. The second return
// value is false when the string was not recognised and the compact layout
// was substituted.
func ParseRenderMode(raw string) (RenderMode, bool) {
	switch RenderMode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeCompact:
		return ModeCompact, true
	case ModePlain:
		return ModePlain, true
	case ModeExtended:
		return ModeExtended, true
	case ModeMinimal:
		return ModeMinimal, true
	default:
		return ModeCompact, false
	}
}

// SessionContext is the optional JSON document a host editor pipes to the
// render command on stdin.
type SessionContext struct {
	Model struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
	} `json:"model"`
	CWD        string `json:"cwd"`
	Version    string `json:"version"`
	Statusline struct {
		Mode string `json:"mode"`
	} `json:"statusline"`
}

// ModelLabel picks the most descriptive model name available.
func (s SessionContext) ModelLabel() string {
	if s.Model.DisplayName != "" {
		return s.Model.DisplayName
	}
	if s.Model.Name != "" {
		return s.Model.Name
	}
	return s.Model.ID
}
