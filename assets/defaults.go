package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// StatuslineRunnerSh is the helper script synthesized when a project has no template.
//
//go:embed defaults/statusline-runner.sh
var StatuslineRunnerSh []byte

// StatuslineRunnerCmd is the windows flavour of StatuslineRunnerSh.
//
//go:embed defaults/statusline-runner.cmd
var StatuslineRunnerCmd []byte

// HookHeaderPython is inserted into python hooks lacking the encoding setup.
//
//go:embed defaults/hook-header.py
var HookHeaderPython []byte

// HookHeaderShell is inserted into shell hooks lacking the encoding setup.
//
//go:embed defaults/hook-header.sh
var HookHeaderShell []byte
