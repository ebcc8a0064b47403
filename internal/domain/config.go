package domain

// Config mirrors ~/.promptline/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Statusline          StatuslineSettings `yaml:"statusline"`
	Cache               CacheSettings      `yaml:"cache"`
	Execution           ExecutionSettings  `yaml:"execution"`
	Patch               PatchSettings      `yaml:"patch"`
	Logging             LoggingSettings    `yaml:"logging"`
}

// StatuslineSettings captures render defaults.
type StatuslineSettings struct {
	DefaultMode string `yaml:"default_mode"`
	ModelLabel  string `yaml:"model_label"`
	// VersionCommand is run through the command runner; its first
	// version-looking token becomes the tool version segment.
	VersionCommand []string `yaml:"version_command"`
	// AssumeInteractive treats piped stdout as a terminal. Editor hosts that
	// capture the status line through a pipe still display it in color.
	AssumeInteractive bool `yaml:"assume_interactive"`
}

// CacheSettings controls the persistent fact store.
type CacheSettings struct {
	File       string         `yaml:"file"`
	MaxEntries int            `yaml:"max_entries"`
	MaxAge     string         `yaml:"max_age"`
	TTLSeconds map[string]int `yaml:"ttl_seconds"`
}

// ExecutionSettings bounds external commands.
type ExecutionSettings struct {
	CommandTimeout string `yaml:"command_timeout"`
}

// PatchSettings configures the optimize command.
type PatchSettings struct {
	PlaceholderVar string `yaml:"placeholder_var"`
	// TargetOS overrides runtime detection ("windows", "linux", "darwin").
	TargetOS string `yaml:"target_os"`
}

// LoggingSettings configures the optional log file.
type LoggingSettings struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}
