package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/promptline/assets"
	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/pkg/filesystem"
	"github.com/doeshing/promptline/internal/ports"
)

// Environment overrides.
const (
	EnvConfigPath     = "PROMPTLINE_CONFIG"
	EnvStatuslineMode = "PROMPTLINE_STATUSLINE_MODE"
	EnvCacheFile      = "PROMPTLINE_CACHE_FILE"
)

// FileLoader loads YAML configuration from ~/.promptline/config.yaml (overridable via PROMPTLINE_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. The returned config is always
// usable: on a missing, unwritable or corrupt file it holds the defaults and
// the error says what went wrong.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		cfg := applyEnv(Defaults())
		if !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := writeDefault(path); err != nil {
			return cfg, fmt.Errorf("write default config %s: %w", path, err)
		}
		return cfg, nil
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return applyEnv(Defaults()), fmt.Errorf("parse config %s: %w", path, err)
	}
	return applyEnv(hydrateDefaults(cfg)), nil
}

// Path resolves the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.StateDir(), "config.yaml")
}

// Defaults decodes the embedded default configuration.
func Defaults() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		cfg = domain.Config{ConfigFormatVersion: "1"}
	}
	return hydrateDefaults(cfg)
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return filesystem.WriteFileAtomic(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// hydrateDefaults fills fields a hand-edited file left out.
func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Statusline.DefaultMode == "" {
		cfg.Statusline.DefaultMode = string(domain.ModeExtended)
	}
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = domain.DefaultMaxCacheEntries
	}
	if cfg.Cache.MaxAge == "" {
		cfg.Cache.MaxAge = domain.DefaultCacheMaxAge.String()
	}
	if cfg.Cache.TTLSeconds == nil {
		cfg.Cache.TTLSeconds = map[string]int{}
	}
	for fact, ttl := range domain.DefaultTTLs() {
		if _, ok := cfg.Cache.TTLSeconds[fact]; !ok {
			cfg.Cache.TTLSeconds[fact] = ttl
		}
	}
	if cfg.Execution.CommandTimeout == "" {
		cfg.Execution.CommandTimeout = domain.DefaultCommandTimeout.String()
	}
	if cfg.Patch.PlaceholderVar == "" {
		cfg.Patch.PlaceholderVar = domain.DefaultPlaceholderVar
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	return cfg
}

func applyEnv(cfg domain.Config) domain.Config {
	if mode := os.Getenv(EnvStatuslineMode); mode != "" {
		cfg.Statusline.DefaultMode = mode
	}
	if file := os.Getenv(EnvCacheFile); file != "" {
		cfg.Cache.File = filesystem.ExpandPath(file)
	}
	if cfg.Cache.File != "" {
		cfg.Cache.File = filesystem.ExpandPath(cfg.Cache.File)
	}
	if cfg.Logging.File != "" {
		cfg.Logging.File = filesystem.ExpandPath(cfg.Logging.File)
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
