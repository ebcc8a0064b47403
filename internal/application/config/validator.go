package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/promptline/internal/domain"
)

var knownTargets = map[string]bool{"": true, "windows": true, "linux": true, "darwin": true, "freebsd": true}

// Validate ensures config structure is consistent. All problems are
// reported together.
func Validate(cfg domain.Config) error {
	return errors.Join(
		validateStatusline(cfg.Statusline),
		validateCache(cfg.Cache),
		validateExecution(cfg.Execution),
		validatePatch(cfg.Patch),
		validateLogging(cfg.Logging),
	)
}

func validateStatusline(s domain.StatuslineSettings) error {
	if s.DefaultMode == "" {
		return nil
	}
	if _, ok := domain.ParseRenderMode(s.DefaultMode); !ok {
		return fmt.Errorf("statusline.default_mode must be one of %s, got %s", modeList(), s.DefaultMode)
	}
	return nil
}

func validateCache(cache domain.CacheSettings) error {
	if cache.MaxAge != "" {
		if _, err := time.ParseDuration(cache.MaxAge); err != nil {
			return fmt.Errorf("cache.max_age invalid: %w", err)
		}
	}
	if cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0")
	}
	for key, ttl := range cache.TTLSeconds {
		if ttl < 0 {
			return fmt.Errorf("cache.ttl_seconds.%s must be >= 0", key)
		}
	}
	return nil
}

func validateExecution(exec domain.ExecutionSettings) error {
	if exec.CommandTimeout == "" {
		return nil
	}
	d, err := time.ParseDuration(exec.CommandTimeout)
	if err != nil {
		return fmt.Errorf("execution.command_timeout invalid: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("execution.command_timeout must be > 0")
	}
	return nil
}

func validatePatch(patch domain.PatchSettings) error {
	for _, c := range patch.PlaceholderVar {
		if c != '_' && (c < '0' || c > '9') && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return fmt.Errorf("patch.placeholder_var must be an environment variable name, got %q", patch.PlaceholderVar)
		}
	}
	if !knownTargets[strings.ToLower(patch.TargetOS)] {
		return fmt.Errorf("patch.target_os must be windows|linux|darwin|freebsd, got %s", patch.TargetOS)
	}
	return nil
}

func validateLogging(logging domain.LoggingSettings) error {
	switch strings.ToLower(logging.Level) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %s", logging.Level)
	}
}

func modeList() string {
	names := make([]string, 0, len(domain.RenderModes))
	for _, mode := range domain.RenderModes {
		names = append(names, string(mode))
	}
	return strings.Join(names, "|")
}
