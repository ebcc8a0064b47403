package domain

import (
	"runtime"
	"strings"
	"time"
)

// Fact names a snapshot field that is fetched through the cache.
type Fact string

const (
	FactModelLabel Fact = "model"
	FactVersion    Fact = "version"
	FactDirectory  Fact = "directory"
	FactVCSBranch  Fact = "vcs.branch"
	FactVCSStatus  Fact = "vcs.status"
	FactMarker     Fact = "marker"
	FactExitCode   Fact = "exit_code"
)

// DefaultTTLs returns the built-in TTL table. Volatile facts use 0 so they
// are always recomputed but still leave a stale value behind.
func DefaultTTLs() map[string]int {
	return map[string]int{
		string(FactModelLabel): 0,
		string(FactVersion):    DefaultVersionTTLSeconds,
		string(FactDirectory):  0,
		string(FactVCSBranch):  DefaultVCSTTLSeconds,
		string(FactVCSStatus):  DefaultVCSTTLSeconds,
		string(FactMarker):     DefaultMarkerTTLSeconds,
		string(FactExitCode):   0,
	}
}

// TTLFor returns the configured TTL of a fact, falling back to the default table.
func (c *Config) TTLFor(fact Fact) int {
	if ttl, ok := c.Cache.TTLSeconds[string(fact)]; ok {
		return ttl
	}
	return DefaultTTLs()[string(fact)]
}

// CommandTimeout parses the execution timeout, defaulting on empty or invalid input.
func (c *Config) CommandTimeout() time.Duration {
	return parseDurationOr(c.Execution.CommandTimeout, DefaultCommandTimeout)
}

// CacheMaxAge parses the eviction age, defaulting on empty or invalid input.
func (c *Config) CacheMaxAge() time.Duration {
	return parseDurationOr(c.Cache.MaxAge, DefaultCacheMaxAge)
}

// CacheMaxEntries returns the entry cap of the cache store.
func (c *Config) CacheMaxEntries() int {
	if c.Cache.MaxEntries <= 0 {
		return DefaultMaxCacheEntries
	}
	return c.Cache.MaxEntries
}

// RenderMode resolves the configured default mode.
func (c *Config) RenderMode() RenderMode {
	if c.Statusline.DefaultMode == "" {
		return ModeExtended
	}
	mode, _ := ParseRenderMode(c.Statusline.DefaultMode)
	return mode
}

// TargetOS returns the OS the patcher optimises for.
func (c *Config) TargetOS() string {
	if target := strings.ToLower(strings.TrimSpace(c.Patch.TargetOS)); target != "" {
		return target
	}
	return runtime.GOOS
}

// PlaceholderFor formats an environment variable reference in the syntax
// of the target OS shell.
func PlaceholderFor(name, targetOS string) string {
	if targetOS == "windows" {
		return "%" + name + "%"
	}
	return "$" + name
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
