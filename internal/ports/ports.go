// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The status line pipeline and the configuration patcher
// depend only on these interfaces, so every adapter (file cache, git runner, history
// database) can be replaced by a stub in tests.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., FactCache, CommandRunner)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/promptline/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.promptline/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// FactCache is the cross-invocation key/value store behind the snapshot collector.
// GetOrRefresh never fails: compute errors degrade to the last known value or "".
type FactCache interface {
	GetOrRefresh(key string, ttlSeconds int, compute func() (string, error)) string
}

// CacheRepository exposes maintenance operations on the fact store.
type CacheRepository interface {
	FactCache
	Entries() ([]domain.CacheEntry, error)
	Clear() error
	Path() string
}

// SnapshotCollector assembles the facts of one render.
type SnapshotCollector interface {
	Collect(context.Context, domain.SnapshotRequest) domain.StatusSnapshot
}

// CommandRunner runs an external command bounded by a timeout and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// PatchHistoryRepository records patch reports handed back to the CLI.
type PatchHistoryRepository interface {
	Save(domain.PatchRecord) error
	Records(limit int) ([]domain.PatchRecord, error)
	Path() string
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
