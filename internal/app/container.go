package app

import (
	"context"
	"os"
	"sync"

	"github.com/doeshing/promptline/internal/application/doctor"
	"github.com/doeshing/promptline/internal/application/patcher"
	"github.com/doeshing/promptline/internal/application/statusline"
	"github.com/doeshing/promptline/internal/domain"
	"github.com/doeshing/promptline/internal/infrastructure/cache"
	"github.com/doeshing/promptline/internal/infrastructure/capability"
	"github.com/doeshing/promptline/internal/infrastructure/config"
	contextcollector "github.com/doeshing/promptline/internal/infrastructure/context"
	"github.com/doeshing/promptline/internal/infrastructure/executor"
	"github.com/doeshing/promptline/internal/infrastructure/history"
	"github.com/doeshing/promptline/internal/infrastructure/patch"
	"github.com/doeshing/promptline/internal/pkg/logger"
	"github.com/doeshing/promptline/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config            domain.Config
	ConfigProvider    ports.ConfigProvider
	ConfigLoader      *config.FileLoader
	StatuslineService *statusline.Service
	PatchService      *patcher.Service
	DoctorService     *doctor.Service
	HistoryStore      ports.PatchHistoryRepository
	CacheStore        ports.CacheRepository
	Logger            *logger.SlogLogger
	// Env captures the process environment for capability detection.
	Env func() domain.EnvironmentView
}

// BuildContainer constructs the dependency graph. It never fails on a bad
// config file: the defaults are used and the problem is logged.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, cfgErr := cfgLoader.Load(ctx)

	log := logger.New(logger.Options{
		Verbose: verbose,
		File:    cfg.Logging.File,
		Level:   cfg.Logging.Level,
	})
	if cfgErr != nil {
		log.Warn("config unavailable, using defaults", map[string]interface{}{
			"path":  cfgLoader.Path(),
			"error": cfgErr.Error(),
		})
	}

	cacheStore := cache.NewFileCache(cfg.Cache.File,
		cache.WithLimits(cfg.CacheMaxEntries(), cfg.CacheMaxAge()),
		cache.WithLogger(log),
	)
	runner := executor.NewTimeoutRunner(cfg.CommandTimeout())
	collector := contextcollector.NewSnapshotCollector(cacheStore, runner, cfg, log)
	historyStore := &lazyHistory{}

	env := func() domain.EnvironmentView {
		return capability.FromProcess(os.Stdout, cfg.Statusline.AssumeInteractive)
	}

	statuslineService := &statusline.Service{
		Collector:   collector,
		Detect:      capability.Detect,
		DefaultMode: cfg.RenderMode(),
		Logger:      log,
	}

	patchService := &patcher.Service{
		FindRoot: patch.FindProjectRoot,
		Steps: func(root, targetOS string) []domain.PatchStep {
			return patch.Steps(patch.Options{
				Root:           root,
				TargetOS:       targetOS,
				PlaceholderVar: cfg.Patch.PlaceholderVar,
			})
		},
		History: historyStore,
		Logger:  log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		CacheStore:     cacheStore,
		Runner:         runner,
		Detect:         capability.Detect,
		Env:            env,
		Patches:        patchService,
		FindRoot:       patch.FindProjectRoot,
	}

	return &Container{
		Config:            cfg,
		ConfigProvider:    cfgLoader,
		ConfigLoader:      cfgLoader,
		StatuslineService: statuslineService,
		PatchService:      patchService,
		DoctorService:     doctorService,
		HistoryStore:      historyStore,
		CacheStore:        cacheStore,
		Logger:            log,
		Env:               env,
	}, nil
}

// Close releases the log file and the history database.
func (c *Container) Close() error {
	if h, ok := c.HistoryStore.(*lazyHistory); ok {
		_ = h.Close()
	}
	return c.Logger.Close()
}

// lazyHistory opens the history database on first use so the render path
// never touches it.
type lazyHistory struct {
	once  sync.Once
	store *history.SQLiteStore
}

func (l *lazyHistory) get() *history.SQLiteStore {
	l.once.Do(func() { l.store = history.NewSQLiteStore("") })
	return l.store
}

func (l *lazyHistory) Save(record domain.PatchRecord) error { return l.get().Save(record) }

func (l *lazyHistory) Records(limit int) ([]domain.PatchRecord, error) {
	return l.get().Records(limit)
}

func (l *lazyHistory) Path() string { return l.get().Path() }

func (l *lazyHistory) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
