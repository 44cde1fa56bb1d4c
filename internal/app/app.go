// Package app wires configuration, storage, the scheme registry and the
// aggregation service into one runnable unit shared by the HTTP server and
// the MCP endpoint.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/navdash/internal/archive"
	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/registry"
	"github.com/bobmcallan/navdash/internal/services/aggregation"
	"github.com/bobmcallan/navdash/internal/storage"
)

// App holds all initialized services and the MCP server.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     *storage.Manager
	Archive     *archive.Archive
	Registry    *registry.Registry
	Aggregation interfaces.AggregationService
	MCPServer   *server.MCPServer
	StartupTime time.Time

	scheduler       *cron.Cron
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes every service.
// configPath may be empty, in which case NAVDASH_CONFIG, the binary
// directory and config/navdash.toml are tried in that order.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("NAVDASH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "navdash.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/navdash.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to binary directory
	if config.Storage.Badger.Path != "" && !filepath.IsAbs(config.Storage.Badger.Path) {
		config.Storage.Badger.Path = filepath.Join(binDir, config.Storage.Badger.Path)
	}

	return NewAppWithConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig initializes every service from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	arc, err := archive.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load frozen archive: %w", err)
	}

	reg, err := registry.NewFromConfig(config, arc)
	if err != nil {
		return nil, fmt.Errorf("invalid scheme configuration: %w", err)
	}

	storageManager, err := storage.NewManager(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Storage.SeedFile != "" {
		n, err := ImportRecordsFromFile(ctx, storageManager.Records(), logger, config.Storage.SeedFile)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to import seed records: %w", err)
		}
		logger.Info().Str("file", config.Storage.SeedFile).Int("records", n).Msg("Seed records imported")
	}

	aggregationService := aggregation.NewService(reg, storageManager.Records(), logger.Component("aggregation"))

	mcpServer := server.NewMCPServer(
		"navdash",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Archive:     arc,
		Registry:    reg,
		Aggregation: aggregationService,
		MCPServer:   mcpServer,
		StartupTime: startupStart,
	}

	a.registerTools()

	logger.Info().
		Int("schemes", len(reg.Schemes())).
		Int("accounts", len(reg.Accounts())).
		Strs("frozen", arc.Names()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// InvalidateCache drops the record cache snapshot. It reports false when
// caching is disabled.
func (a *App) InvalidateCache() bool {
	if !a.Storage.Cached() {
		return false
	}
	a.Storage.Invalidate()
	return true
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, cancel warm cache, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
		a.scheduler = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
		a.Storage = nil
	}
}

// StartWarmCache loads the record cache in the background so the first
// request does not pay for the scan.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.Storage, a.Logger)
	}()
}

// StartCacheScheduler invalidates the record cache on the configured cron
// schedule. An empty schedule or a disabled cache is a no-op.
func (a *App) StartCacheScheduler() error {
	spec := a.Config.Cache.RefreshSchedule
	if spec == "" || !a.Storage.Cached() {
		return nil
	}

	c, err := newCacheScheduler(spec, a.Storage, a.Logger.Component("scheduler"))
	if err != nil {
		return err
	}
	c.Start()
	a.scheduler = c
	return nil
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createListSchemesTool(), handleListSchemes(a.Registry, logger))
	s.AddTool(createGetSchemeAnalyticsTool(), handleGetSchemeAnalytics(a.Aggregation, logger))
	s.AddTool(createInvalidateCacheTool(), handleInvalidateCache(a, logger))
}
