package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"chatdesk/internal/bus"
	"chatdesk/internal/channel"
	"chatdesk/internal/config"
	"chatdesk/internal/ingest"
	"chatdesk/internal/lock"
	"chatdesk/internal/logging"
	"chatdesk/internal/rest"
	"chatdesk/internal/session"
	"chatdesk/internal/status"
	"chatdesk/internal/store"
)

// Params holds startup options passed to the fx module.
type Params struct {
	ConfigPath string // optional override; empty = default location
	// QuietConsole routes logs to the file only, for callers that own the
	// terminal.
	QuietConsole bool
}

// Module returns the fx module composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideRESTClient,
			provideChannelClient,
			provideIngestEngine,
			provideManager,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}
	path := p.ConfigPath
	if path == "" {
		path = config.Path()
	}
	return config.Load(path)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if p.QuietConsole {
		return logging.NewFileOnly(config.LogPath())
	}
	return logging.New(config.LogPath())
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring cache lock", zap.String("dir", config.BaseDir()))
	l, err := lock.Acquire(config.BaseDir())
	if err != nil {
		return nil, err
	}
	logger.Info("cache lock acquired")
	return l, nil
}

func provideStore(cfg *config.Config, logger *zap.Logger) (*store.DB, error) {
	dbPath := cfg.Cache.Path
	if dbPath == "" {
		dbPath = config.CachePath()
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideRESTClient(cfg *config.Config, logger *zap.Logger) *rest.Client {
	return rest.New(cfg.API.BaseURL, cfg.APITimeout(), logger)
}

func provideChannelClient(cfg *config.Config, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *channel.Client {
	return channel.New(cfg.SocketURL(), b, machine, logger)
}

func provideIngestEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *ingest.Engine {
	return ingest.NewEngine(db, b, logger)
}

func provideManager(cfg *config.Config, api *rest.Client, ch *channel.Client, b *bus.Bus, logger *zap.Logger) *session.Manager {
	return session.New(api, ch, b, logger,
		cfg.Session.AdminID, cfg.Session.HistoryLimit, cfg.RefreshInterval())
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, ch *channel.Client, engine *ingest.Engine, mgr *session.Manager, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Ingest first so nothing pushed during startup is missed.
			engine.Start(context.Background())
			mgr.Start(context.Background())
			ch.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ch.Stop()
			mgr.Stop()
			engine.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("stopped")
			return nil
		},
	})
}
