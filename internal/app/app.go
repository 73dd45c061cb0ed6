package app

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/cafeapi"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/store"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type Application struct {
	appConfig *config.AppConfig
	store     store.Store
	svc       *service.Service
	sched     *cron.Cron
	pool      *ants.Pool
	notifier  *Notifier
}

// Ensure Application implements all interfaces
var (
	_ StoreProvider     = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ ServiceProvider   = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() store.Store {
	return a.store
}

func (a *Application) Service() *service.Service {
	return a.svc
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// InitLogger installs the global zap logger, optionally teeing to a
// rotated file.
func InitLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    cfg.Logger.MaxSize,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAge,
			Compress:   cfg.Logger.Compress,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Init opens the store, builds the service and wires events, jobs and
// routes.
func (a *Application) Init() error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.store, err = OpenStore(cfg)
	if err != nil {
		return err
	}
	zap.S().Infof("Record store ready, backend: %s", cfg.Storage.Backend)

	bus := EventBus.New()
	a.svc = service.New(a.store, service.Options{Bus: bus})

	if cfg.SeedDemo {
		a.checkDemoData(context.Background())
	}

	if err := a.initNotifier(bus); err != nil {
		return err
	}
	a.initJob()

	webserver.Init(cfg)
	cafeapi.Init(a.svc, cafeapi.Options{ExposeResetLink: !cfg.Mail.Enabled})
	return nil
}

// OpenStore opens the configured record store backend.
func OpenStore(cfg *config.AppConfig) (store.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendCSV, "":
		return store.NewCSVStore(cfg.GetDataDir())
	case config.BackendBolt:
		return store.NewBoltStore(cfg.GetBoltPath())
	case config.BackendPostgres, config.BackendSqlite:
		db, err := store.OpenSQL(cfg.Storage.Backend, cfg.Storage.DSN, cfg.Storage.Debug)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
		}
		return store.NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Run serves HTTP and keeps the scheduler running until ctx ends or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Start(gctx)
	})
	g.Go(func() error {
		a.sched.Start()
		<-gctx.Done()
		<-a.sched.Stop().Done()
		return nil
	})
	return g.Wait()
}

// Release releases application resources
func (a *Application) Release() {
	defer func() {
		if err := recover(); err != nil {
			if os.Getenv("CAFEDESK_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			zap.S().Errorf("release panic: %v", err)
		}
	}()
	if a.pool != nil {
		a.pool.Release()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			zap.S().Errorf("close store: %v", err)
		}
	}
	_ = zap.L().Sync()
}
