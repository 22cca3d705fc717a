package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cryptofolio/internal/client/coingecko"
	"cryptofolio/internal/config"
	cronrunner "cryptofolio/internal/cron"
	"cryptofolio/internal/db"
	"cryptofolio/internal/export"
	"cryptofolio/internal/handler"
	"cryptofolio/internal/history"
	"cryptofolio/internal/ledger"
	"cryptofolio/internal/logger"
	"cryptofolio/internal/render"
	gormrepository "cryptofolio/internal/repository/gorm"
	"cryptofolio/internal/seed"
	"cryptofolio/internal/tracker"
)

func main() {
	cfgPath := os.Getenv("TRACKER_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.json"
	}

	cfg, cfgErr := config.Load(cfgPath)

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if cfgErr != nil {
		log.Warn("config degraded to defaults", zap.String("path", cfgPath), zap.Error(cfgErr))
	}

	dbConn := openStore(log, cfg.DB)
	defer db.Close(dbConn)

	store := gormrepository.New(dbConn.Gorm)

	ledgerSvc := &ledger.Service{Repo: store, Logger: log}
	if err := ledgerSvc.Load(context.Background()); err != nil {
		log.Warn("portfolio load failed, starting fresh", zap.Error(err))
	}

	histStore := &history.Store{
		Repo:       store,
		Logger:     log,
		MaxEntries: cfg.Retention.MaxEntries,
		MaxAge:     cfg.Export.KeepHistory(),
	}
	if err := histStore.Load(context.Background()); err != nil {
		log.Warn("history load failed, starting empty", zap.Error(err))
	}

	if len(os.Args) > 1 && strings.EqualFold(os.Args[1], "demo") {
		if err := seed.Demo(context.Background(), ledgerSvc, log); err != nil {
			log.Warn("demo seed failed", zap.Error(err))
		}
	}

	prices := coingecko.NewClient(&http.Client{Timeout: cfg.PriceFeed.Timeout}, cfg.PriceFeed.BaseURL)
	trackerSvc := &tracker.Service{
		Ledger:       ledgerSvc,
		Prices:       prices,
		History:      histStore,
		Exporter:     &export.Exporter{Dir: cfg.Export.Dir, Logger: log},
		Renderer:     &render.Renderer{},
		Logger:       log,
		Currency:     cfg.DisplayCurrency,
		FetchTimeout: cfg.PriceFeed.Timeout,
		Alerts:       cfg.Alerts,
	}

	if cfg.Log.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	(&handler.HealthHandler{DB: dbConn}).Register(engine)
	(&handler.TransactionHandler{Ledger: ledgerSvc, Repo: store}).Register(engine)
	(&handler.PortfolioHandler{Ledger: ledgerSvc}).Register(engine)
	(&handler.PerformanceHandler{History: histStore, Repo: store}).Register(engine)
	(&handler.AlertHandler{History: histStore, Alerts: cfg.Alerts}).Register(engine)
	(&handler.ExportHandler{Tracker: trackerSvc}).Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fatalCycle := make(chan struct{}, 1)
	runCycle := func(ctx context.Context) {
		_, err := trackerSvc.RunCycle(ctx)
		if err == nil {
			return
		}
		if errors.Is(err, tracker.ErrCyclePanic) {
			select {
			case fatalCycle <- struct{}{}:
			default:
			}
			return
		}
		log.Warn("cycle failed, retrying next interval", zap.Error(err))
	}

	interval := cfg.UpdateInterval()
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	cronRunner := cronrunner.New(log, ctx)
	if _, err := cronRunner.Add("poll cycle", "@every "+interval.String(), runCycle); err != nil {
		log.Warn("cron register poll cycle failed", zap.Error(err))
	}
	if cfg.Export.AutoExportEnabled {
		_, err := cronRunner.Add("auto export", "@every "+cfg.Export.Interval().String(), func(context.Context) {
			if _, err := trackerSvc.ExportLatest(); err != nil {
				log.Warn("auto export failed", zap.Error(err))
			}
		})
		if err != nil {
			log.Warn("cron register auto export failed", zap.Error(err))
		}
	}
	cronRunner.Start()

	// First report right away rather than one interval in.
	runCycle(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	case <-fatalCycle:
		log.Error("unexpected cycle failure, saving state and exiting")
	}
	stop()

	cronRunner.Stop(5 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if err := ledgerSvc.Flush(shutdownCtx); err != nil {
		log.Error("final ledger flush failed", zap.Error(err))
	}
	if histStore.Len() > 0 {
		if path, err := trackerSvc.ExportLatest(); err != nil {
			log.Warn("final export failed", zap.Error(err))
		} else {
			log.Info("final performance data exported", zap.String("path", path))
		}
	}
	log.Info("portfolio tracker stopped", zap.Int("snapshots", histStore.Len()))
}

// openStore opens the configured SQLite file. A file that cannot be
// opened or migrated falls back to an in-memory store: the session
// still runs, it just will not survive a restart.
func openStore(log *zap.Logger, cfg config.DBConfig) *db.DB {
	dbConn, err := db.Open(cfg)
	if err == nil {
		err = db.AutoMigrate(dbConn)
		if err == nil {
			return dbConn
		}
		_ = db.Close(dbConn)
	}
	log.Warn("local store unusable, falling back to in-memory",
		zap.String("path", cfg.Path), zap.Error(err))

	dbConn, err = db.Open(config.DBConfig{Path: ":memory:"})
	if err != nil {
		log.Fatal("in-memory store open failed", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		log.Fatal("in-memory store migrate failed", zap.Error(err))
	}
	return dbConn
}
