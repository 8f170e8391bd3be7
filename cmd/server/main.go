package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/config"
	"github.com/mbodji/fueltrack/internal/repository/mongodb"
	"github.com/mbodji/fueltrack/internal/repository/sheets"
	"github.com/mbodji/fueltrack/internal/scheduler"
	"github.com/mbodji/fueltrack/internal/server/handlers"
	"github.com/mbodji/fueltrack/internal/server/router"
	"github.com/mbodji/fueltrack/internal/service/analysis"
	backupsvc "github.com/mbodji/fueltrack/internal/service/backup"
	logbooksvc "github.com/mbodji/fueltrack/internal/service/logbook"
	reportingsvc "github.com/mbodji/fueltrack/internal/service/reporting"
	usagesvc "github.com/mbodji/fueltrack/internal/service/usage"
	"github.com/mbodji/fueltrack/pkg/clients/gemini"
	"github.com/mbodji/fueltrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	tracker := usagesvc.NewTracker(store, baseLogger.Named("svc.usage"))

	estimators := map[string]analysis.Estimator{
		"gemini": gemini.NewClient(),
	}
	analysisSvc := analysis.NewService(store, tracker, estimators, baseLogger.Named("svc.analysis"))
	logbookSvc := logbooksvc.NewService(store, baseLogger.Named("svc.logbook"))
	backupSvc := backupsvc.NewService(store, baseLogger.Named("svc.backup"))

	apiHandler := handlers.NewAPIHandler(analysisSvc, logbookSvc, backupSvc, tracker, store, baseLogger.Named("handlers.api"))
	engine := router.New(apiHandler, baseLogger.Named("router"))

	// The sheets export is optional; without credentials the scheduler stays off.
	var sched *scheduler.Scheduler
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}

		reportingSvc := reportingsvc.NewService(sheetsRepo, store, baseLogger.Named("svc.reporting"))
		sched = scheduler.NewScheduler(cfg.Summary, reportingSvc, baseLogger.Named("scheduler"))
		sched.Start()
		defer sched.Stop()
	} else {
		baseLogger.Info("sheets credentials missing, daily summary export disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
