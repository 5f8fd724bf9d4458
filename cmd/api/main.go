package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"setores/cmd/internal/admin"
	"setores/cmd/internal/config"
	"setores/cmd/internal/domain/directory"
	"setores/cmd/internal/domain/loader"
	"setores/cmd/internal/domain/sqlite"
	"setores/cmd/internal/domain/sqlite/repository"
	"setores/cmd/internal/http/handler"
	"setores/cmd/internal/infrastructure/aws/storage"
	"setores/cmd/internal/infrastructure/metrics"
	"setores/cmd/internal/infrastructure/overrides"
	"setores/cmd/internal/routes"
	"setores/cmd/internal/service"
	"setores/cmd/internal/service/jobs"
	"setores/cmd/internal/utils/uid"
	"setores/cmd/internal/utils/validators"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads env vars depending on environment
	if err := config.LoadEnv(ctx); err != nil {
		log.Fatalf("unable to load environment: %v", err)
	}
	cfg := config.Load()
	if cfg.Development() {
		log.SetLevel(log.DEBUG)
	}

	if err := uid.Init(1); err != nil {
		log.Fatalf("unable to init id generator: %v", err)
	}

	validate := validators.New()
	m := metrics.New()

	// Override persistence, optionally mirrored to S3
	var mirror overrides.Mirror
	if cfg.BackupsS3Bucket != "" {
		s3Client, err := storage.NewStorageClient(ctx, cfg.BackupsS3Bucket, cfg.BackupsS3Region, cfg.BackupsS3Prefix)
		if err != nil {
			log.Warnf("S3 backup mirror disabled: %v", err)
		} else {
			mirror = s3Client
		}
	}
	persister := overrides.NewPersister(cfg.AssetsDir, overrides.Options{
		MaxBackups:    cfg.BackupsMax,
		RetentionDays: cfg.BackupsRetentionDays,
		Mirror:        mirror,
		OnPersist:     m.PersistResult,
	})

	// Directory
	store := directory.New(directory.WithSink(persister))
	m.TrackRecords(store.Len)
	loaded := loader.New(cfg.AssetsDir, cfg.DataFile, persister).Load(store)
	log.Infof("Directory ready: %d setores, %d override(s)", store.Len(), loaded.Overrides)

	// Change log
	var changeRepo *repository.DefaultChangeLogRepository
	var changes service.ChangeLogRepository
	if cfg.ChangeLogEnabled() {
		db, err := sqlite.Init(cfg.ChangeLogDB)
		if err != nil {
			log.Warnf("change log disabled: %v", err)
		} else {
			defer func() { _ = sqlite.Close(db) }()
			changeRepo = repository.NewChangeLogRepository(db)
			changes = changeRepo
		}
	}

	// Admin gate
	gate := admin.NewGate(admin.GateConfig{
		Secret:      cfg.MasterPassword,
		Window:      cfg.UnlockWindow,
		Development: cfg.Development(),
	})
	if gate.Disabled() {
		log.Warnf("MASTER_PASSWORD is unset or the default one, admin operations are disabled")
	}
	limiter := admin.NewAttemptLimiter(cfg.UnlockMaxAttempts, cfg.UnlockAttemptWindow, nil)

	// Getting services
	setorService := service.NewSetorService(store, changes, m, validate)
	adminService := service.NewAdminService(gate, limiter, m)
	metaService := service.NewMetaService(store, persister, service.MetaConfig{
		Version:      cfg.AppVersion,
		Env:          cfg.Env,
		ReleaseNotes: cfg.ReleaseNotes,
		ChangeLog:    changes != nil,
	})
	metaService.MarkReady()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("10M"))
	e.Use(m.Middleware())

	routes.Register(e, &routes.Handlers{
		Setores: handler.NewSetorDefault(setorService),
		Admin:   handler.NewAdminDefault(adminService),
		Meta:    handler.NewMetaDefault(metaService),
		Gate:    adminService,
		Metrics: m.Handler(),
	})

	// Crons
	go jobs.NewBackupPruner(persister).Start(ctx)
	go jobs.NewAttemptSweeper(limiter).Start(ctx)
	if changeRepo != nil {
		go jobs.NewChangeLogCompactor(changeRepo, cfg.ChangeLogRetentionDays).Start(ctx)
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down server: %v", err)
	}
	persister.Wait()
}
