package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrlokans/storyhub/internal/config"
	http_controllers "github.com/mrlokans/storyhub/internal/http"
	"github.com/mrlokans/storyhub/internal/scheduler"
	"github.com/mrlokans/storyhub/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting StoryHub v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if n, err := app.RegisterSources(cfg.Sources.Dir); err != nil {
		log.Printf("WARNING: Failed to register sources from %s: %v", cfg.Sources.Dir, err)
	} else {
		log.Printf("Registered %d sources from %s", n, cfg.Sources.Dir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var queue scheduler.TaskQueue
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Tasks.DatabasePath, cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		var pruner tasks.EnvelopePruner
		if app.Auditor != nil {
			pruner = app.Auditor
		}
		taskClient.Register(
			tasks.NewSyncCategoriesQueue(app.Sources),
			tasks.NewSyncAllCategoriesQueue(app.Sources, app.Settings),
			tasks.NewCleanupAuditEventsQueue(app.AuditLog, pruner),
			tasks.NewCleanupOrphanFilesQueue(app.Files, app.EbookStore),
		)
		go taskClient.Start(ctx)
		queue = taskClient
	}

	syncScheduler := scheduler.NewCategorySyncScheduler(app.Sources, app.Settings, queue)
	if err := syncScheduler.Start(ctx); err != nil {
		log.Printf("WARNING: Category sync scheduler not started: %v", err)
	}

	var maintenance *scheduler.MaintenanceScheduler
	if queue != nil {
		retentionDays := cfg.Audit.RetentionDays
		maintenance = scheduler.NewMaintenanceScheduler(queue, scheduler.DefaultMaintenanceSchedule, func() []backlite.Task {
			return []backlite.Task{
				tasks.CleanupAuditEventsTask{RetentionDays: retentionDays},
				tasks.CleanupOrphanFilesTask{},
			}
		})
		if err := maintenance.Start(ctx); err != nil {
			log.Printf("WARNING: Maintenance scheduler not started: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       app.DB,
		Sources:        app.Sources,
		Categories:     app.Sources,
		Taxonomy:       &app.Taxonomy,
		Ebooks:         app.EbookImports,
		EbookReader:    app.EbookStore,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		AuditLog:       app.AuditLog,
		SyncSettings:   app.Settings,
		SyncScheduler:  syncScheduler,
		TaskClient:     taskClient,
		TaskWorkers:    cfg.Tasks.Workers,
		ReadOnly:       cfg.HTTP.ReadOnly,
		Version:        version,
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = app.Metrics
		routerCfg.Gatherer = prometheus.Gatherer(app.Registry)
	}

	if cfg.HTTP.ReadOnly {
		log.Printf("Read-only mode enabled: write requests will be rejected")
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		syncScheduler.Stop()
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		cancel()
	}

	Serve(router, cfg, onShutdown)
}
