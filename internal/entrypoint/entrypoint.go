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

	"github.com/gurkhatech/bundlepress/internal/config"
	"github.com/gurkhatech/bundlepress/internal/database"
	http_controllers "github.com/gurkhatech/bundlepress/internal/http"
	"github.com/gurkhatech/bundlepress/internal/importer"
	"github.com/gurkhatech/bundlepress/internal/media"
	"github.com/gurkhatech/bundlepress/internal/scheduler"
	"github.com/gurkhatech/bundlepress/internal/scratch"
	"github.com/gurkhatech/bundlepress/internal/tasks"
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
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting BundlePress v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Scratch storage for bundle extraction
	scratchStore, err := scratch.NewStore(cfg.Scratch.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize scratch storage: %v", err)
	}

	// Media library for image uploads
	library, err := media.NewLibrary(cfg.Media.BaseDir, cfg.Media.BaseURL, db)
	if err != nil {
		log.Fatalf("Failed to initialize media library: %v", err)
	}

	// Publish scheduler
	publishScheduler := scheduler.NewPublishScheduler(db, cfg.Scheduler.Serialized)
	if cfg.Scheduler.Serialized {
		log.Printf("Publish scheduler: serialized slot picking enabled")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewAttachmentMetadataQueue(library),
			tasks.NewCleanupImportLogsQueue(db),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Sweeper for orphaned scratch dirs and expired import logs
	sweeper := scheduler.NewSweeper(scratchStore, taskClient, cfg.Scratch.SweepSchedule, cfg.Scratch.MaxAge, cfg.Import.LogRetention)
	if err := sweeper.Start(); err != nil {
		log.Printf("WARNING: Failed to start scratch sweeper: %v", err)
	}

	bundleImporter := importer.New(scratchStore, db, library, publishScheduler, taskClient)

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Importer:      bundleImporter,
		PostStore:     db,
		Database:      db,
		MaxUploadSize: cfg.Import.MaxUploadSize,
		MediaBaseURL:  cfg.Media.BaseURL,
		MediaBaseDir:  cfg.Media.BaseDir,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		sweeper.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
