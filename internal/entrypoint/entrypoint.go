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

	"github.com/osonapteka/backoffice/internal/audit"
	"github.com/osonapteka/backoffice/internal/config"
	"github.com/osonapteka/backoffice/internal/database"
	"github.com/osonapteka/backoffice/internal/database/cursor"
	"github.com/osonapteka/backoffice/internal/database/doctors"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	"github.com/osonapteka/backoffice/internal/database/messages"
	"github.com/osonapteka/backoffice/internal/database/runs"
	"github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/database/settings"
	"github.com/osonapteka/backoffice/internal/database/suppliers"
	http_controllers "github.com/osonapteka/backoffice/internal/http"
	"github.com/osonapteka/backoffice/internal/notify"
	"github.com/osonapteka/backoffice/internal/osonkassa"
	"github.com/osonapteka/backoffice/internal/scheduler"
	"github.com/osonapteka/backoffice/internal/settingsstore"
	"github.com/osonapteka/backoffice/internal/syncer"
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Oson Apteka back office v%s", version)

	if cfg.OsonKassa.Username == "" || cfg.OsonKassa.Password == "" {
		log.Printf("WARNING: OsonKassa credentials are not set. Sync will fail until 'OSONKASSA_USERNAME' and 'OSONKASSA_PASSWORD' are configured.")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	inventoryRepo := inventory.NewRepository(db.DB)
	salesRepo := sales.NewRepository(db.DB)
	cursorRepo := cursor.NewRepository(db.DB)
	doctorsRepo := doctors.NewRepository(db.DB)
	suppliersRepo := suppliers.NewRepository(db.DB)
	messagesRepo := messages.NewRepository(db.DB)
	runsRepo := runs.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)

	settingsStore := settingsstore.New(settingsRepo, cfg.Sync.LowStockThreshold)
	auditor := audit.NewService(runsRepo)

	// POS API client with a shared cached session
	session := osonkassa.NewSession(cfg.OsonKassa.BaseURL, cfg.OsonKassa.Username, cfg.OsonKassa.Password, cfg.OsonKassa.TenantID)
	client := osonkassa.NewClient(cfg.OsonKassa.BaseURL, session)

	// Notification boundary; the Telegram bot consumes these events
	dispatcher := notify.NewDispatcher(cfg.Notify.QueueSize, &notify.LogSink{})
	dispatcher.SetGate(settingsStore.GetNotificationsEnabled)
	dispatcher.Start()

	engine := syncer.NewEngine(session, client, inventoryRepo, salesRepo, cursorRepo, dispatcher, syncer.Config{
		PageSizeInventory: cfg.Sync.PageSizeInventory,
		PageSizeSales:     cfg.Sync.PageSizeSales,
		ParallelPages:     cfg.Sync.ParallelPages,
		InsertBatchSize:   cfg.Sync.InsertBatchSize,
		ItemsBatchSize:    cfg.Sync.ItemsBatchSize,
		ItemsBatchDelay:   cfg.Sync.ItemsBatchDelay,
		ItemsStaleness:    cfg.Sync.ItemsStaleness,
	})
	engine.SetAuditor(auditor)

	syncScheduler := scheduler.New(engine, settingsStore, auditor, scheduler.Config{
		Enabled:        cfg.Sync.Enabled,
		Schedule:       cfg.Sync.Schedule,
		HourlySchedule: cfg.Sync.HourlySchedule,
		DailySchedule:  cfg.Sync.DailySchedule,
		RetentionDays:  cfg.Sync.RetentionDays,
	})
	if err := syncScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start sync scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:  db,
		Engine:    engine,
		Inventory: inventoryRepo,
		Sales:     salesRepo,
		Cursors:   cursorRepo,
		Doctors:   doctorsRepo,
		Suppliers: suppliersRepo,
		Messages:  messagesRepo,
		Runs:      runsRepo,
		Settings:  settingsStore,
		Version:   version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		syncScheduler.Stop()
		engine.Stop()
		dispatcher.Stop()
	}

	Serve(router, cfg, onShutdown)
}
