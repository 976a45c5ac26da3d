package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/osonapteka/backoffice/internal/audit"
	"github.com/osonapteka/backoffice/internal/config"
	"github.com/osonapteka/backoffice/internal/database"
	"github.com/osonapteka/backoffice/internal/database/cursor"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	"github.com/osonapteka/backoffice/internal/database/runs"
	"github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/notify"
	"github.com/osonapteka/backoffice/internal/osonkassa"
	"github.com/osonapteka/backoffice/internal/syncer"
)

// SyncCommand runs a one-shot sync from the command line, without starting
// the HTTP server or the scheduler.
type SyncCommand struct {
	Date      string
	SalesOnly bool
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

// ParseFlags parses command line flags
func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.Date, "date", "", "Sales date to sync (YYYY-MM-DD, default today)")
	fs.BoolVar(&cmd.SalesOnly, "sales-only", false, "Sync sales only, skip inventory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run a one-shot sync against the OsonKassa POS API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -date 2024-03-15\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -sales-only\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the sync command
func (cmd *SyncCommand) Run() error {
	cfg := config.NewConfig()

	if cfg.OsonKassa.Username == "" || cfg.OsonKassa.Password == "" {
		return fmt.Errorf("OSONKASSA_USERNAME and OSONKASSA_PASSWORD must be set")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	session := osonkassa.NewSession(cfg.OsonKassa.BaseURL, cfg.OsonKassa.Username, cfg.OsonKassa.Password, cfg.OsonKassa.TenantID)
	client := osonkassa.NewClient(cfg.OsonKassa.BaseURL, session)

	dispatcher := notify.NewDispatcher(cfg.Notify.QueueSize, &notify.LogSink{})
	dispatcher.Start()
	defer dispatcher.Stop()

	auditor := audit.NewService(runs.NewRepository(db.DB))

	engine := syncer.NewEngine(session, client,
		inventory.NewRepository(db.DB),
		sales.NewRepository(db.DB),
		cursor.NewRepository(db.DB),
		dispatcher,
		syncer.Config{
			PageSizeInventory: cfg.Sync.PageSizeInventory,
			PageSizeSales:     cfg.Sync.PageSizeSales,
			ParallelPages:     cfg.Sync.ParallelPages,
			InsertBatchSize:   cfg.Sync.InsertBatchSize,
			ItemsBatchSize:    cfg.Sync.ItemsBatchSize,
			ItemsBatchDelay:   cfg.Sync.ItemsBatchDelay,
			ItemsStaleness:    cfg.Sync.ItemsStaleness,
		})
	engine.SetAuditor(auditor)

	var result *syncer.FullSyncResult
	if cmd.SalesOnly {
		result = engine.RunSalesOnly(context.Background(), cmd.Date, "cli")
	} else {
		result = engine.RunFullSync(context.Background(), cmd.Date, "cli")
	}
	if result == nil {
		return fmt.Errorf("sync did not start")
	}
	if !result.Success {
		return fmt.Errorf("sync finished with errors: %v", result.Errors)
	}

	fmt.Printf("Sync finished in %v\n", result.Duration)
	if result.Inventory != nil {
		fmt.Printf("  inventory: %d updated, %d deleted\n", result.Inventory.Updated, result.Inventory.Deleted)
	}
	if result.Sales != nil {
		fmt.Printf("  sales %s: %d updated, %d items fetched\n", result.Sales.Date, result.Sales.Updated, result.Sales.ItemsFetched)
	}
	return nil
}
