package syncer

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osonapteka/backoffice/internal/audit"
	"github.com/osonapteka/backoffice/internal/database/cursor"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	salesdb "github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/entities"
	"github.com/osonapteka/backoffice/internal/notify"
	"github.com/osonapteka/backoffice/internal/osonkassa"
)

// Stats carries the per-resource counters of the current or last run.
type Stats struct {
	RemainsUpdated int64 `json:"remains_updated"`
	RemainsDeleted int64 `json:"remains_deleted"`
	SalesUpdated   int64 `json:"sales_updated"`
	ItemsFetched   int   `json:"items_fetched"`
}

// Status is the in-memory run status. Single writer (the engine), read by
// the status endpoints; Status() hands out copies.
type Status struct {
	IsRunning   bool       `json:"is_running"`
	CurrentTask string     `json:"current_task,omitempty"`
	Progress    int        `json:"progress"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
	Errors      []string   `json:"errors"`
	Stats       Stats      `json:"stats"`
}

// FullSyncResult is the outcome of one orchestrated run.
type FullSyncResult struct {
	Success   bool             `json:"success"`
	Duration  time.Duration    `json:"duration"`
	Inventory *InventoryResult `json:"inventory,omitempty"`
	Sales     *SalesResult     `json:"sales,omitempty"`
	Errors    []string         `json:"errors,omitempty"`
}

// Config holds the engine tunables.
type Config struct {
	PageSizeInventory int
	PageSizeSales     int
	ParallelPages     int
	InsertBatchSize   int
	ItemsBatchSize    int
	ItemsBatchDelay   time.Duration
	ItemsStaleness    time.Duration
}

// Engine orchestrates the two reconcilers. At most one full sync runs at a
// time; a trigger while running is a logged no-op, never queued.
type Engine struct {
	session   *osonkassa.Session
	inventory *InventoryReconciler
	sales     *SalesReconciler
	invRepo   *inventory.Repository
	salesRepo *salesdb.Repository
	cursors   *cursor.Repository

	dispatcher *notify.Dispatcher
	auditor    *audit.Service

	mu      sync.Mutex
	status  Status
	stopped atomic.Bool
}

// NewEngine wires the reconcilers to the shared session, repositories and
// notification dispatcher.
func NewEngine(session *osonkassa.Session, client *osonkassa.Client, invRepo *inventory.Repository, salesRepo *salesdb.Repository, cursors *cursor.Repository, dispatcher *notify.Dispatcher, cfg Config) *Engine {
	e := &Engine{
		session:    session,
		invRepo:    invRepo,
		salesRepo:  salesRepo,
		cursors:    cursors,
		dispatcher: dispatcher,
	}
	e.inventory = NewInventoryReconciler(client, invRepo, cursors,
		cfg.PageSizeInventory, cfg.ParallelPages, cfg.InsertBatchSize, e.stopRequested)
	e.sales = NewSalesReconciler(client, salesRepo, cursors, dispatcher,
		cfg.PageSizeSales, cfg.ParallelPages, cfg.ItemsBatchSize,
		cfg.ItemsBatchDelay, cfg.ItemsStaleness, e.stopRequested)
	return e
}

// SetAuditor enables run history recording. Optional; a nil auditor means
// runs are not persisted.
func (e *Engine) SetAuditor(auditor *audit.Service) {
	e.auditor = auditor
}

// RunFullSync runs inventory and sales reconciliation concurrently and waits
// for both regardless of individual failure. customDate may be empty for
// today; a malformed date is rejected before any remote request. trigger
// labels the run in the history ("schedule", "manual", "cli").
func (e *Engine) RunFullSync(ctx context.Context, customDate, trigger string) *FullSyncResult {
	date, err := ResolveDate(customDate)
	if err != nil {
		log.Printf("Full sync: %v", err)
		return &FullSyncResult{Errors: []string{err.Error()}}
	}

	if !e.begin("full sync") {
		return nil
	}
	defer e.finalize()

	start := time.Now()
	result := &FullSyncResult{}

	e.setTask("login", 5)
	if _, err := e.session.Ensure(ctx); err != nil {
		e.recordError(fmt.Sprintf("login failed: %v", err))
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		e.recordRun(entities.SyncRunFull, trigger, date, result)
		return result
	}
	e.setTask("synchronizing", 10)

	// Independent resources, no ordering dependency: both run to
	// completion even when the sibling fails.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res, err := e.sales.Sync(ctx, customDate)
		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			e.status.Errors = append(e.status.Errors, fmt.Sprintf("sales: %v", err))
			result.Errors = append(result.Errors, err.Error())
			return
		}
		result.Sales = res
		e.status.Stats.SalesUpdated = res.Updated
		e.status.Stats.ItemsFetched = res.ItemsFetched
	}()
	go func() {
		defer wg.Done()
		res, err := e.inventory.Sync(ctx)
		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			e.status.Errors = append(e.status.Errors, fmt.Sprintf("inventory: %v", err))
			result.Errors = append(result.Errors, err.Error())
			return
		}
		result.Inventory = res
		e.status.Stats.RemainsUpdated = res.Updated
		e.status.Stats.RemainsDeleted = res.Deleted
	}()
	wg.Wait()

	e.setTask("finishing", 90)
	result.Success = len(result.Errors) == 0
	result.Duration = time.Since(start)

	now := time.Now()
	e.mu.Lock()
	e.status.LastUpdate = &now
	e.status.Progress = 100
	e.mu.Unlock()

	log.Printf("Full sync: finished in %v (success=%v)", result.Duration.Round(time.Millisecond), result.Success)
	e.recordRun(entities.SyncRunFull, trigger, date, result)
	return result
}

// RunSalesOnly re-syncs sales for one date without touching inventory.
func (e *Engine) RunSalesOnly(ctx context.Context, customDate, trigger string) *FullSyncResult {
	date, err := ResolveDate(customDate)
	if err != nil {
		log.Printf("Sales sync: %v", err)
		return &FullSyncResult{Errors: []string{err.Error()}}
	}

	if !e.begin("sales sync") {
		return nil
	}
	defer e.finalize()

	start := time.Now()
	result := &FullSyncResult{}

	if _, err := e.session.Ensure(ctx); err != nil {
		e.recordError(fmt.Sprintf("login failed: %v", err))
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		return result
	}

	res, err := e.sales.Sync(ctx, customDate)
	if err != nil {
		e.recordError(fmt.Sprintf("sales: %v", err))
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Sales = res
		e.mu.Lock()
		e.status.Stats.SalesUpdated = res.Updated
		e.status.Stats.ItemsFetched = res.ItemsFetched
		e.mu.Unlock()
	}

	result.Success = len(result.Errors) == 0
	result.Duration = time.Since(start)
	e.recordRun(entities.SyncRunSalesOnly, trigger, date, result)
	return result
}

// Stop is advisory: it flips the run flag so the next checkpoint (next page
// batch, next item batch) exits early. In-flight requests are not aborted.
func (e *Engine) Stop() {
	e.stopped.Store(true)
	e.mu.Lock()
	e.status.IsRunning = false
	e.mu.Unlock()
	log.Printf("Sync engine: stop requested")
}

// Status returns a copy of the current run status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	status := e.status
	status.Errors = append([]string(nil), e.status.Errors...)
	return status
}

// ResetCursor drops the persisted pagination state of one resource.
func (e *Engine) ResetCursor(resourceType entities.ResourceType) error {
	return e.cursors.Reset(resourceType)
}

// PruneOldSales deletes sales older than the retention window. Part of the
// daily cleanup, never of a regular run.
func (e *Engine) PruneOldSales(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := e.salesRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, err
	}
	log.Printf("Retention: deleted %d sales older than %d days", deleted, retentionDays)
	return deleted, nil
}

// CheckLowStock publishes a low-stock event per product at or under the
// threshold. Delivery is the notifier's problem; failures never surface
// here.
func (e *Engine) CheckLowStock(threshold float64, limit int) error {
	records, err := e.invRepo.LowStock(threshold, limit)
	if err != nil {
		return err
	}
	for _, record := range records {
		e.dispatcher.Publish(notify.Event{
			Kind:       notify.KindLowStock,
			ExternalID: record.ExternalID,
			Summary:    fmt.Sprintf("%s: %.0f %s left", record.Product, record.Quantity, record.Unit),
		})
	}
	return nil
}

// InvalidateSession drops the cached POS credential so the next run logs in
// fresh. The hourly schedule uses this.
func (e *Engine) InvalidateSession() {
	e.session.Invalidate()
}

func (e *Engine) begin(task string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.IsRunning {
		log.Printf("Sync engine: %s skipped, another run is in progress", task)
		return false
	}
	e.status = Status{IsRunning: true, CurrentTask: task}
	e.stopped.Store(false)
	return true
}

// finalize always runs, success or failure, so a crashed run can never leave
// the engine marked as running.
func (e *Engine) finalize() {
	e.mu.Lock()
	e.status.IsRunning = false
	e.status.CurrentTask = ""
	e.mu.Unlock()
	debug.FreeOSMemory()
}

func (e *Engine) setTask(task string, progress int) {
	e.mu.Lock()
	e.status.CurrentTask = task
	e.status.Progress = progress
	e.mu.Unlock()
}

func (e *Engine) recordError(msg string) {
	e.mu.Lock()
	e.status.Errors = append(e.status.Errors, msg)
	e.mu.Unlock()
}

func (e *Engine) stopRequested() bool {
	return e.stopped.Load()
}

func (e *Engine) recordRun(runType entities.SyncRunType, trigger, date string, result *FullSyncResult) {
	if e.auditor == nil {
		return
	}
	var salesUpdated int64
	var itemsFetched int
	var remainsCount int64
	if result.Sales != nil {
		salesUpdated = result.Sales.Updated
		itemsFetched = result.Sales.ItemsFetched
	}
	if result.Inventory != nil {
		remainsCount = result.Inventory.Total
	}
	e.auditor.LogFullSync(runType, trigger, date, result.Success,
		result.Duration.Milliseconds(), salesUpdated, itemsFetched, remainsCount, result.Errors)
}
