package syncer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/osonapteka/backoffice/internal/database/cursor"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	"github.com/osonapteka/backoffice/internal/entities"
	"github.com/osonapteka/backoffice/internal/osonkassa"
)

const remainsPath = "/report/inventory/remains"

// InventoryResult summarizes one inventory reconciliation run.
type InventoryResult struct {
	Updated  int64         `json:"updated"`
	Deleted  int64         `json:"deleted"`
	Total    int64         `json:"total"`
	Expected int           `json:"expected"`
	Duration time.Duration `json:"duration"`
}

// InventoryReconciler replaces the local inventory snapshot with the remote
// remains listing. The remote endpoint has no reliable change-since filter
// and no soft-delete signal, so wholesale replacement is the only way to
// reflect removals.
type InventoryReconciler struct {
	client  *osonkassa.Client
	repo    *inventory.Repository
	cursors *cursor.Repository

	pageSize    int
	parallel    int
	insertBatch int
	stop        func() bool
}

// NewInventoryReconciler creates an inventory reconciler. stop may be nil.
func NewInventoryReconciler(client *osonkassa.Client, repo *inventory.Repository, cursors *cursor.Repository, pageSize, parallel, insertBatch int, stop func() bool) *InventoryReconciler {
	return &InventoryReconciler{
		client:      client,
		repo:        repo,
		cursors:     cursors,
		pageSize:    pageSize,
		parallel:    parallel,
		insertBatch: insertBatch,
		stop:        stop,
	}
}

// Sync performs one full-snapshot replacement run.
func (r *InventoryReconciler) Sync(ctx context.Context) (*InventoryResult, error) {
	start := time.Now()
	log.Printf("Inventory sync: starting full snapshot replacement")

	totalCount, err := osonkassa.ProbeTotal(ctx, r.client, remainsPath, osonkassa.NewRemainsRequest(1, 1))
	if err != nil {
		return nil, fmt.Errorf("inventory probe failed: %w", err)
	}
	log.Printf("Inventory sync: remote reports %d rows", totalCount)

	deleted, err := r.repo.DeleteAll()
	if err != nil {
		return nil, fmt.Errorf("failed to clear inventory: %w", err)
	}
	log.Printf("Inventory sync: deleted %d stale rows", deleted)

	if totalCount == 0 {
		log.Printf("Inventory sync: remote is empty, nothing to fetch")
		result := &InventoryResult{Deleted: deleted, Duration: time.Since(start)}
		return result, r.cursors.SaveInventoryProgress(1, 0, 0, true)
	}

	fetched := osonkassa.FetchPages[osonkassa.RemainsItem](
		ctx, r.client, remainsPath,
		func(page, size int) any { return osonkassa.NewRemainsRequest(page, size) },
		totalCount, r.pageSize, r.parallel, r.stop,
	)
	log.Printf("Inventory sync: fetched %d unique rows (%d duplicates, %d failed pages)",
		len(fetched.Items), fetched.Duplicates, fetched.FailedPages)

	now := time.Now()
	batch := make([]entities.InventoryRecord, 0, len(fetched.Items))
	for _, item := range fetched.Items {
		batch = append(batch, convertRemains(item, now))
	}
	inserted := r.repo.InsertBatches(batch, r.insertBatch)

	finalCount, err := r.repo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to recount inventory: %w", err)
	}
	if finalCount != int64(len(batch)) {
		log.Printf("Inventory sync: WARNING count mismatch, expected %d rows but stored %d", len(batch), finalCount)
	}

	if err := r.cursors.SaveInventoryProgress(fetched.TotalPages, fetched.TotalPages, len(batch), !fetched.Stopped && fetched.FailedPages == 0); err != nil {
		log.Printf("Inventory sync: failed to save cursor: %v", err)
	}

	result := &InventoryResult{
		Updated:  inserted,
		Deleted:  deleted,
		Total:    finalCount,
		Expected: len(batch),
		Duration: time.Since(start),
	}
	log.Printf("Inventory sync: done in %v (inserted %d, final count %d)", result.Duration.Round(time.Millisecond), inserted, finalCount)
	return result, nil
}
