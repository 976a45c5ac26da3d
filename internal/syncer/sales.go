package syncer

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/osonapteka/backoffice/internal/database/cursor"
	salesdb "github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/entities"
	"github.com/osonapteka/backoffice/internal/notify"
	"github.com/osonapteka/backoffice/internal/osonkassa"
)

const salesPath = "/pos/sales/get"

var dateFormat = regexp.MustCompile(`^\d{4}[-.]\d{2}[-.]\d{2}$`)

// ErrInvalidDate is returned when a caller-supplied date does not match the
// YYYY-MM-DD form. Validation happens before any remote request.
type ErrInvalidDate struct {
	Value string
}

func (e *ErrInvalidDate) Error() string {
	return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", e.Value)
}

// ResolveDate normalizes a caller-supplied sync date, accepting dots as
// separators, and defaults to today when empty.
func ResolveDate(custom string) (string, error) {
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if !dateFormat.MatchString(custom) {
		return "", &ErrInvalidDate{Value: custom}
	}
	normalized := strings.ReplaceAll(custom, ".", "-")
	if _, err := time.Parse("2006-01-02", normalized); err != nil {
		return "", &ErrInvalidDate{Value: custom}
	}
	return normalized, nil
}

// SalesResult summarizes one sales reconciliation run.
type SalesResult struct {
	Date         string        `json:"date"`
	TotalFetched int           `json:"total_fetched"`
	Updated      int64         `json:"updated"`
	HeaderOnly   int           `json:"header_only"`
	ItemsFetched int           `json:"items_fetched"`
	Duration     time.Duration `json:"duration"`
}

// SalesReconciler incrementally upserts remote sales for one date. Headers
// are refreshed on every run; line items are fetched per sale only when
// missing or older than the staleness window, to bound API calls.
type SalesReconciler struct {
	client     *osonkassa.Client
	repo       *salesdb.Repository
	cursors    *cursor.Repository
	dispatcher *notify.Dispatcher

	pageSize   int
	parallel   int
	itemsBatch int
	itemsDelay time.Duration
	staleness  time.Duration
	stop       func() bool
}

// NewSalesReconciler creates a sales reconciler. dispatcher and stop may be
// nil.
func NewSalesReconciler(client *osonkassa.Client, repo *salesdb.Repository, cursors *cursor.Repository, dispatcher *notify.Dispatcher, pageSize, parallel, itemsBatch int, itemsDelay, staleness time.Duration, stop func() bool) *SalesReconciler {
	return &SalesReconciler{
		client:     client,
		repo:       repo,
		cursors:    cursors,
		dispatcher: dispatcher,
		pageSize:   pageSize,
		parallel:   parallel,
		itemsBatch: itemsBatch,
		itemsDelay: itemsDelay,
		staleness:  staleness,
		stop:       stop,
	}
}

// Sync performs one per-date sales run. customDate may be empty for today.
func (r *SalesReconciler) Sync(ctx context.Context, customDate string) (*SalesResult, error) {
	date, err := ResolveDate(customDate)
	if err != nil {
		log.Printf("Sales sync: rejected date parameter: %v", err)
		return nil, err
	}

	start := time.Now()
	log.Printf("Sales sync: starting for %s", date)

	fetched, err := osonkassa.FetchAllPages[osonkassa.SaleHeader](
		ctx, r.client, salesPath,
		func(page, size int) any { return osonkassa.NewSalesRequest(date, page, size) },
		r.pageSize, r.parallel, r.stop,
	)
	if err != nil {
		return nil, fmt.Errorf("sales fetch for %s failed: %w", date, err)
	}

	result := &SalesResult{Date: date, TotalFetched: len(fetched.Items)}
	if fetched.TotalCount == 0 {
		log.Printf("Sales sync: no sales for %s", date)
		result.Duration = time.Since(start)
		return result, r.cursors.SaveSalesProgress(date, 1, 0, 0, true)
	}

	ids := make([]string, 0, len(fetched.Items))
	for _, header := range fetched.Items {
		ids = append(ids, header.ID)
	}
	meta, err := r.repo.GetHeaderMeta(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale metadata: %w", err)
	}

	// Partition into sales whose items must be (re)fetched and sales that
	// only need a header refresh.
	var needsItems, headerOnly []osonkassa.SaleHeader
	for _, header := range fetched.Items {
		existing, known := meta[header.ID]
		if !known {
			needsItems = append(needsItems, header)
			r.publish(notify.KindNewSale, header)
			continue
		}
		if itemsStale(existing, r.staleness) {
			needsItems = append(needsItems, header)
		} else {
			headerOnly = append(headerOnly, header)
		}
	}
	log.Printf("Sales sync: %d need items, %d header-only", len(needsItems), len(headerOnly))

	now := time.Now()
	updated, err := r.refreshHeaders(headerOnly, meta, now)
	if err != nil {
		log.Printf("Sales sync: header refresh failed: %v", err)
	}
	result.Updated += updated
	result.HeaderOnly = len(headerOnly)

	withItems, itemsFetched := r.syncItems(ctx, needsItems)
	result.Updated += withItems
	result.ItemsFetched = itemsFetched

	complete := !fetched.Stopped && fetched.FailedPages == 0
	if err := r.cursors.SaveSalesProgress(date, fetched.TotalPages, fetched.TotalPages, len(fetched.Items), complete); err != nil {
		log.Printf("Sales sync: failed to save cursor: %v", err)
	}

	result.Duration = time.Since(start)
	log.Printf("Sales sync: done for %s in %v (%d updated, %d with items)",
		date, result.Duration.Round(time.Millisecond), result.Updated, itemsFetched)
	return result, nil
}

// itemsStale reports whether a stored sale's line items are due for a
// re-fetch.
func itemsStale(existing salesdb.HeaderMeta, staleness time.Duration) bool {
	if !existing.HasItems || existing.ItemsLastUpdated == nil {
		return true
	}
	return time.Since(*existing.ItemsLastUpdated) > staleness
}

// refreshHeaders bulk-upserts header fields, skipping records whose content
// hash is unchanged so identical data is never rewritten.
func (r *SalesReconciler) refreshHeaders(headers []osonkassa.SaleHeader, meta map[string]salesdb.HeaderMeta, now time.Time) (int64, error) {
	if len(headers) == 0 {
		return 0, nil
	}

	batch := make([]entities.SaleRecord, 0, len(headers))
	skipped := 0
	for _, header := range headers {
		if existing, known := meta[header.ID]; known && existing.DataHash == SaleHash(header) {
			skipped++
			continue
		}
		batch = append(batch, convertSaleHeader(header, now))
	}
	if skipped > 0 {
		log.Printf("Sales sync: %d headers unchanged, skipping writes", skipped)
	}

	return r.repo.BulkUpsertHeaders(batch, 500)
}

// syncItems fetches line items per sale in small concurrent batches with a
// short delay between batches, an explicit backpressure mechanism toward the
// remote API. A sale whose item fetch fails is still persisted header-only
// so one bad record never blocks the batch.
func (r *SalesReconciler) syncItems(ctx context.Context, headers []osonkassa.SaleHeader) (updated int64, itemsFetched int) {
	for start := 0; start < len(headers); start += r.itemsBatch {
		if r.stop != nil && r.stop() {
			log.Printf("Sales sync: stop requested, aborting item fetches at %d/%d", start, len(headers))
			return updated, itemsFetched
		}

		end := start + r.itemsBatch
		if end > len(headers) {
			end = len(headers)
		}

		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, header := range headers[start:end] {
			wg.Add(1)
			go func(header osonkassa.SaleHeader) {
				defer wg.Done()

				items, err := r.client.FetchSaleItems(ctx, header.ID)
				if err != nil {
					// Degrade to header-only persistence.
					log.Printf("Sales sync: items for sale %d failed, keeping header only: %v", header.Number, err)
					items = nil
				}

				now := time.Now()
				record := convertSaleHeader(header, now)
				record.Items = convertSaleItems(items)
				record.HasItems = len(record.Items) > 0
				record.ItemsLastUpdated = &now

				if err := r.repo.UpsertWithItems(&record); err != nil {
					log.Printf("Sales sync: failed to save sale %d: %v", header.Number, err)
					return
				}

				mu.Lock()
				updated++
				if record.HasItems {
					itemsFetched++
				}
				mu.Unlock()

				if record.HasItems {
					r.publish(notify.KindSaleItems, header)
				}
			}(header)
		}
		wg.Wait()

		if end < len(headers) && r.itemsDelay > 0 {
			select {
			case <-ctx.Done():
				return updated, itemsFetched
			case <-time.After(r.itemsDelay):
			}
		}
	}
	return updated, itemsFetched
}

func (r *SalesReconciler) publish(kind notify.Kind, header osonkassa.SaleHeader) {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Publish(notify.Event{
		Kind:       kind,
		ExternalID: header.ID,
		DoctorCode: header.Notes,
		Summary:    fmt.Sprintf("sale #%d for %.0f", header.Number, header.SaleAmount),
	})
}
