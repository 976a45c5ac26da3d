package osonkassa

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Keyed is implemented by paged items that carry a remote unique id. The
// fetcher deduplicates on it because the POS API has been observed to return
// the same record on two different pages.
type Keyed interface {
	Key() string
}

// FetchResult is the outcome of a full paged fetch. FailedPages counts pages
// absorbed by partial-failure tolerance; the items of every page that did
// succeed are always present.
type FetchResult[T Keyed] struct {
	Items       []T
	TotalCount  int
	TotalPages  int
	Duplicates  int
	FailedPages int
	Stopped     bool
}

// ProbeTotal learns how many records a paged resource currently holds by
// requesting a single-item page.
func ProbeTotal(ctx context.Context, c *Client, path string, body any) (int, error) {
	var probe pageEnvelope[json.RawMessage]
	if err := c.post(ctx, path, body, &probe, probeTimeout); err != nil {
		return 0, err
	}
	return probe.Page.TotalCount, nil
}

// FetchAllPages retrieves every page of a paged POS resource: a pageSize=1
// probe learns the total count, then FetchPages pulls the pages.
func FetchAllPages[T Keyed](ctx context.Context, c *Client, path string, makeBody func(pageNumber, pageSize int) any, pageSize, parallel int, stop func() bool) (*FetchResult[T], error) {
	totalCount, err := ProbeTotal(ctx, c, path, makeBody(1, 1))
	if err != nil {
		return nil, err
	}
	return FetchPages[T](ctx, c, path, makeBody, totalCount, pageSize, parallel, stop), nil
}

// FetchPages retrieves all pages of a resource whose total count is already
// known.
//
// Page requests go out in parallel batches of the given width so the remote
// rate limits are respected; each carries its own timeout. A page that fails
// is logged and skipped, it never aborts sibling pages or the fetch as a
// whole. Items are deduplicated by Key with last-write-wins in page order.
// The optional stop callback is checked between batches; a requested stop
// ends the fetch early with the pages gathered so far.
func FetchPages[T Keyed](ctx context.Context, c *Client, path string, makeBody func(pageNumber, pageSize int) any, totalCount, pageSize, parallel int, stop func() bool) *FetchResult[T] {
	result := &FetchResult[T]{TotalCount: totalCount}
	if totalCount == 0 {
		return result
	}

	result.TotalPages = (totalCount + pageSize - 1) / pageSize
	pages := make([][]T, result.TotalPages)
	failed := make([]bool, result.TotalPages)

	for start := 0; start < result.TotalPages; start += parallel {
		if stop != nil && stop() {
			log.Printf("OsonKassa: stop requested, aborting fetch of %s at page %d/%d", path, start, result.TotalPages)
			result.Stopped = true
			break
		}

		end := start + parallel
		if end > result.TotalPages {
			end = result.TotalPages
		}

		var wg sync.WaitGroup
		for page := start; page < end; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				var env pageEnvelope[T]
				if err := c.post(ctx, path, makeBody(page+1, pageSize), &env, pageTimeout); err != nil {
					log.Printf("OsonKassa: page %d/%d of %s failed, skipping: %v", page+1, result.TotalPages, path, err)
					failed[page] = true
					return
				}
				pages[page] = env.Page.Items
			}(page)
		}
		wg.Wait()
	}

	// Dedupe by remote id, last page wins.
	index := make(map[string]int)
	for page, pageItems := range pages {
		if failed[page] {
			result.FailedPages++
			continue
		}
		for _, item := range pageItems {
			if at, seen := index[item.Key()]; seen {
				result.Items[at] = item
				result.Duplicates++
				continue
			}
			index[item.Key()] = len(result.Items)
			result.Items = append(result.Items, item)
		}
	}

	if result.Duplicates > 0 {
		log.Printf("OsonKassa: removed %d duplicate items from %s", result.Duplicates, path)
	}
	return result
}
