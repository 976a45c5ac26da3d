package osonkassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// Per-request timeouts mirror the remote API's observed latency per
	// endpoint: the items endpoint answers fast, full pages can be slow.
	probeTimeout = 10 * time.Second
	pageTimeout  = 20 * time.Second
	itemsTimeout = 8 * time.Second
)

// Client interfaces with the OsonKassa POS API. Every call carries the
// session's bearer token; a 401 from any endpoint invalidates the session so
// the next sync run re-authenticates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    *Session
}

// NewClient creates a POS API client bound to a session.
func NewClient(baseURL string, session *Session) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		session:    session,
	}
}

// post issues an authorized JSON POST with its own timeout and decodes the
// response into out.
func (c *Client) post(ctx context.Context, path string, body, out any, timeout time.Duration) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.session.Get())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.session.Invalidate()
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FetchSaleItems retrieves the line items of one sale. Items missing their
// identifying fields are dropped with a warning rather than returned
// half-formed.
func (c *Client) FetchSaleItems(ctx context.Context, saleID string) ([]SaleItemData, error) {
	var env pageEnvelope[SaleItemData]
	if err := c.post(ctx, "/pos/sales/items/get", SaleItemsRequest{SaleID: saleID}, &env, itemsTimeout); err != nil {
		return nil, err
	}

	items := make([]SaleItemData, 0, len(env.Page.Items))
	for _, item := range env.Page.Items {
		if !item.Valid() {
			log.Printf("OsonKassa: dropping malformed item for sale %s", saleID)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// NewRemainsRequest builds the canonical /report/inventory/remains body for
// one page.
func NewRemainsRequest(pageNumber, pageSize int) RemainsRequest {
	return RemainsRequest{
		ManufacturerIDs: []string{},
		OnlyActiveItems: true,
		PageNumber:      pageNumber,
		PageSize:        pageSize,
		SearchText:      "",
		SortOrders:      []SortOrder{{Property: "product", Direction: "asc"}},
		Source:          0,
	}
}

// NewSalesRequest builds the canonical /pos/sales/get body for one page of
// the given date.
func NewSalesRequest(dateFrom string, pageNumber, pageSize int) SalesRequest {
	return SalesRequest{
		DateFrom:      dateFrom,
		DeletedFilter: 1,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		SearchText:    "",
		SortOrders:    []SortOrder{{Property: "date", Direction: "desc"}},
	}
}
