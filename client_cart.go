package mallclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// selectAllConcurrency caps the fan-out of bulk cart updates.
const selectAllConcurrency = 8

// CartItems fetches the current cart.
func (c *Client) CartItems(ctx context.Context) ([]CartItem, error) {
	if c == nil || !c.ready {
		return nil, ErrClientNotReady
	}

	outcome, err := c.do(ctx, callOptions{
		method: http.MethodGet,
		path:   c.cfg.Endpoints.CartList,
	})
	if err != nil {
		return nil, err
	}

	var items []CartItem
	if len(outcome.Payload) > 0 {
		if err := json.Unmarshal(outcome.Payload, &items); err != nil {
			return nil, &BusinessError{Message: "malformed cart response"}
		}
	}
	return items, nil
}

// UpdateCartSelected toggles the selection state of one cart entry.
func (c *Client) UpdateCartSelected(ctx context.Context, productID int64, selected bool) error {
	if c == nil || !c.ready {
		return ErrClientNotReady
	}

	q := url.Values{}
	q.Set("selected", strconv.FormatBool(selected))
	_, err := c.do(ctx, callOptions{
		method: http.MethodPut,
		path:   fmt.Sprintf("%s/%d", c.cfg.Endpoints.CartSelect, productID),
		query:  q,
	})
	return err
}

// SelectAllCartItems toggles every cart entry with a bounded fan-out and
// an aggregated result. Partial failure is reported explicitly per item
// rather than discarded, so callers can reconcile displayed state with
// what the server actually accepted. The error return covers only the
// initial cart listing.
func (c *Client) SelectAllCartItems(ctx context.Context, selected bool) (BatchResult, error) {
	items, err := c.CartItems(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Total: len(items)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(selectAllConcurrency)
	for _, item := range items {
		item := item
		g.Go(func() error {
			err := c.UpdateCartSelected(ctx, item.ProductID, selected)
			mu.Lock()
			if err != nil {
				result.Failures = append(result.Failures, BatchFailure{ProductID: item.ProductID, Err: err})
			} else {
				result.Succeeded++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}
