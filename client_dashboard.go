package mallclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/lingbai/mallclient/dashboard"
)

// MerchantOverview fetches today's and yesterday's statistics for the
// signed-in merchant in parallel and derives the day-over-day trends.
func (c *Client) MerchantOverview(ctx context.Context) (MerchantOverview, error) {
	if c == nil || !c.ready {
		return MerchantOverview{}, ErrClientNotReady
	}

	sess := c.Session()
	if !sess.Authenticated() {
		return MerchantOverview{}, ErrNotAuthenticated
	}
	merchantID := sess.Profile.MerchantID
	if merchantID == 0 {
		return MerchantOverview{}, ErrNotMerchant
	}

	q := url.Values{}
	q.Set("merchantId", strconv.FormatInt(merchantID, 10))

	var today, yesterday DayStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := c.fetchDayStats(gctx, c.cfg.Endpoints.StatsToday, q)
		today = stats
		return err
	})
	g.Go(func() error {
		stats, err := c.fetchDayStats(gctx, c.cfg.Endpoints.StatsYesterday, q)
		yesterday = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return MerchantOverview{}, err
	}

	return MerchantOverview{
		Today:      today,
		Yesterday:  yesterday,
		SalesTrend: dashboard.CalculateTrend(today.SalesAmount, yesterday.SalesAmount),
		OrderTrend: dashboard.CalculateTrend(float64(today.OrderCount), float64(yesterday.OrderCount)),
		SalesText:  dashboard.FormatAmount(today.SalesAmount),
	}, nil
}

func (c *Client) fetchDayStats(ctx context.Context, path string, q url.Values) (DayStats, error) {
	outcome, err := c.do(ctx, callOptions{
		method: http.MethodGet,
		path:   path,
		query:  q,
	})
	if err != nil {
		return DayStats{}, err
	}

	var stats DayStats
	if len(outcome.Payload) > 0 {
		if err := json.Unmarshal(outcome.Payload, &stats); err != nil {
			return DayStats{}, &BusinessError{Message: "malformed statistics response"}
		}
	}
	return stats, nil
}
