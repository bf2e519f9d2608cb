package jisilu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"lofmon/internal/adapters/config"
	"lofmon/internal/domain/feed"
	"lofmon/pkg/errors"
	"lofmon/pkg/logger"
)

const (
	indexListPath = "/data/lof/index_list/"
	stockListPath = "/data/lof/stock_lof_list/"
)

// lofItem is one row of the provider response; the payload sits under
// "cell".
type lofItem struct {
	Cell feed.Record `json:"cell"`
}

// lofResponse is the provider's list envelope.
type lofResponse struct {
	Page  int       `json:"page"`
	Rows  []lofItem `json:"rows"`
	Total int       `json:"total"`
}

// Client fetches LOF fund lists from the jisilu API. Requests are
// rate-limited to stay polite with the upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a feed client from configuration.
func NewClient(cfg config.FeedConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 2),
		log:        logger.Get().With("component", "jisilu_client"),
	}
}

// FetchIndexList returns the index-tracking LOF list.
func (c *Client) FetchIndexList(ctx context.Context) ([]feed.Record, error) {
	return c.fetchList(ctx, indexListPath)
}

// FetchStockList returns the equity LOF list.
func (c *Client) FetchStockList(ctx context.Context) ([]feed.Record, error) {
	return c.fetchList(ctx, stockListPath)
}

func (c *Client) fetchList(ctx context.Context, path string) ([]feed.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "feed rate limit wait")
	}

	// Timestamp query defeats intermediary caching.
	url := fmt.Sprintf("%s%s?___t=%d", c.baseURL, path, time.Now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build feed request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "fetch %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "fetch %s: status %d", path, resp.StatusCode)
	}

	var payload lofResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrapf(err, "decode feed response for %s", path)
	}

	records := make([]feed.Record, 0, len(payload.Rows))
	for _, row := range payload.Rows {
		records = append(records, row.Cell)
	}

	c.log.Debugw("Feed list fetched",
		"path", path,
		"rows", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}
