// Package marketapi provides the client for the upstream market data API.
//
// Every snapshot is served cache-first from the persistent snapshot cache.
// When the upstream fails, stale snapshots are returned instead of an error.
package marketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/marketpulse/internal/clientdata"
	"github.com/aristath/marketpulse/internal/domain"
	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when the upstream failed and nothing is cached
var ErrUnavailable = errors.New("upstream data unavailable")

// Cache keys of the snapshots kept in the snapshot cache
const (
	KeyStocks      = "stocks"
	KeyCrypto      = "crypto"
	KeyAssets      = "assets"
	KeyNews        = "news"
	KeyAlerts      = "alerts"
	KeyPortfolio   = "portfolio"
	KeyPerformance = "performance"
	KeyEvents      = "events_upcoming"
	KeyInsights    = "insights"
	historyPrefix  = "history:"
)

// maxBodyBytes bounds upstream response bodies
const maxBodyBytes = 16 << 20

// Client for the upstream market API
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new market API client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, timeout time.Duration, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		log:       log.With().Str("client", "marketapi").Logger(),
		cacheRepo: cacheRepo,
	}
}

// snapshot names one cached upstream resource
type snapshot struct {
	key  string
	path string
	ttl  time.Duration
}

var (
	stocksSnapshot      = snapshot{KeyStocks, "/stocks", clientdata.TTLAssets}
	cryptoSnapshot      = snapshot{KeyCrypto, "/crypto", clientdata.TTLAssets}
	assetsSnapshot      = snapshot{KeyAssets, "/assets", clientdata.TTLAssets}
	newsSnapshot        = snapshot{KeyNews, "/news", clientdata.TTLNews}
	alertsSnapshot      = snapshot{KeyAlerts, "/alerts", clientdata.TTLAlerts}
	portfolioSnapshot   = snapshot{KeyPortfolio, "/portfolio", clientdata.TTLPortfolio}
	performanceSnapshot = snapshot{KeyPerformance, "/portfolio/performance", clientdata.TTLPerformance}
	eventsSnapshot      = snapshot{KeyEvents, "/events/upcoming", clientdata.TTLEvents}
	insightsSnapshot    = snapshot{KeyInsights, "/insights", clientdata.TTLInsights}
)

// GetStocks returns the stock universe, tagged with the stock asset type
func (c *Client) GetStocks(ctx context.Context) ([]domain.Asset, error) {
	return cached(ctx, c, stocksSnapshot, tagAssets(domain.AssetTypeStock))
}

// GetCrypto returns the crypto universe, tagged with the crypto asset type
func (c *Client) GetCrypto(ctx context.Context) ([]domain.Asset, error) {
	return cached(ctx, c, cryptoSnapshot, tagAssets(domain.AssetTypeCrypto))
}

// GetAssets returns every asset with its price history
func (c *Client) GetAssets(ctx context.Context) ([]domain.Asset, error) {
	return cached(ctx, c, assetsSnapshot, nonNil[domain.Asset])
}

// GetAssetHistory returns the price history of one asset
func (c *Client) GetAssetHistory(ctx context.Context, symbol string) ([]domain.PricePoint, error) {
	snap := snapshot{
		key:  historyPrefix + symbol,
		path: "/assets/" + url.PathEscape(symbol) + "/history",
		ttl:  clientdata.TTLAssets,
	}
	return cached(ctx, c, snap, nonNil[domain.PricePoint])
}

// GetNews returns the latest market news
func (c *Client) GetNews(ctx context.Context) ([]domain.NewsItem, error) {
	return cached(ctx, c, newsSnapshot, nonNil[domain.NewsItem])
}

// GetAlerts returns the active market alerts
func (c *Client) GetAlerts(ctx context.Context) ([]domain.Alert, error) {
	return cached(ctx, c, alertsSnapshot, nonNil[domain.Alert])
}

// GetPortfolio returns the user's portfolio
func (c *Client) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	p, err := cached[domain.Portfolio](ctx, c, portfolioSnapshot, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPerformance returns the portfolio performance breakdown
func (c *Client) GetPerformance(ctx context.Context) (*domain.Performance, error) {
	perf, err := cached[domain.Performance](ctx, c, performanceSnapshot, nil)
	if err != nil {
		return nil, err
	}
	return &perf, nil
}

// GetUpcomingEvents returns upcoming market events
func (c *Client) GetUpcomingEvents(ctx context.Context) ([]domain.Event, error) {
	return cached(ctx, c, eventsSnapshot, nonNil[domain.Event])
}

// GetInsights returns upstream market insights
func (c *Client) GetInsights(ctx context.Context) ([]domain.Insight, error) {
	return cached(ctx, c, insightsSnapshot, nonNil[domain.Insight])
}

// Refresh force-fetches every primary snapshot, bypassing fresh cache entries.
// It returns the keys refreshed and the joined errors of the ones that failed.
func (c *Client) Refresh(ctx context.Context) ([]string, error) {
	steps := []struct {
		key string
		run func(context.Context) error
	}{
		{KeyStocks, refresher(c, stocksSnapshot, tagAssets(domain.AssetTypeStock))},
		{KeyCrypto, refresher(c, cryptoSnapshot, tagAssets(domain.AssetTypeCrypto))},
		{KeyAssets, refresher(c, assetsSnapshot, nonNil[domain.Asset])},
		{KeyNews, refresher(c, newsSnapshot, nonNil[domain.NewsItem])},
		{KeyAlerts, refresher(c, alertsSnapshot, nonNil[domain.Alert])},
		{KeyPortfolio, refresher[domain.Portfolio](c, portfolioSnapshot, nil)},
		{KeyPerformance, refresher[domain.Performance](c, performanceSnapshot, nil)},
		{KeyEvents, refresher(c, eventsSnapshot, nonNil[domain.Event])},
	}

	refreshed := make([]string, 0, len(steps))
	var errs []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := step.run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.key, err))
			continue
		}
		refreshed = append(refreshed, step.key)
	}
	return refreshed, errors.Join(errs...)
}

// cached serves snap from the fresh cache, else fetches it, else falls back to stale cache.
func cached[T any](ctx context.Context, c *Client, snap snapshot, prepare func(*T)) (T, error) {
	var value T
	if c.cacheRepo != nil {
		found, err := c.cacheRepo.GetIfFresh(snap.key, &value)
		if err == nil && found {
			c.log.Debug().Str("key", snap.key).Msg("Cache hit")
			return value, nil
		}
		if err != nil {
			c.log.Warn().Err(err).Str("key", snap.key).Msg("Failed to read cache")
		}
	}

	fresh, err := fetchAndStore(ctx, c, snap, prepare)
	if err == nil {
		return fresh, nil
	}

	var stale T
	if c.staleFromCache(snap.key, &stale) {
		c.log.Warn().
			Err(err).
			Str("key", snap.key).
			Msg("API failed, using stale cached snapshot")
		return stale, nil
	}

	var zero T
	return zero, fmt.Errorf("%w: %s: %w", ErrUnavailable, snap.key, err)
}

func refresher[T any](c *Client, snap snapshot, prepare func(*T)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := fetchAndStore(ctx, c, snap, prepare)
		return err
	}
}

func fetchAndStore[T any](ctx context.Context, c *Client, snap snapshot, prepare func(*T)) (T, error) {
	var value T
	if err := c.getJSON(ctx, snap.path, &value); err != nil {
		return value, err
	}
	if prepare != nil {
		prepare(&value)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(snap.key, value, snap.ttl); err != nil {
			c.log.Warn().Err(err).Str("key", snap.key).Msg("Failed to cache snapshot")
		}
	}

	c.log.Debug().Str("key", snap.key).Msg("Fetched snapshot")
	return value, nil
}

// staleFromCache retrieves a snapshot even if expired.
func (c *Client) staleFromCache(key string, out interface{}) bool {
	if c.cacheRepo == nil {
		return false
	}
	found, err := c.cacheRepo.Get(key, out)
	return err == nil && found
}

// getJSON fetches path and decodes it into out, unwrapping a {"data": ...} envelope.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(unwrapEnvelope(body), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// unwrapEnvelope returns the "data" member of an object body, or the body itself.
func unwrapEnvelope(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return trimmed
	}
	return envelope.Data
}

func tagAssets(assetType domain.AssetType) func(*[]domain.Asset) {
	return func(list *[]domain.Asset) {
		nonNil(list)
		for i := range *list {
			if (*list)[i].AssetType == "" {
				(*list)[i].AssetType = assetType
			}
		}
	}
}

// nonNil turns a null payload into an empty list
func nonNil[T any](list *[]T) {
	if *list == nil {
		*list = make([]T, 0)
	}
}
