package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"solana-dex-desk/internal/domain"
)

// DefaultTimeout bounds every feed request.
const DefaultTimeout = 15 * time.Second

// Client fetches public market data from a Bonfida-style HTTP API.
//
// The API wraps every payload as {"success": bool, "data": ...}. A non-200
// response or success=false means "no data right now" rather than a hard
// failure; those calls return ok=false with a nil error so callers keep
// their previous cache.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a feed client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// get fetches path and returns the raw data payload.
// ok=false (nil error) means the feed reported no data.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("feed request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read feed response %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false, fmt.Errorf("decode feed response %s: %w", path, err)
	}
	if !env.Success || env.Data == nil {
		return nil, false, nil
	}
	return env.Data, true, nil
}

// RecentTrades fetches the recent trade history for a market address,
// newest-first as delivered by the feed.
func (c *Client) RecentTrades(ctx context.Context, marketAddress string) ([]domain.Trade, bool, error) {
	data, ok, err := c.get(ctx, "/trades/address/"+url.PathEscape(marketAddress))
	if err != nil || !ok {
		return nil, false, err
	}

	var trades []domain.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, false, fmt.Errorf("decode trades: %w", err)
	}
	return trades, true, nil
}

// VolumeResult is the normalized 24h volume payload. The endpoint returns
// either a list of per-market samples or an aggregate summary object; the
// client accepts both.
type VolumeResult struct {
	Samples      []domain.VolumeSample
	SummaryTotal float64
	HasSummary   bool
}

// VolumeUSD returns the volume the UI should display: the first sample's
// USD volume, or the aggregate total when the feed sent a summary.
func (r *VolumeResult) VolumeUSD() (float64, bool) {
	if r == nil {
		return 0, false
	}
	if r.HasSummary {
		return r.SummaryTotal, true
	}
	if len(r.Samples) > 0 {
		return r.Samples[0].VolumeUSD, true
	}
	return 0, false
}

// volumeSummary is the alternate aggregate shape of /volumes.
type volumeSummary struct {
	Summary struct {
		TotalVolume float64 `json:"totalVolume"`
	} `json:"summary"`
}

// Volumes fetches the 24h volume snapshot for a market name.
func (c *Client) Volumes(ctx context.Context, marketName string) (*VolumeResult, bool, error) {
	data, ok, err := c.get(ctx, "/volumes/"+url.PathEscape(marketName))
	if err != nil || !ok {
		return nil, false, err
	}

	var samples []domain.VolumeSample
	if err := json.Unmarshal(data, &samples); err == nil {
		return &VolumeResult{Samples: samples}, true, nil
	}

	var summary volumeSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false, fmt.Errorf("decode volumes: %w", err)
	}
	return &VolumeResult{SummaryTotal: summary.Summary.TotalVolume, HasSummary: true}, true, nil
}

// orderbook is the /orderbooks payload.
type orderbook struct {
	Bids []orderbookLevel `json:"bids"`
	Asks []orderbookLevel `json:"asks"`
}

type orderbookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// MarkPrice fetches the current mark price for a market name, derived as
// the midpoint of the best bid and ask.
func (c *Client) MarkPrice(ctx context.Context, marketName string) (float64, bool, error) {
	data, ok, err := c.get(ctx, "/orderbooks/"+url.PathEscape(marketName))
	if err != nil || !ok {
		return 0, false, err
	}

	var book orderbook
	if err := json.Unmarshal(data, &book); err != nil {
		return 0, false, fmt.Errorf("decode orderbook: %w", err)
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return 0, false, nil
	}
	return (book.Bids[0].Price + book.Asks[0].Price) / 2, true, nil
}
