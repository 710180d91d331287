// Package marketdata polls the public data feed for the selected market
// and serves cached trades, volume and mark price to the rest of the desk.
package marketdata

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/feed"
	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/storage"
)

// ErrNoData is returned by analytics when the cache cannot answer yet.
var ErrNoData = errors.New("marketdata: no data")

// DefaultPollInterval is how often the aggregator refreshes its cache.
const DefaultPollInterval = 10 * time.Second

// Feed is the slice of the public data API the aggregator polls.
// *feed.Client satisfies it.
type Feed interface {
	RecentTrades(ctx context.Context, marketAddress string) ([]domain.Trade, bool, error)
	Volumes(ctx context.Context, marketName string) (*feed.VolumeResult, bool, error)
	MarkPrice(ctx context.Context, marketName string) (float64, bool, error)
}

// Snapshot is the aggregator's cached view of one market. Fetch times are
// zero until the corresponding fetch has succeeded at least once.
type Snapshot struct {
	Market       domain.MarketDescriptor
	Trades       []domain.Trade
	TradesAt     time.Time
	Volume       *feed.VolumeResult
	VolumeAt     time.Time
	MarkPrice    float64
	HasMarkPrice bool
	MarkPriceAt  time.Time
}

// Aggregator runs one polling loop for the selected market. Starting a new
// market stops the previous loop; results from a superseded loop are
// discarded by generation check so a stop or switch mid-fetch can never
// write stale data into the cache.
type Aggregator struct {
	feed     Feed
	archive  storage.TradeArchiveStore // nil disables archiving
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	snap       Snapshot
}

// Options configures NewAggregator. Feed is required.
type Options struct {
	Feed         Feed
	Archive      storage.TradeArchiveStore
	PollInterval time.Duration
	Logger       *log.Logger
}

func NewAggregator(opts Options) (*Aggregator, error) {
	if opts.Feed == nil {
		return nil, errors.New("marketdata: feed is required")
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		feed:     opts.Feed,
		archive:  opts.Archive,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start begins polling for a market, replacing any previous loop. The
// cache is reset so data from the previous market is never served for the
// new one.
func (a *Aggregator) Start(market domain.MarketDescriptor) {
	a.mu.Lock()
	a.generation++
	gen := a.generation
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.snap = Snapshot{Market: market}
	a.mu.Unlock()

	go a.loop(ctx, gen, market)
}

// Stop halts the polling loop. The last snapshot stays readable. Safe to
// call repeatedly and safe mid-fetch.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	a.generation++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()
}

// Snapshot returns a copy of the cached view. Readers never block the loop
// beyond the copy.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap := a.snap
	snap.Trades = append([]domain.Trade(nil), a.snap.Trades...)
	return snap
}

func (a *Aggregator) loop(ctx context.Context, gen uint64, market domain.MarketDescriptor) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		a.poll(ctx, gen, market)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll runs the three fetches of one tick. Each is independent: a failure
// logs, counts, keeps the previous cached value and never stops the loop.
func (a *Aggregator) poll(ctx context.Context, gen uint64, market domain.MarketDescriptor) {
	observability.RecordPoll()

	start := time.Now()
	trades, ok, err := a.feed.RecentTrades(ctx, market.Address)
	observability.RecordFeedFetch("trades", fetchOutcome(ok, err), time.Since(start).Seconds())
	switch {
	case err != nil:
		if ctx.Err() == nil {
			a.logger.Printf("marketdata: fetch trades %s: %v", market.Name, err)
		}
	case ok:
		if a.applyTrades(gen, trades) {
			a.archiveBatch(ctx, market.Address, trades)
		}
	}

	start = time.Now()
	volume, ok, err := a.feed.Volumes(ctx, market.Name)
	observability.RecordFeedFetch("volumes", fetchOutcome(ok, err), time.Since(start).Seconds())
	switch {
	case err != nil:
		if ctx.Err() == nil {
			a.logger.Printf("marketdata: fetch volumes %s: %v", market.Name, err)
		}
	case ok:
		a.applyVolume(gen, volume)
	}

	start = time.Now()
	mark, ok, err := a.feed.MarkPrice(ctx, market.Name)
	observability.RecordFeedFetch("orderbook", fetchOutcome(ok, err), time.Since(start).Seconds())
	switch {
	case err != nil:
		if ctx.Err() == nil {
			a.logger.Printf("marketdata: fetch orderbook %s: %v", market.Name, err)
		}
	case ok:
		a.applyMarkPrice(gen, mark)
	}
}

func fetchOutcome(ok bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case !ok:
		return "no_data"
	default:
		return "ok"
	}
}

func (a *Aggregator) applyTrades(gen uint64, trades []domain.Trade) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		observability.RecordStaleResultDropped()
		return false
	}
	now := a.now()
	a.snap.Trades = trades
	a.snap.TradesAt = now
	observability.RecordCacheUpdate(now.Unix(), len(trades))
	return true
}

func (a *Aggregator) applyVolume(gen uint64, volume *feed.VolumeResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		observability.RecordStaleResultDropped()
		return
	}
	a.snap.Volume = volume
	a.snap.VolumeAt = a.now()
}

func (a *Aggregator) applyMarkPrice(gen uint64, mark float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		observability.RecordStaleResultDropped()
		return
	}
	a.snap.MarkPrice = mark
	a.snap.HasMarkPrice = true
	a.snap.MarkPriceAt = a.now()
}

// archiveBatch writes one poll's trades to the archive store. Best-effort;
// the cache is already updated when this runs.
func (a *Aggregator) archiveBatch(ctx context.Context, marketAddress string, trades []domain.Trade) {
	if a.archive == nil || len(trades) == 0 {
		return
	}
	if err := a.archive.InsertBatch(ctx, marketAddress, a.now().UnixMilli(), trades); err != nil {
		observability.RecordArchiveWriteError()
		if ctx.Err() == nil {
			a.logger.Printf("marketdata: archive trades %s: %v", marketAddress, err)
		}
	}
}

// DayPercentChange compares the mark price against the cached trade closest
// to 24 hours ago. The scan takes the first trade at the minimal distance
// and has no distance cutoff, so a thin market still gets an answer.
func (a *Aggregator) DayPercentChange() (float64, error) {
	a.mu.Lock()
	trades := a.snap.Trades
	mark := a.snap.MarkPrice
	hasMark := a.snap.HasMarkPrice
	a.mu.Unlock()

	if len(trades) == 0 || !hasMark {
		return 0, ErrNoData
	}

	compare := a.now().Add(-24 * time.Hour).Unix()
	minIdx := 0
	minAbs := absInt64(trades[0].Time - compare)
	for i, t := range trades[1:] {
		if d := absInt64(t.Time - compare); d < minAbs {
			minAbs = d
			minIdx = i + 1
		}
	}

	ref := trades[minIdx].Price
	return (mark - ref) * 100 / ref, nil
}

// Volume24h returns the formatted cached 24h volume, or "-" while the
// cache is empty.
func (a *Aggregator) Volume24h() string {
	a.mu.Lock()
	volume := a.snap.Volume
	a.mu.Unlock()

	v, ok := volume.VolumeUSD()
	if !ok {
		return "-"
	}
	return FormatVolume(v)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
