package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/storage"
)

// TradeArchiveStore implements storage.TradeArchiveStore using ClickHouse.
// Each successful trade poll is appended as one batch; rows are never
// updated, which fits a plain MergeTree table.
type TradeArchiveStore struct {
	conn *Conn
}

// NewTradeArchiveStore creates a new TradeArchiveStore.
func NewTradeArchiveStore(conn *Conn) *TradeArchiveStore {
	return &TradeArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeArchiveStore = (*TradeArchiveStore)(nil)

// InsertBatch appends one poll's trades for a market.
func (s *TradeArchiveStore) InsertBatch(ctx context.Context, market string, polledAt int64, trades []domain.Trade) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert_trade_batch", time.Since(start).Seconds(), err)
	}()

	if market == "" {
		return storage.ErrInvalidInput
	}
	if len(trades) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_archive (
			market, polled_at_ms, trade_time, side, price, size
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		err = batch.Append(
			market, uint64(polledAt), uint64(t.Time), t.Side, t.Price, t.Size,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMarket retrieves archived trades for a market, newest poll first.
func (s *TradeArchiveStore) GetByMarket(ctx context.Context, market string, limit int) (_ []domain.Trade, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "get_trades_by_market", time.Since(start).Seconds(), err)
	}()

	query := `
		SELECT trade_time, side, price, size
		FROM trade_archive
		WHERE market = ?
		ORDER BY polled_at_ms DESC, trade_time DESC
	`
	args := []interface{}{market}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trade archive: %w", err)
	}
	defer rows.Close()

	var out []domain.Trade
	for rows.Next() {
		var (
			tradeTime uint64
			t         domain.Trade
		)
		if err := rows.Scan(&tradeTime, &t.Side, &t.Price, &t.Size); err != nil {
			return nil, fmt.Errorf("scan archived trade: %w", err)
		}
		t.Time = int64(tradeTime)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade archive: %w", err)
	}
	return out, nil
}
