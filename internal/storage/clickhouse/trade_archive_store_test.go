package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/storage"
	"solana-dex-desk/internal/storage/migrations"
)

// setupTestDB creates a ClickHouse container and returns a connection with
// the trade archive schema applied.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60 * time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	conn, err := NewConn(ctx, fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port()))
	require.NoError(t, err)

	stmts, err := migrations.Clickhouse()
	require.NoError(t, err)
	for _, stmt := range stmts {
		require.NoError(t, conn.Exec(ctx, stmt))
	}

	cleanup := func() {
		conn.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return conn, cleanup
}

func TestTradeArchiveStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeArchiveStore(conn)
	ctx := context.Background()

	older := []domain.Trade{
		{Price: 1.5, Size: 100, Side: domain.SideBuy, Time: 1700000000},
	}
	newer := []domain.Trade{
		{Price: 1.6, Size: 50, Side: domain.SideSell, Time: 1700000100},
	}

	require.NoError(t, store.InsertBatch(ctx, "mkt1", 1700000050000, older))
	require.NoError(t, store.InsertBatch(ctx, "mkt1", 1700000150000, newer))
	require.NoError(t, store.InsertBatch(ctx, "mkt2", 1700000150000, older))

	got, err := store.GetByMarket(ctx, "mkt1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1.6, got[0].Price, "newest poll first")
	assert.Equal(t, domain.SideSell, got[0].Side)
	assert.Equal(t, int64(1700000000), got[1].Time)

	limited, err := store.GetByMarket(ctx, "mkt1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTradeArchiveStore_EmptyBatchIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeArchiveStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBatch(ctx, "mkt", time.Now().UnixMilli(), nil))

	got, err := store.GetByMarket(ctx, "mkt", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTradeArchiveStore_RejectsEmptyMarket(t *testing.T) {
	store := NewTradeArchiveStore(nil)

	err := store.InsertBatch(context.Background(), "", 0, []domain.Trade{{Price: 1}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
