package memory

import (
	"context"
	"errors"
	"testing"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/storage"
)

func TestEndpointStore_SaveAndLoad(t *testing.T) {
	store := NewEndpointStore()
	ctx := context.Background()

	list, err := store.LoadCustomEndpoints(ctx)
	if err != nil {
		t.Fatalf("LoadCustomEndpoints: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(list))
	}

	saved := []domain.Endpoint{
		{Name: "My Node", URL: "https://rpc.example.com", Custom: true},
	}
	if err := store.SaveCustomEndpoints(ctx, saved); err != nil {
		t.Fatalf("SaveCustomEndpoints: %v", err)
	}

	// Mutating the caller's slice must not leak into the store.
	saved[0].URL = "https://mutated.example.com"

	list, err = store.LoadCustomEndpoints(ctx)
	if err != nil {
		t.Fatalf("LoadCustomEndpoints: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}
	if list[0].URL != "https://rpc.example.com" {
		t.Errorf("URL mismatch: got %s", list[0].URL)
	}
}

func TestMarketStore_ReplacesWholesale(t *testing.T) {
	store := NewMarketStore()
	ctx := context.Background()

	first := []domain.MarketDescriptor{
		{Address: "addr1", Name: "AAA/USDT", Custom: true},
		{Address: "addr2", Name: "BBB/USDT", Custom: true},
	}
	if err := store.SaveCustomMarkets(ctx, first); err != nil {
		t.Fatalf("SaveCustomMarkets: %v", err)
	}

	second := []domain.MarketDescriptor{
		{Address: "addr2", Name: "BBB/USDT", Custom: true},
	}
	if err := store.SaveCustomMarkets(ctx, second); err != nil {
		t.Fatalf("SaveCustomMarkets: %v", err)
	}

	list, err := store.LoadCustomMarkets(ctx)
	if err != nil {
		t.Fatalf("LoadCustomMarkets: %v", err)
	}
	if len(list) != 1 || list[0].Address != "addr2" {
		t.Errorf("expected only addr2 after replace, got %+v", list)
	}
}

func TestSelectionStore_Lifecycle(t *testing.T) {
	store := NewSelectionStore()
	ctx := context.Background()

	if _, err := store.LoadActiveMarket(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := store.SaveActiveMarket(ctx, "marketaddr"); err != nil {
		t.Fatalf("SaveActiveMarket: %v", err)
	}

	got, err := store.LoadActiveMarket(ctx)
	if err != nil {
		t.Fatalf("LoadActiveMarket: %v", err)
	}
	if got != "marketaddr" {
		t.Errorf("expected marketaddr, got %s", got)
	}

	if err := store.ClearActiveMarket(ctx); err != nil {
		t.Fatalf("ClearActiveMarket: %v", err)
	}
	if _, err := store.LoadActiveMarket(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestSelectionStore_RejectsEmptyAddress(t *testing.T) {
	store := NewSelectionStore()

	if err := store.SaveActiveMarket(context.Background(), ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTradeArchiveStore_NewestPollFirst(t *testing.T) {
	store := NewTradeArchiveStore()
	ctx := context.Background()

	older := []domain.Trade{{Price: 1.0, Size: 10, Side: domain.SideBuy, Time: 100}}
	newer := []domain.Trade{{Price: 2.0, Size: 20, Side: domain.SideSell, Time: 200}}

	if err := store.InsertBatch(ctx, "mkt", 1000, older); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if err := store.InsertBatch(ctx, "mkt", 2000, newer); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	got, err := store.GetByMarket(ctx, "mkt", 0)
	if err != nil {
		t.Fatalf("GetByMarket: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(got))
	}
	if got[0].Price != 2.0 {
		t.Errorf("expected newest poll first, got price %v", got[0].Price)
	}

	limited, err := store.GetByMarket(ctx, "mkt", 1)
	if err != nil {
		t.Fatalf("GetByMarket limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 trade with limit, got %d", len(limited))
	}
}

func TestTradeArchiveStore_UnknownMarket(t *testing.T) {
	store := NewTradeArchiveStore()

	got, err := store.GetByMarket(context.Background(), "missing", 0)
	if err != nil {
		t.Fatalf("GetByMarket: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no trades, got %d", len(got))
	}
}
