package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"solana-dex-desk/internal/domain"
)

func TestClient_RecentTrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trades/address/marketaddr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": [
				{"price": 1.52, "size": 100.5, "side": "buy", "time": 1700000100},
				{"price": 1.50, "size": 42.0, "side": "sell", "time": 1700000000}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	trades, ok, err := client.RecentTrades(context.Background(), "marketaddr")
	if err != nil {
		t.Fatalf("RecentTrades: %v", err)
	}
	if !ok {
		t.Fatal("expected data")
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].Price != 1.52 || trades[0].Side != domain.SideBuy {
		t.Errorf("unexpected first trade %+v", trades[0])
	}
	if trades[0].Time <= trades[1].Time {
		t.Errorf("expected newest-first ordering preserved")
	}
}

func TestClient_RecentTrades_SuccessFalseIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "data": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	trades, ok, err := client.RecentTrades(context.Background(), "m")
	if err != nil {
		t.Fatalf("success=false must not be an error, got %v", err)
	}
	if ok || trades != nil {
		t.Errorf("expected no data, got ok=%v trades=%v", ok, trades)
	}
}

func TestClient_RecentTrades_Non200IsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, ok, err := client.RecentTrades(context.Background(), "m")
	if err != nil {
		t.Fatalf("non-200 must not be an error, got %v", err)
	}
	if ok {
		t.Error("expected no data on non-200")
	}
}

func TestClient_Volumes_ListShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes/SOL%2FUSDT" && r.URL.Path != "/volumes/SOL/USDT" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"success": true,
			"data": [{"marketName": "SOL/USDT", "volumeUsd": 1234567.8, "volume": 50000.0}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, ok, err := client.Volumes(context.Background(), "SOL/USDT")
	if err != nil || !ok {
		t.Fatalf("Volumes: ok=%v err=%v", ok, err)
	}

	usd, found := result.VolumeUSD()
	if !found || usd != 1234567.8 {
		t.Errorf("expected volumeUsd 1234567.8, got %v (found=%v)", usd, found)
	}
}

func TestClient_Volumes_SummaryShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"summary": {"totalVolume": 987654.3}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, ok, err := client.Volumes(context.Background(), "ALL")
	if err != nil || !ok {
		t.Fatalf("Volumes: ok=%v err=%v", ok, err)
	}

	usd, found := result.VolumeUSD()
	if !found || usd != 987654.3 {
		t.Errorf("expected summary total 987654.3, got %v (found=%v)", usd, found)
	}
}

func TestClient_MarkPrice_Midpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"data": {
				"bids": [{"price": 99.0, "size": 10}, {"price": 98.5, "size": 4}],
				"asks": [{"price": 101.0, "size": 2}]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	price, ok, err := client.MarkPrice(context.Background(), "SOL/USDT")
	if err != nil || !ok {
		t.Fatalf("MarkPrice: ok=%v err=%v", ok, err)
	}
	if price != 100.0 {
		t.Errorf("expected midpoint 100.0, got %v", price)
	}
}

func TestClient_MarkPrice_EmptyBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": {"bids": [], "asks": []}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, ok, err := client.MarkPrice(context.Background(), "SOL/USDT")
	if err != nil {
		t.Fatalf("MarkPrice: %v", err)
	}
	if ok {
		t.Error("expected no mark price for empty book")
	}
}
