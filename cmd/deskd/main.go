// Package main runs the desk daemon: it keeps the endpoint and market
// registries, polls market data for the selected market and drives order
// cancellation, exposing a small JSON API plus Prometheus metrics.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/endpoint"
	"solana-dex-desk/internal/feed"
	"solana-dex-desk/internal/market"
	"solana-dex-desk/internal/marketdata"
	"solana-dex-desk/internal/notify"
	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/order"
	"solana-dex-desk/internal/session"
	"solana-dex-desk/internal/solana"
	"solana-dex-desk/internal/storage"
	chstore "solana-dex-desk/internal/storage/clickhouse"
	"solana-dex-desk/internal/storage/memory"
	"solana-dex-desk/internal/storage/migrations"
	pgstore "solana-dex-desk/internal/storage/postgres"
	"solana-dex-desk/internal/wallet"
)

// DefaultFeedURL is the public market data API.
const DefaultFeedURL = "https://serum-api.bonfida.com"

// deskStores holds the storage implementations behind the registries.
type deskStores struct {
	endpointStore  storage.EndpointStore
	marketStore    storage.MarketStore
	selectionStore storage.SelectionStore
	tradeArchive   storage.TradeArchiveStore // nil without ClickHouse
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	feedURL := flag.String("feed-url", envOr("DEX_FEED_URL", DefaultFeedURL), "Market data feed base URL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for the trade archive (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	pollInterval := flag.Duration("poll-interval", marketdata.DefaultPollInterval, "Market data poll interval")
	walletSeed := flag.String("wallet-seed", os.Getenv("WALLET_SEED"), "Hex-encoded 32-byte ed25519 seed for the local wallet (optional)")
	apiAddr := flag.String("api-addr", ":8080", "JSON API HTTP address")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	logger := log.New(os.Stdout, "[deskd] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	endpoints, err := endpoint.NewRegistry(endpoint.Options{
		Prober: &endpoint.RPCProber{},
		Store:  stores.endpointStore,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create endpoint registry: %v", err)
	}

	markets, err := market.NewRegistry(market.Options{
		Markets:   stores.marketStore,
		Selection: stores.selectionStore,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create market registry: %v", err)
	}

	data, err := marketdata.NewAggregator(marketdata.Options{
		Feed:         feed.NewClient(*feedURL),
		Archive:      stores.tradeArchive,
		PollInterval: *pollInterval,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create aggregator: %v", err)
	}

	desk, err := buildSession(endpoints, markets, data, logger)
	if err != nil {
		logger.Fatalf("Failed to create session: %v", err)
	}

	if *walletSeed != "" {
		w, err := walletFromSeedHex(*walletSeed)
		if err != nil {
			logger.Fatalf("Failed to load wallet: %v", err)
		}
		desk.SetWallet(w)
		logger.Printf("Local wallet attached: %s", w.PublicKey())
	}

	desk.Start(ctx)
	logger.Printf("Desk started; endpoint %s", desk.Endpoints().Active().URL)

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		desk.Teardown()
		cancel()
		close(done)

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	api := &apiServer{desk: desk, logger: logger, started: time.Now()}
	go api.serve(*apiAddr)
	go serveMetrics(*metricsAddr, logger)

	<-done
	logger.Println("Shutdown complete")
}

// activeRPC routes every RPC call through whichever endpoint is currently
// selected, rebuilding the HTTP client when the selection changes.
type activeRPC struct {
	endpoints *endpoint.Registry

	mu     sync.Mutex
	url    string
	client solana.RPCClient
}

func (a *activeRPC) current() solana.RPCClient {
	url := a.endpoints.Active().URL
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil || a.url != url {
		a.client = solana.NewHTTPClient(url)
		a.url = url
	}
	return a.client
}

func (a *activeRPC) GetEpochInfo(ctx context.Context) (*solana.EpochInfo, error) {
	return a.current().GetEpochInfo(ctx)
}

func (a *activeRPC) GetLatestBlockhash(ctx context.Context) (*solana.LatestBlockhash, error) {
	return a.current().GetLatestBlockhash(ctx)
}

func (a *activeRPC) SendTransaction(ctx context.Context, txBase64 string) (string, error) {
	return a.current().SendTransaction(ctx, txBase64)
}

func (a *activeRPC) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	return a.current().GetSignatureStatuses(ctx, signatures)
}

// buildSession wires the order manager against the active endpoint and
// assembles the session.
func buildSession(endpoints *endpoint.Registry, markets *market.Registry, data *marketdata.Aggregator, logger *log.Logger) (*session.Session, error) {
	orders, err := order.NewManager(order.Options{
		RPC:    &activeRPC{endpoints: endpoints},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Endpoints: endpoints,
		Markets:   markets,
		Data:      data,
		Orders:    orders,
		Notifier:  notify.NewLogNotifier(logger),
		Logger:    logger,
	})
}

// createStores selects the storage backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*deskStores, func(), error) {
	if useMemory {
		stores := &deskStores{
			endpointStore:  memory.NewEndpointStore(),
			marketStore:    memory.NewMarketStore(),
			selectionStore: memory.NewSelectionStore(),
			tradeArchive:   memory.NewTradeArchiveStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	stmts, err := migrations.Postgres()
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("load postgres migrations: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply postgres migration: %w", err)
		}
	}

	stores := &deskStores{
		endpointStore:  pgstore.NewEndpointStore(pool),
		marketStore:    pgstore.NewMarketStore(pool),
		selectionStore: pgstore.NewSelectionStore(pool),
	}
	cleanup := func() { pool.Close() }

	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		chStmts, err := migrations.Clickhouse()
		if err != nil {
			conn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("load clickhouse migrations: %w", err)
		}
		for _, stmt := range chStmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				pool.Close()
				return nil, nil, fmt.Errorf("apply clickhouse migration: %w", err)
			}
		}
		stores.tradeArchive = chstore.NewTradeArchiveStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

func walletFromSeedHex(seedHex string) (*wallet.LocalWallet, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(seedHex))
	if err != nil {
		return nil, fmt.Errorf("decode wallet seed: %w", err)
	}
	return wallet.NewLocalWalletFromSeed(seed)
}

// apiServer drives the session over a small JSON API.
type apiServer struct {
	desk    *session.Session
	logger  *log.Logger
	started time.Time
}

func (a *apiServer) serve(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", a.handleStatus)
	mux.HandleFunc("/markets", a.handleMarkets)
	mux.HandleFunc("/markets/select", a.handleSelectMarket)
	mux.HandleFunc("/markets/custom", a.handleCustomMarket)
	mux.HandleFunc("/endpoints", a.handleEndpoints)
	mux.HandleFunc("/endpoints/select", a.handleSelectEndpoint)
	mux.HandleFunc("/endpoints/custom", a.handleCustomEndpoint)
	mux.HandleFunc("/orders/cancel", a.handleCancelOrder)

	a.logger.Printf("Starting API server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		a.logger.Printf("API server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	Endpoint      string  `json:"endpoint"`
	Market        string  `json:"market,omitempty"`
	MarkPrice     float64 `json:"mark_price,omitempty"`
	Volume24h     string  `json:"volume_24h"`
	DayChangePct  float64 `json:"day_change_pct"`
	CachedTrades  int     `json:"cached_trades"`
	TradesFetched string  `json:"trades_fetched_at,omitempty"`
	HasDayChange  bool    `json:"has_day_change"`
}

func (a *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := a.desk.Data().Snapshot()

	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(a.started).String(),
		Endpoint:     a.desk.Endpoints().Active().URL,
		Market:       snap.Market.Name,
		Volume24h:    a.desk.Data().Volume24h(),
		CachedTrades: len(snap.Trades),
	}
	if snap.HasMarkPrice {
		resp.MarkPrice = snap.MarkPrice
	}
	if !snap.TradesAt.IsZero() {
		resp.TradesFetched = snap.TradesAt.Format(time.RFC3339)
	}
	if change, err := a.desk.Data().DayPercentChange(); err == nil {
		resp.DayChangePct = change
		resp.HasDayChange = true
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *apiServer) handleMarkets(w http.ResponseWriter, r *http.Request) {
	includeDeprecated := r.URL.Query().Get("deprecated") == "true"
	writeJSON(w, http.StatusOK, a.desk.Markets().ListAll(includeDeprecated))
}

func (a *apiServer) handleSelectMarket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.desk.SelectMarket(r.Context(), req.Address); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selected": req.Address})
}

func (a *apiServer) handleCustomMarket(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var d domain.MarketDescriptor
		if !decodeJSON(w, r, &d) {
			return
		}
		if err := a.desk.AddCustomMarket(r.Context(), d); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"added": d.Address})
	case http.MethodDelete:
		address := r.URL.Query().Get("address")
		if err := a.desk.RemoveCustomMarket(r.Context(), address); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"removed": address})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *apiServer) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.desk.Endpoints().List())
}

func (a *apiServer) handleSelectEndpoint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.desk.SelectEndpoint(req.URL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selected": req.URL})
}

func (a *apiServer) handleCustomEndpoint(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name  string `json:"name"`
			URL   string `json:"url"`
			WSURL string `json:"ws_url"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := a.desk.AddCustomEndpoint(r.Context(), req.Name, req.URL, req.WSURL); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"added": req.URL})
	case http.MethodDelete:
		url := r.URL.Query().Get("url")
		if err := a.desk.RemoveCustomEndpoint(r.Context(), url); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"removed": url})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *apiServer) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var o domain.Order
	if !decodeJSON(w, r, &o) {
		return
	}
	if err := a.desk.CancelOrder(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"order_id": o.OrderID,
		"status":   a.desk.Orders().Status(o.OrderID).String(),
	})
}

func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, market.ErrNotFound), errors.Is(err, endpoint.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, market.ErrInvalidAddress),
		errors.Is(err, market.ErrDuplicateMarket),
		errors.Is(err, endpoint.ErrDuplicateEndpoint),
		errors.Is(err, endpoint.ErrUnreachableEndpoint),
		errors.Is(err, order.ErrWalletNotConnected):
		status = http.StatusBadRequest
	case errors.Is(err, order.ErrAlreadyInFlight):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
