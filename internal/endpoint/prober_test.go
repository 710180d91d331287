package endpoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solana-dex-desk/internal/domain"
)

func rpcServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestRPCProber_Success(t *testing.T) {
	server := rpcServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"epoch":420,"absoluteSlot":181392000}}`))
	})

	prober := &RPCProber{Timeout: 2 * time.Second}
	if err := prober.Probe(context.Background(), domain.Endpoint{URL: server.URL}); err != nil {
		t.Fatalf("Probe: %v", err)
	}
}

func TestRPCProber_RPCError(t *testing.T) {
	server := rpcServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`))
	})

	prober := &RPCProber{Timeout: 2 * time.Second}
	if err := prober.Probe(context.Background(), domain.Endpoint{URL: server.URL}); err == nil {
		t.Fatal("expected probe failure for RPC error response")
	}
}

func TestRPCProber_Unreachable(t *testing.T) {
	prober := &RPCProber{Timeout: time.Second}
	if err := prober.Probe(context.Background(), domain.Endpoint{URL: "http://127.0.0.1:1"}); err == nil {
		t.Fatal("expected probe failure for dead endpoint")
	}
}

func TestRPCProber_WSDialFailure(t *testing.T) {
	// HTTP side healthy, declared WebSocket endpoint dead: the probe must
	// still fail so an endpoint never joins the set half-working.
	server := rpcServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"epoch":420,"absoluteSlot":181392000}}`))
	})

	prober := &RPCProber{Timeout: time.Second}
	err := prober.Probe(context.Background(), domain.Endpoint{
		URL:   server.URL,
		WSURL: "ws://127.0.0.1:1",
	})
	if err == nil {
		t.Fatal("expected probe failure when the WebSocket dial fails")
	}
}
