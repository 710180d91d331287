package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Default WebSocket liveness-check limits.
const (
	DefaultWSHandshakeTimeout = 10 * time.Second
	DefaultWSReadTimeout      = 10 * time.Second
)

// wsRequest is a JSON-RPC 2.0 request over WebSocket.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// wsResponse is a JSON-RPC 2.0 response over WebSocket.
type wsResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// CheckWS verifies that a Solana WebSocket endpoint is reachable and speaks
// the subscription protocol. It dials the endpoint, performs a slotSubscribe
// handshake, unsubscribes and closes. The context bounds the whole exchange.
func CheckWS(ctx context.Context, url string) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: DefaultWSHandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(DefaultWSReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)

	req := wsRequest{JSONRPC: "2.0", ID: 1, Method: "slotSubscribe"}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write slotSubscribe: %w", err)
	}

	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("read slotSubscribe reply: %w", err)
	}
	if resp.Error != nil {
		return fmt.Errorf("slotSubscribe rejected: %w", resp.Error)
	}

	var subID int64
	if err := json.Unmarshal(resp.Result, &subID); err != nil {
		return fmt.Errorf("parse subscription id: %w", err)
	}

	// Best effort, the connection is closed either way.
	unsub := wsRequest{JSONRPC: "2.0", ID: 2, Method: "slotUnsubscribe", Params: []interface{}{subID}}
	_ = conn.WriteJSON(unsub)

	return nil
}
