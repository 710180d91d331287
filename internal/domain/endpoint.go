package domain

// Endpoint represents an RPC network address the client uses for chain
// queries and transaction submission.
type Endpoint struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	WSURL  string `json:"wsUrl,omitempty"` // optional WebSocket endpoint
	Custom bool   `json:"custom"`
}
