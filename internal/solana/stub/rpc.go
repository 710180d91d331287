package stub

import (
	"context"
	"errors"
	"sync"

	"solana-dex-desk/internal/solana"
)

// ErrUnavailable is returned when the stub is configured to fail.
var ErrUnavailable = errors.New("rpc unavailable")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu sync.Mutex

	Epoch     *solana.EpochInfo
	Blockhash *solana.LatestBlockhash
	Statuses  map[string]*solana.SignatureStatus

	// SendErr, when set, fails SendTransaction with this error.
	SendErr error
	// Fail, when true, fails every call with ErrUnavailable.
	Fail bool

	// Sent records every transaction passed to SendTransaction.
	Sent []string
	// NextSignature is returned by SendTransaction.
	NextSignature string
}

// NewRPCClient creates a stub client that answers every call successfully.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Epoch:         &solana.EpochInfo{Epoch: 300, AbsoluteSlot: 129600000},
		Blockhash:     &solana.LatestBlockhash{Blockhash: "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N", LastValidBlockHeight: 1000},
		Statuses:      make(map[string]*solana.SignatureStatus),
		NextSignature: "stubsig",
	}
}

// GetEpochInfo returns the configured epoch info.
func (c *RPCClient) GetEpochInfo(_ context.Context) (*solana.EpochInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, ErrUnavailable
	}
	return c.Epoch, nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (*solana.LatestBlockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, ErrUnavailable
	}
	return c.Blockhash, nil
}

// SendTransaction records the transaction and returns the next signature.
func (c *RPCClient) SendTransaction(_ context.Context, txBase64 string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return "", ErrUnavailable
	}
	if c.SendErr != nil {
		return "", c.SendErr
	}
	c.Sent = append(c.Sent, txBase64)
	return c.NextSignature, nil
}

// GetSignatureStatuses returns configured statuses, nil for unknown signatures.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail {
		return nil, ErrUnavailable
	}
	out := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		out[i] = c.Statuses[sig]
	}
	return out, nil
}

// SentCount returns how many transactions were submitted.
func (c *RPCClient) SentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Sent)
}

// SetStatus publishes a signature status, safe against concurrent polls.
func (c *RPCClient) SetStatus(signature string, status *solana.SignatureStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statuses[signature] = status
}

// SetSendErr changes the SendTransaction failure mode.
func (c *RPCClient) SetSendErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SendErr = err
}
