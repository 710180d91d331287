// Package order drives cancellation of open DEX orders through the wallet
// and the Solana RPC endpoint.
package order

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/solana"
	"solana-dex-desk/internal/wallet"
)

var (
	// ErrWalletNotConnected is returned when no connected wallet is
	// available to sign. Nothing is sent to the network.
	ErrWalletNotConnected = errors.New("order: wallet not connected")

	// ErrAlreadyInFlight is returned when a cancel for the same order id
	// is still submitting.
	ErrAlreadyInFlight = errors.New("order: cancel already in flight")
)

// CancelError reports a cancel the cluster rejected. Reason preserves the
// underlying message for display.
type CancelError struct {
	Reason string
}

func (e *CancelError) Error() string {
	return "order: cancel rejected: " + e.Reason
}

// DefaultConfirmPollInterval is how often signature status is polled while
// awaiting confirmation.
const DefaultConfirmPollInterval = 2 * time.Second

// Manager runs the cancel lifecycle per order id: Idle, Submitting, then
// Confirmed or Failed. A second cancel for an order that is Submitting is
// rejected; no other order's state is ever touched.
type Manager struct {
	rpc          solana.RPCClient
	pollInterval time.Duration
	logger       *log.Logger
	onSuccess    func(order domain.Order)

	mu       sync.Mutex
	statuses map[string]domain.CancelStatus
}

// Options configures NewManager. RPC is required. OnSuccess, when set, is
// invoked after a confirmed cancel so the host can refresh open orders.
type Options struct {
	RPC                 solana.RPCClient
	ConfirmPollInterval time.Duration
	Logger              *log.Logger
	OnSuccess           func(order domain.Order)
}

func NewManager(opts Options) (*Manager, error) {
	if opts.RPC == nil {
		return nil, errors.New("order: rpc client is required")
	}
	interval := opts.ConfirmPollInterval
	if interval <= 0 {
		interval = DefaultConfirmPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		rpc:          opts.RPC,
		pollInterval: interval,
		logger:       logger,
		onSuccess:    opts.OnSuccess,
		statuses:     make(map[string]domain.CancelStatus),
	}, nil
}

// Status returns the lifecycle state of the last cancel for an order id.
// Orders never touched report Idle.
func (m *Manager) Status(orderID string) domain.CancelStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[orderID]
}

// Cancel submits a cancellation for one open order and blocks until the
// cluster confirms or rejects it. The caller bounds the wait through ctx.
func (m *Manager) Cancel(ctx context.Context, order domain.Order, w wallet.Wallet) error {
	if w == nil || !w.Connected() {
		return ErrWalletNotConnected
	}

	m.mu.Lock()
	if m.statuses[order.OrderID] == domain.CancelSubmitting {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyInFlight, order.OrderID)
	}
	m.statuses[order.OrderID] = domain.CancelSubmitting
	m.mu.Unlock()

	err := m.submitAndConfirm(ctx, order, w)
	if err != nil {
		m.setStatus(order.OrderID, domain.CancelFailed)
		observability.RecordCancel("failed")
		return err
	}

	m.setStatus(order.OrderID, domain.CancelConfirmed)
	observability.RecordCancel("confirmed")
	if m.onSuccess != nil {
		m.onSuccess(order)
	}
	return nil
}

func (m *Manager) setStatus(orderID string, s domain.CancelStatus) {
	m.mu.Lock()
	m.statuses[orderID] = s
	m.mu.Unlock()
}

func (m *Manager) submitAndConfirm(ctx context.Context, order domain.Order, w wallet.Wallet) error {
	blockhash, err := m.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("order: fetch blockhash: %w", err)
	}

	message := buildCancelMessage(order, w.PublicKey(), blockhash.Blockhash)
	signature, err := w.SignTransaction(ctx, message)
	if err != nil {
		return fmt.Errorf("order: sign cancel: %w", err)
	}

	tx := base64.StdEncoding.EncodeToString(assembleTransaction(signature, message))
	start := time.Now()
	sig, err := m.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return &CancelError{Reason: err.Error()}
	}
	m.logger.Printf("order: cancel %s submitted as %s", order.OrderID, sig)

	if err := m.awaitConfirmation(ctx, sig); err != nil {
		return err
	}
	observability.RecordCancelConfirmLatency(time.Since(start).Seconds())
	return nil
}

// awaitConfirmation polls signature status until the transaction reaches
// at least "confirmed" or the cluster reports an error. There is no
// client-side deadline; cancellation of ctx is the host's call.
func (m *Manager) awaitConfirmation(ctx context.Context, signature string) error {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		statuses, err := m.rpc.GetSignatureStatuses(ctx, []string{signature})
		if err != nil {
			return fmt.Errorf("order: poll signature status: %w", err)
		}
		if len(statuses) > 0 && statuses[0] != nil {
			status := statuses[0]
			if status.Err != nil {
				return &CancelError{Reason: fmt.Sprintf("%v", status.Err)}
			}
			if status.Confirmed() {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("order: await confirmation: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// buildCancelMessage serializes a cancelOrderByClientId-style message for
// the market's program version. The exact account layout lives on-chain;
// here the message binds everything the instruction needs: program
// version, market, open-orders account, owner, side and the u128 order id.
func buildCancelMessage(order domain.Order, owner, blockhash string) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, byte(order.ProgramVersion))
	buf = appendString(buf, order.Market)
	buf = appendString(buf, order.OpenOrders)
	buf = appendString(buf, owner)
	if order.Side == domain.SideBuy {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
	}
	buf = appendString(buf, order.OrderID)
	buf = appendString(buf, blockhash)
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// assembleTransaction prepends the signature section to the message, the
// wire shape sendTransaction expects.
func assembleTransaction(signature, message []byte) []byte {
	out := make([]byte, 0, 1+len(signature)+len(message))
	out = append(out, 1) // one signature
	out = append(out, signature...)
	return append(out, message...)
}
