package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/solana"
	"solana-dex-desk/internal/solana/stub"
	"solana-dex-desk/internal/wallet"
)

var testOrder = domain.Order{
	OrderID:        "36893488147419103232",
	Market:         "C1EuT9VokAKLiW7i2ASnZUvxDoKuKkCpDDeNxAptuNe4",
	OpenOrders:     "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R",
	Side:           domain.SideBuy,
	Price:          101.5,
	Size:           2,
	ProgramVersion: 3,
}

func confirmedStatus() *solana.SignatureStatus {
	return &solana.SignatureStatus{ConfirmationStatus: solana.CommitmentConfirmed}
}

func testWallet(t *testing.T) *wallet.LocalWallet {
	t.Helper()
	w, err := wallet.GenerateLocalWallet()
	if err != nil {
		t.Fatalf("GenerateLocalWallet: %v", err)
	}
	return w
}

func newTestManager(t *testing.T, rpc solana.RPCClient, onSuccess func(domain.Order)) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		RPC:                 rpc,
		ConfirmPollInterval: time.Millisecond,
		OnSuccess:           onSuccess,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestManager_CancelConfirms(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.SetStatus(rpc.NextSignature, confirmedStatus())

	var refreshed []domain.Order
	m := newTestManager(t, rpc, func(o domain.Order) { refreshed = append(refreshed, o) })

	if err := m.Cancel(context.Background(), testOrder, testWallet(t)); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if got := m.Status(testOrder.OrderID); got != domain.CancelConfirmed {
		t.Errorf("status = %s, want confirmed", got)
	}
	if rpc.SentCount() != 1 {
		t.Errorf("expected exactly one submission, got %d", rpc.SentCount())
	}
	if len(refreshed) != 1 || refreshed[0].OrderID != testOrder.OrderID {
		t.Errorf("refresh callback = %+v", refreshed)
	}
}

func TestManager_WalletNotConnected(t *testing.T) {
	rpc := stub.NewRPCClient()
	m := newTestManager(t, rpc, nil)
	ctx := context.Background()

	if err := m.Cancel(ctx, testOrder, nil); !errors.Is(err, ErrWalletNotConnected) {
		t.Errorf("nil wallet: expected ErrWalletNotConnected, got %v", err)
	}

	w := testWallet(t)
	w.Disconnect()
	if err := m.Cancel(ctx, testOrder, w); !errors.Is(err, ErrWalletNotConnected) {
		t.Errorf("disconnected wallet: expected ErrWalletNotConnected, got %v", err)
	}

	if rpc.SentCount() != 0 {
		t.Error("nothing may reach the network without a wallet")
	}
	if m.Status(testOrder.OrderID) != domain.CancelIdle {
		t.Error("order state must stay idle")
	}
}

func TestManager_SingleFlight(t *testing.T) {
	rpc := stub.NewRPCClient() // no status published yet, so the first cancel keeps polling
	m := newTestManager(t, rpc, nil)
	w := testWallet(t)

	var wg sync.WaitGroup
	wg.Add(1)
	firstErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		firstErr <- m.Cancel(context.Background(), testOrder, w)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for m.Status(testOrder.OrderID) != domain.CancelSubmitting {
		if time.Now().After(deadline) {
			t.Fatal("first cancel never reached submitting")
		}
		time.Sleep(time.Millisecond)
	}

	if err := m.Cancel(context.Background(), testOrder, w); !errors.Is(err, ErrAlreadyInFlight) {
		t.Fatalf("second cancel: expected ErrAlreadyInFlight, got %v", err)
	}

	rpc.SetStatus(rpc.NextSignature, confirmedStatus())
	wg.Wait()
	if err := <-firstErr; err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	if rpc.SentCount() != 1 {
		t.Errorf("expected exactly one submission, got %d", rpc.SentCount())
	}
}

func TestManager_OtherOrderUnaffected(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.SetSendErr(errors.New("Node is behind by 42 slots"))
	m := newTestManager(t, rpc, nil)

	if err := m.Cancel(context.Background(), testOrder, testWallet(t)); err == nil {
		t.Fatal("expected rejection")
	}

	other := testOrder
	other.OrderID = "42"
	if m.Status(other.OrderID) != domain.CancelIdle {
		t.Error("an unrelated order's state must stay idle")
	}
}

func TestManager_RejectionPreservesReason(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.SetSendErr(errors.New("Transaction simulation failed: custom program error: 0x22"))
	m := newTestManager(t, rpc, nil)

	err := m.Cancel(context.Background(), testOrder, testWallet(t))
	var cancelErr *CancelError
	if !errors.As(err, &cancelErr) {
		t.Fatalf("expected CancelError, got %v", err)
	}
	if !strings.Contains(cancelErr.Reason, "custom program error: 0x22") {
		t.Errorf("reason lost: %q", cancelErr.Reason)
	}
	if m.Status(testOrder.OrderID) != domain.CancelFailed {
		t.Errorf("status = %s, want failed", m.Status(testOrder.OrderID))
	}
}

func TestManager_ClusterErrorFails(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.SetStatus(rpc.NextSignature, &solana.SignatureStatus{
		ConfirmationStatus: solana.CommitmentConfirmed,
		Err:                map[string]interface{}{"InstructionError": []interface{}{0.0, "InvalidArgument"}},
	})
	m := newTestManager(t, rpc, nil)

	err := m.Cancel(context.Background(), testOrder, testWallet(t))
	var cancelErr *CancelError
	if !errors.As(err, &cancelErr) {
		t.Fatalf("expected CancelError, got %v", err)
	}
	if !strings.Contains(cancelErr.Reason, "InstructionError") {
		t.Errorf("reason lost: %q", cancelErr.Reason)
	}
}

func TestManager_RetryAfterFailure(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.SetSendErr(errors.New("blockhash not found"))
	m := newTestManager(t, rpc, nil)
	w := testWallet(t)
	ctx := context.Background()

	if err := m.Cancel(ctx, testOrder, w); err == nil {
		t.Fatal("expected first cancel to fail")
	}

	// The guard is released on failure; a fresh attempt goes through.
	rpc.SetSendErr(nil)
	rpc.SetStatus(rpc.NextSignature, confirmedStatus())
	if err := m.Cancel(ctx, testOrder, w); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if m.Status(testOrder.OrderID) != domain.CancelConfirmed {
		t.Errorf("status = %s, want confirmed", m.Status(testOrder.OrderID))
	}
}

func TestManager_ContextCancelUnblocksWait(t *testing.T) {
	rpc := stub.NewRPCClient() // signature never confirms
	m := newTestManager(t, rpc, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.Cancel(ctx, testOrder, testWallet(t))
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if m.Status(testOrder.OrderID) != domain.CancelFailed {
		t.Errorf("status = %s, want failed", m.Status(testOrder.OrderID))
	}
}
