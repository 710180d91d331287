// Package session wires the registries, the data aggregator and the order
// manager into one desk session with a stable lifecycle.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/endpoint"
	"solana-dex-desk/internal/market"
	"solana-dex-desk/internal/marketdata"
	"solana-dex-desk/internal/notify"
	"solana-dex-desk/internal/order"
	"solana-dex-desk/internal/wallet"
)

// Session owns one user's desk state: the selected endpoint and market,
// the polling loop for the selected market and the cancel lifecycle.
// Registries stay consistent on every failure path; network-origin
// failures surface through the notifier, never as panics.
type Session struct {
	endpoints *endpoint.Registry
	markets   *market.Registry
	data      *marketdata.Aggregator
	orders    *order.Manager
	notifier  notify.Notifier
	logger    *log.Logger

	mu     sync.Mutex
	wallet wallet.Wallet
}

// Options configures New. Endpoints, Markets, Data and Orders are
// required; Notifier defaults to the logging sink.
type Options struct {
	Endpoints *endpoint.Registry
	Markets   *market.Registry
	Data      *marketdata.Aggregator
	Orders    *order.Manager
	Notifier  notify.Notifier
	Wallet    wallet.Wallet
	Logger    *log.Logger
}

func New(opts Options) (*Session, error) {
	if opts.Endpoints == nil || opts.Markets == nil || opts.Data == nil || opts.Orders == nil {
		return nil, errors.New("session: endpoints, markets, data and orders are required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		endpoints: opts.Endpoints,
		markets:   opts.Markets,
		data:      opts.Data,
		orders:    opts.Orders,
		notifier:  notifier,
		logger:    logger,
		wallet:    opts.Wallet,
	}, nil
}

// Start restores persisted state and begins polling the restored market,
// if any. A broken store degrades to defaults and never blocks startup.
func (s *Session) Start(ctx context.Context) {
	s.endpoints.Restore(ctx)
	s.markets.Restore(ctx)
	if active, ok := s.markets.Active(); ok {
		s.data.Start(active)
	}
}

// Teardown stops the polling loop and reverts a custom endpoint
// selection. Safe to call more than once.
func (s *Session) Teardown() {
	s.data.Stop()
	s.endpoints.Teardown()
}

// SetWallet attaches or replaces the signing wallet. Pass nil to detach.
func (s *Session) SetWallet(w wallet.Wallet) {
	s.mu.Lock()
	s.wallet = w
	s.mu.Unlock()
}

func (s *Session) currentWallet() wallet.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet
}

// SelectMarket makes a market active and restarts the data loop on it.
func (s *Session) SelectMarket(ctx context.Context, address string) error {
	if err := s.markets.SetActive(ctx, address); err != nil {
		return err
	}
	descriptor, err := s.markets.Resolve(address)
	if err != nil {
		return err
	}
	s.data.Start(descriptor)
	return nil
}

// AddCustomMarket registers a user-provided market, selects it and
// restarts the data loop on it.
func (s *Session) AddCustomMarket(ctx context.Context, d domain.MarketDescriptor) error {
	added, err := s.markets.AddCustom(ctx, d)
	if err != nil {
		return err
	}
	s.data.Start(added)
	return nil
}

// RemoveCustomMarket deletes a user-added market. When the removed market
// was selected, polling stops until the user picks another market.
func (s *Session) RemoveCustomMarket(ctx context.Context, address string) error {
	active, hadActive := s.markets.Active()
	if err := s.markets.RemoveCustom(ctx, address); err != nil {
		return err
	}
	if hadActive && active.Address == address {
		s.data.Stop()
	}
	return nil
}

// SelectEndpoint switches the active RPC endpoint.
func (s *Session) SelectEndpoint(url string) error {
	return s.endpoints.SetActive(url)
}

// AddCustomEndpoint probes and registers a user-provided endpoint.
// Unreachable endpoints are reported through the notifier and rejected.
func (s *Session) AddCustomEndpoint(ctx context.Context, name, url, wsURL string) error {
	_, err := s.endpoints.AddCustom(ctx, name, url, wsURL)
	if err != nil {
		if errors.Is(err, endpoint.ErrUnreachableEndpoint) {
			s.notifier.Notify(notify.Error("Custom endpoint unreachable", err.Error()))
		}
		return err
	}
	s.notifier.Notify(notify.Success("Endpoint added", name))
	return nil
}

// RemoveCustomEndpoint deletes a user-added endpoint.
func (s *Session) RemoveCustomEndpoint(ctx context.Context, url string) error {
	return s.endpoints.RemoveCustom(ctx, url)
}

// CancelOrder runs the cancel lifecycle for one open order with the
// attached wallet and notifies the outcome.
func (s *Session) CancelOrder(ctx context.Context, o domain.Order) error {
	err := s.orders.Cancel(ctx, o, s.currentWallet())
	if err != nil {
		var cancelErr *order.CancelError
		switch {
		case errors.Is(err, order.ErrWalletNotConnected):
			s.notifier.Notify(notify.Error("Connect a wallet to cancel orders", ""))
		case errors.As(err, &cancelErr):
			s.notifier.Notify(notify.Error("Error cancelling order", cancelErr.Reason))
		case errors.Is(err, order.ErrAlreadyInFlight):
			// Quiet: the first attempt is still running.
		default:
			s.notifier.Notify(notify.Error("Error cancelling order", err.Error()))
		}
		return err
	}
	s.notifier.Notify(notify.Success("Order cancelled", ""))
	return nil
}

// Data exposes the aggregator for snapshot reads.
func (s *Session) Data() *marketdata.Aggregator {
	return s.data
}

// Markets exposes the market registry.
func (s *Session) Markets() *market.Registry {
	return s.markets
}

// Endpoints exposes the endpoint registry.
func (s *Session) Endpoints() *endpoint.Registry {
	return s.endpoints
}

// Orders exposes the order manager.
func (s *Session) Orders() *order.Manager {
	return s.orders
}
