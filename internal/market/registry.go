package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/mr-tron/base58"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/storage"
)

var (
	// ErrNotFound is returned when an address matches no known market.
	ErrNotFound = errors.New("market: not found")

	// ErrDuplicateMarket is returned when a candidate address collides with
	// a built-in or previously added market.
	ErrDuplicateMarket = errors.New("market: duplicate address")

	// ErrInvalidAddress is returned when an address is not a base58-encoded
	// 32-byte account key.
	ErrInvalidAddress = errors.New("market: invalid address")
)

// PrimaryQuoteCurrency sorts first in ListAll.
const PrimaryQuoteCurrency = "USDT"

// Registry holds the built-in market catalog plus user-added markets and
// tracks which market is selected for trading. The custom list and the
// active selection are persisted independently.
type Registry struct {
	markets   storage.MarketStore
	selection storage.SelectionStore
	logger    *log.Logger

	mu      sync.RWMutex
	builtin []domain.MarketDescriptor
	custom  []domain.MarketDescriptor
	active  string // address; empty means no selection
}

// Options configures NewRegistry. Builtins defaults to BuiltinMarkets().
type Options struct {
	Builtins  []domain.MarketDescriptor
	Markets   storage.MarketStore
	Selection storage.SelectionStore
	Logger    *log.Logger
}

func NewRegistry(opts Options) (*Registry, error) {
	builtins := opts.Builtins
	if builtins == nil {
		builtins = BuiltinMarkets()
	}
	if opts.Markets == nil || opts.Selection == nil {
		return nil, errors.New("market: store and selection store are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	seen := make(map[string]bool, len(builtins))
	for _, m := range builtins {
		if seen[m.Address] {
			return nil, fmt.Errorf("market: built-in catalog repeats address %s", m.Address)
		}
		seen[m.Address] = true
	}

	return &Registry{
		markets:   opts.Markets,
		selection: opts.Selection,
		logger:    logger,
		builtin:   append([]domain.MarketDescriptor(nil), builtins...),
	}, nil
}

// Restore loads the persisted custom market list and active selection.
// Failures are logged and leave the registry on built-ins only; startup
// never depends on the store being healthy.
func (r *Registry) Restore(ctx context.Context) {
	custom, err := r.markets.LoadCustomMarkets(ctx)
	if err != nil {
		r.logger.Printf("market: restore custom markets: %v", err)
		custom = nil
	}

	r.mu.Lock()
	for _, m := range custom {
		if r.findLocked(m.Address) != nil {
			r.logger.Printf("market: dropping persisted duplicate %s", m.Address)
			continue
		}
		m.Custom = true
		r.custom = append(r.custom, m)
	}
	r.mu.Unlock()

	address, err := r.selection.LoadActiveMarket(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Printf("market: restore active market: %v", err)
		}
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findLocked(address) == nil {
		r.logger.Printf("market: persisted selection %s matches no market, ignoring", address)
		return
	}
	r.active = address
}

// Resolve returns the descriptor for an address.
func (r *Registry) Resolve(address string) (domain.MarketDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m := r.findLocked(address); m != nil {
		return *m, nil
	}
	return domain.MarketDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, address)
}

// SetActive selects a market by address and persists the selection.
func (r *Registry) SetActive(ctx context.Context, address string) error {
	r.mu.Lock()
	if r.findLocked(address) == nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	r.active = address
	r.mu.Unlock()

	if err := r.selection.SaveActiveMarket(ctx, address); err != nil {
		r.logger.Printf("market: persist active market: %v", err)
	}
	return nil
}

// Active returns the selected market, if any.
func (r *Registry) Active() (domain.MarketDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == "" {
		return domain.MarketDescriptor{}, false
	}
	if m := r.findLocked(r.active); m != nil {
		return *m, true
	}
	return domain.MarketDescriptor{}, false
}

// AddCustom validates and registers a user-provided market, persists the
// custom list and makes the new market active.
func (r *Registry) AddCustom(ctx context.Context, d domain.MarketDescriptor) (domain.MarketDescriptor, error) {
	if err := validateAddress(d.Address); err != nil {
		return domain.MarketDescriptor{}, err
	}
	if d.BaseCurrency == "" || d.QuoteCurrency == "" {
		return domain.MarketDescriptor{}, fmt.Errorf("%w: base and quote currency are required", ErrInvalidAddress)
	}
	if d.Name == "" {
		d.Name = d.BaseCurrency + "/" + d.QuoteCurrency
	}
	d.Custom = true

	r.mu.Lock()
	if r.findLocked(d.Address) != nil {
		r.mu.Unlock()
		return domain.MarketDescriptor{}, fmt.Errorf("%w: %s", ErrDuplicateMarket, d.Address)
	}
	r.custom = append(r.custom, d)
	custom := append([]domain.MarketDescriptor(nil), r.custom...)
	r.active = d.Address
	r.mu.Unlock()

	if err := r.markets.SaveCustomMarkets(ctx, custom); err != nil {
		r.logger.Printf("market: persist custom markets: %v", err)
	}
	if err := r.selection.SaveActiveMarket(ctx, d.Address); err != nil {
		r.logger.Printf("market: persist active market: %v", err)
	}
	return d, nil
}

// RemoveCustom deletes a user-added market. Removing an unknown or built-in
// address is a no-op. Removing the active market clears the selection; the
// caller decides what to select next.
func (r *Registry) RemoveCustom(ctx context.Context, address string) error {
	r.mu.Lock()
	idx := -1
	for i, m := range r.custom {
		if m.Address == address {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}
	r.custom = append(r.custom[:idx], r.custom[idx+1:]...)
	custom := append([]domain.MarketDescriptor(nil), r.custom...)
	cleared := r.active == address
	if cleared {
		r.active = ""
	}
	r.mu.Unlock()

	if err := r.markets.SaveCustomMarkets(ctx, custom); err != nil {
		r.logger.Printf("market: persist custom markets: %v", err)
	}
	if cleared {
		if err := r.selection.ClearActiveMarket(ctx); err != nil {
			r.logger.Printf("market: clear active market: %v", err)
		}
	}
	return nil
}

// ListAll returns every known market in display order: markets quoted in
// PrimaryQuoteCurrency first, then alphabetically by base symbol. The sort
// is stable so equal keys keep catalog order.
func (r *Registry) ListAll(includeDeprecated bool) []domain.MarketDescriptor {
	r.mu.RLock()
	out := make([]domain.MarketDescriptor, 0, len(r.builtin)+len(r.custom))
	for _, m := range r.builtin {
		if m.Deprecated && !includeDeprecated {
			continue
		}
		out = append(out, m)
	}
	for _, m := range r.custom {
		if m.Deprecated && !includeDeprecated {
			continue
		}
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		pi := out[i].QuoteCurrency == PrimaryQuoteCurrency
		pj := out[j].QuoteCurrency == PrimaryQuoteCurrency
		if pi != pj {
			return pi
		}
		return strings.ToUpper(out[i].BaseCurrency) < strings.ToUpper(out[j].BaseCurrency)
	})
	return out
}

// findLocked searches both sets. Callers hold r.mu.
func (r *Registry) findLocked(address string) *domain.MarketDescriptor {
	for i := range r.builtin {
		if r.builtin[i].Address == address {
			return &r.builtin[i]
		}
	}
	for i := range r.custom {
		if r.custom[i].Address == address {
			return &r.custom[i]
		}
	}
	return nil
}

func validateAddress(address string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: decoded to %d bytes", ErrInvalidAddress, len(raw))
	}
	return nil
}
