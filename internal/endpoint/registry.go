// Package endpoint owns the set of known RPC endpoints and the active
// selection. Built-in endpoints are immutable; user-added ones are verified
// with a liveness probe before they are admitted and persisted.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/storage"
)

// Registry errors.
var (
	// ErrDuplicateEndpoint is returned when a candidate's URL matches an
	// existing endpoint.
	ErrDuplicateEndpoint = errors.New("an endpoint with the given url already exists")

	// ErrUnreachableEndpoint is returned when the connectivity probe fails.
	ErrUnreachableEndpoint = errors.New("endpoint is unreachable")

	// ErrNotFound is returned when a URL matches no known endpoint.
	ErrNotFound = errors.New("endpoint not found")
)

// DefaultProbeTimeout bounds the connectivity probe for candidate endpoints.
const DefaultProbeTimeout = 10 * time.Second

// Prober verifies connectivity of a candidate RPC endpoint.
type Prober interface {
	Probe(ctx context.Context, e domain.Endpoint) error
}

// ProberFunc is a function adapter for Prober.
type ProberFunc func(ctx context.Context, e domain.Endpoint) error

func (f ProberFunc) Probe(ctx context.Context, e domain.Endpoint) error {
	return f(ctx, e)
}

// DefaultEndpoints returns the built-in endpoint catalog.
func DefaultEndpoints() []domain.Endpoint {
	return []domain.Endpoint{
		{Name: "mainnet-beta", URL: "https://solana-api.projectserum.com"},
		{Name: "mainnet-beta (solana)", URL: "https://api.mainnet-beta.solana.com"},
		{Name: "devnet", URL: "https://api.devnet.solana.com"},
		{Name: "testnet", URL: "https://api.testnet.solana.com"},
	}
}

// Registry holds built-in and custom endpoints and the active selection.
// Only UI action handlers mutate it; reads are safe from any goroutine.
type Registry struct {
	prober       Prober
	store        storage.EndpointStore
	probeTimeout time.Duration
	logger       *log.Logger

	mu      sync.RWMutex
	builtin []domain.Endpoint
	custom  []domain.Endpoint
	active  domain.Endpoint
}

// Options configures a Registry.
type Options struct {
	// Builtins is the immutable endpoint catalog. Defaults to DefaultEndpoints.
	Builtins []domain.Endpoint
	// Prober verifies candidate endpoints. Required.
	Prober Prober
	// Store persists the custom endpoint list. Required.
	Store storage.EndpointStore
	// ProbeTimeout bounds each probe. Defaults to DefaultProbeTimeout.
	ProbeTimeout time.Duration
	Logger       *log.Logger
}

// NewRegistry creates a Registry with the first built-in endpoint active.
func NewRegistry(opts Options) (*Registry, error) {
	builtins := opts.Builtins
	if len(builtins) == 0 {
		builtins = DefaultEndpoints()
	}
	if opts.Prober == nil {
		return nil, fmt.Errorf("endpoint registry requires a prober")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("endpoint registry requires a store")
	}

	probeTimeout := opts.ProbeTimeout
	if probeTimeout == 0 {
		probeTimeout = DefaultProbeTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	seen := make(map[string]struct{}, len(builtins))
	normalized := make([]domain.Endpoint, 0, len(builtins))
	for _, e := range builtins {
		if _, dup := seen[e.URL]; dup {
			return nil, fmt.Errorf("duplicate built-in endpoint url %s", e.URL)
		}
		seen[e.URL] = struct{}{}
		e.Custom = false
		normalized = append(normalized, e)
	}

	return &Registry{
		prober:       opts.Prober,
		store:        opts.Store,
		probeTimeout: probeTimeout,
		logger:       logger,
		builtin:      normalized,
		active:       normalized[0],
	}, nil
}

// Restore loads the persisted custom endpoint list. Corrupt or missing
// persisted state falls back to "no custom endpoints"; it is never fatal.
func (r *Registry) Restore(ctx context.Context) {
	list, err := r.store.LoadCustomEndpoints(ctx)
	if err != nil {
		r.logger.Printf("restore custom endpoints: %v (starting with defaults)", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range list {
		if r.findLocked(e.URL) != nil {
			r.logger.Printf("restore custom endpoints: dropping duplicate url %s", e.URL)
			continue
		}
		e.Custom = true
		r.custom = append(r.custom, e)
	}
}

// List returns all endpoints, built-ins first, then custom, insertion order
// within each group.
func (r *Registry) List() []domain.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Endpoint, 0, len(r.builtin)+len(r.custom))
	out = append(out, r.builtin...)
	out = append(out, r.custom...)
	return out
}

// Active returns the active endpoint.
func (r *Registry) Active() domain.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive switches the active endpoint to a known URL.
func (r *Registry) SetActive(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.findLocked(url)
	if e == nil {
		return ErrNotFound
	}
	r.active = *e
	return nil
}

// AddCustom validates, probes and admits a user-supplied endpoint. On
// success the endpoint joins the custom set, becomes active and the custom
// list is persisted. On probe failure the candidate is never added.
func (r *Registry) AddCustom(ctx context.Context, name, url, wsURL string) (domain.Endpoint, error) {
	candidate := domain.Endpoint{Name: name, URL: url, WSURL: wsURL, Custom: true}

	r.mu.RLock()
	dup := r.findLocked(url) != nil
	r.mu.RUnlock()
	if dup {
		return domain.Endpoint{}, ErrDuplicateEndpoint
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()
	if err := r.prober.Probe(probeCtx, candidate); err != nil {
		r.logger.Printf("connection to %s failed: %v", url, err)
		return domain.Endpoint{}, fmt.Errorf("%w: %v", ErrUnreachableEndpoint, err)
	}

	r.mu.Lock()
	// Re-check: another add may have landed while the probe was in flight.
	if r.findLocked(url) != nil {
		r.mu.Unlock()
		return domain.Endpoint{}, ErrDuplicateEndpoint
	}
	r.custom = append(r.custom, candidate)
	r.active = candidate
	custom := make([]domain.Endpoint, len(r.custom))
	copy(custom, r.custom)
	r.mu.Unlock()

	if err := r.store.SaveCustomEndpoints(ctx, custom); err != nil {
		// The endpoint stays usable for this session even if persistence fails.
		r.logger.Printf("persist custom endpoints: %v", err)
	}
	return candidate, nil
}

// RemoveCustom deletes a custom endpoint. Removing the active endpoint
// reverts the selection to the first built-in. Unknown URLs are a no-op.
func (r *Registry) RemoveCustom(ctx context.Context, url string) error {
	r.mu.Lock()
	idx := -1
	for i, e := range r.custom {
		if e.URL == url {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}

	r.custom = append(r.custom[:idx], r.custom[idx+1:]...)
	if r.active.URL == url {
		r.active = r.builtin[0]
	}
	custom := make([]domain.Endpoint, len(r.custom))
	copy(custom, r.custom)
	r.mu.Unlock()

	if err := r.store.SaveCustomEndpoints(ctx, custom); err != nil {
		return fmt.Errorf("persist custom endpoints: %w", err)
	}
	return nil
}

// Teardown reverts the active endpoint to the first built-in if a custom
// endpoint is active. The host calls it exactly once at session end so a
// stale custom endpoint never carries over as active.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active.Custom {
		r.active = r.builtin[0]
	}
}

// findLocked returns the endpoint with the given URL, or nil.
// Callers must hold mu.
func (r *Registry) findLocked(url string) *domain.Endpoint {
	for i := range r.builtin {
		if r.builtin[i].URL == url {
			return &r.builtin[i]
		}
	}
	for i := range r.custom {
		if r.custom[i].URL == url {
			return &r.custom[i]
		}
	}
	return nil
}
