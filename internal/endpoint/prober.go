package endpoint

import (
	"context"
	"fmt"
	"time"

	"solana-dex-desk/internal/domain"
	"solana-dex-desk/internal/observability"
	"solana-dex-desk/internal/solana"
)

// RPCProber probes a candidate endpoint with a getEpochInfo call, and a
// WebSocket handshake when the candidate declares a WebSocket URL.
type RPCProber struct {
	// Timeout bounds the probe client. The caller's context still applies.
	Timeout time.Duration
}

// Probe implements Prober.
func (p *RPCProber) Probe(ctx context.Context, e domain.Endpoint) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		observability.RecordProbe(outcome, time.Since(start).Seconds())
	}()

	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultProbeTimeout
	}

	// A probe is a one-shot liveness check; retries would only stretch the
	// user's wait on a dead endpoint.
	client := solana.NewHTTPClient(e.URL,
		solana.WithTimeout(timeout),
		solana.WithMaxRetries(0),
	)
	if _, err := client.GetEpochInfo(ctx); err != nil {
		return fmt.Errorf("probe %s: %w", e.URL, err)
	}

	if e.WSURL != "" {
		if err := solana.CheckWS(ctx, e.WSURL); err != nil {
			return fmt.Errorf("probe %s: %w", e.WSURL, err)
		}
	}
	return nil
}
