package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the desk core.
type RPCClient interface {
	// GetEpochInfo retrieves current epoch information. Used as a
	// lightweight liveness probe for candidate endpoints.
	GetEpochInfo(ctx context.Context) (*EpochInfo, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction assembly.
	GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error)

	// SendTransaction submits a signed, base64-encoded transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, txBase64 string) (string, error)

	// GetSignatureStatuses retrieves confirmation status for the given
	// signatures. Entries are nil for unknown signatures.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)
}
