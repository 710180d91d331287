package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
)

// ErrDisconnected is returned when signing is requested while the wallet
// is disconnected.
var ErrDisconnected = errors.New("wallet: disconnected")

// LocalWallet signs with an in-process ed25519 keypair. It is the default
// adapter for headless use; browser-extension adapters implement the same
// interface out of process.
type LocalWallet struct {
	priv   ed25519.PrivateKey
	pubkey string

	mu        sync.Mutex
	connected bool
}

// NewLocalWallet wraps an existing private key. The wallet starts
// connected.
func NewLocalWallet(priv ed25519.PrivateKey) (*LocalWallet, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &LocalWallet{
		priv:      priv,
		pubkey:    base58.Encode(pub),
		connected: true,
	}, nil
}

// NewLocalWalletFromSeed derives the keypair from a 32-byte seed, the
// format Solana key files use for the secret half.
func NewLocalWalletFromSeed(seed []byte) (*LocalWallet, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("wallet: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return NewLocalWallet(ed25519.NewKeyFromSeed(seed))
}

// GenerateLocalWallet creates a wallet with a fresh random keypair.
func GenerateLocalWallet() (*LocalWallet, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("wallet: generate keypair: %w", err)
	}
	return NewLocalWallet(priv)
}

func (w *LocalWallet) PublicKey() string {
	return w.pubkey
}

func (w *LocalWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// Disconnect makes subsequent signing fail until Connect is called.
func (w *LocalWallet) Disconnect() {
	w.mu.Lock()
	w.connected = false
	w.mu.Unlock()
}

func (w *LocalWallet) Connect() {
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
}

func (w *LocalWallet) SignTransaction(_ context.Context, message []byte) ([]byte, error) {
	if !w.Connected() {
		return nil, ErrDisconnected
	}
	return ed25519.Sign(w.priv, message), nil
}
