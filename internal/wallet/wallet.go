// Package wallet defines the signing capability the desk requires from a
// connected wallet adapter, plus a local keypair implementation.
package wallet

import (
	"context"
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidPublicKey is returned for keys that are not base58-encoded
// 32-byte points on the ed25519 curve.
var ErrInvalidPublicKey = errors.New("wallet: invalid public key")

// Wallet is the capability an adapter exposes to the desk. Adapters may
// disconnect at any time; callers check Connected before signing.
type Wallet interface {
	// PublicKey returns the base58-encoded account key.
	PublicKey() string

	// Connected reports whether the adapter can currently sign.
	Connected() bool

	// SignTransaction signs a serialized transaction message and returns
	// the 64-byte signature.
	SignTransaction(ctx context.Context, message []byte) ([]byte, error)
}

// ValidatePublicKey checks that an address decodes to a 32-byte point on
// the ed25519 curve.
func ValidatePublicKey(address string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return ErrInvalidPublicKey
	}
	if !isOnCurve(raw) {
		return ErrInvalidPublicKey
	}
	return nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
