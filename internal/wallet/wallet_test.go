package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func TestLocalWallet_SignAndVerify(t *testing.T) {
	w, err := GenerateLocalWallet()
	if err != nil {
		t.Fatalf("GenerateLocalWallet: %v", err)
	}

	if !w.Connected() {
		t.Fatal("fresh wallet must start connected")
	}
	if err := ValidatePublicKey(w.PublicKey()); err != nil {
		t.Errorf("generated public key must validate: %v", err)
	}

	message := []byte("cancel order 42")
	sig, err := w.SignTransaction(context.Background(), message)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}

	pub, _ := base58.Decode(w.PublicKey())
	if !ed25519.Verify(ed25519.PublicKey(pub), message, sig) {
		t.Error("signature must verify against the wallet's public key")
	}
}

func TestLocalWallet_Disconnect(t *testing.T) {
	w, err := GenerateLocalWallet()
	if err != nil {
		t.Fatalf("GenerateLocalWallet: %v", err)
	}

	w.Disconnect()
	if w.Connected() {
		t.Error("expected disconnected")
	}
	if _, err := w.SignTransaction(context.Background(), []byte("x")); !errors.Is(err, ErrDisconnected) {
		t.Errorf("expected ErrDisconnected, got %v", err)
	}

	w.Connect()
	if _, err := w.SignTransaction(context.Background(), []byte("x")); err != nil {
		t.Errorf("reconnected wallet must sign: %v", err)
	}
}

func TestLocalWallet_FromSeedDeterministic(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	a, err := NewLocalWalletFromSeed(seed)
	if err != nil {
		t.Fatalf("NewLocalWalletFromSeed: %v", err)
	}
	b, _ := NewLocalWalletFromSeed(seed)
	if a.PublicKey() != b.PublicKey() {
		t.Error("same seed must derive the same public key")
	}

	if _, err := NewLocalWalletFromSeed(seed[:16]); err == nil {
		t.Error("short seed must be rejected")
	}
}

func TestValidatePublicKey(t *testing.T) {
	w, err := GenerateLocalWallet()
	if err != nil {
		t.Fatalf("GenerateLocalWallet: %v", err)
	}
	if err := ValidatePublicKey(w.PublicKey()); err != nil {
		t.Errorf("real keypair public key: unexpected error %v", err)
	}

	invalid := []string{
		"",
		"0OIl", // not base58
		"abc",  // decodes short of 32 bytes
	}
	for _, address := range invalid {
		if err := ValidatePublicKey(address); !errors.Is(err, ErrInvalidPublicKey) {
			t.Errorf("%q: expected ErrInvalidPublicKey, got %v", address, err)
		}
	}
}
