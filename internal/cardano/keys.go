package cardano

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// SigningKey wraps an ed25519 key used to witness transactions. The custodial
// key is injected where needed rather than read from package state, so tests
// can substitute a throwaway key.
type SigningKey struct {
	priv ed25519.PrivateKey
}

// SigningKeyFromSeedHex derives a key from a hex-encoded 32-byte seed.
func SigningKeyFromSeedHex(seedHex string) (*SigningKey, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode key seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &SigningKey{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewSigningKeyFromSeed derives a key from a raw 32-byte seed.
func NewSigningKeyFromSeed(seed []byte) *SigningKey {
	return &SigningKey{priv: ed25519.NewKeyFromSeed(seed)}
}

// PublicKey returns the verification key bytes.
func (k *SigningKey) PublicKey() []byte {
	return []byte(k.priv.Public().(ed25519.PublicKey))
}

// WitnessBody produces a witness over the body's blake2b-256 digest.
func (k *SigningKey) WitnessBody(bodyBytes []byte) VKeyWitness {
	h := blake2b.Sum256(bodyBytes)
	return VKeyWitness{
		VKey:      k.PublicKey(),
		Signature: ed25519.Sign(k.priv, h[:]),
	}
}

// ReferenceKey is a fixed, publicly-known key used only to measure witness
// byte overhead during fee estimation. It never controls funds.
func ReferenceKey() *SigningKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	return NewSigningKeyFromSeed(seed)
}
