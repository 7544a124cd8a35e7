package cardano

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// PaymentKeyHash is the blake2b-224 digest of a verification key, as embedded
// in address payloads.
func PaymentKeyHash(vkey []byte) []byte {
	h, _ := blake2b.New(28, nil)
	h.Write(vkey)
	return h.Sum(nil)
}

// PaymentKeyHash extracts the payment credential from an address payload:
// one header byte followed by the 28-byte key hash.
func (a Address) PaymentKeyHash() ([]byte, error) {
	payload, err := a.Bytes()
	if err != nil {
		return nil, err
	}
	if len(payload) < 29 {
		return nil, fmt.Errorf("address payload too short: %d bytes", len(payload))
	}
	return payload[1:29], nil
}

// Covers verifies that the witness set authorizes spending from every given
// address: each signature must verify against the body hash, and each
// address's payment credential must match some witness key. A transaction
// must never be submitted unless this holds for every input address.
func (ws WitnessSet) Covers(addresses []Address, bodyBytes []byte) error {
	h := blake2b.Sum256(bodyBytes)

	hashes := make([][]byte, 0, len(ws.VKeyWitnesses))
	for _, w := range ws.VKeyWitnesses {
		if len(w.VKey) != ed25519.PublicKeySize {
			return fmt.Errorf("witness key has %d bytes, want %d", len(w.VKey), ed25519.PublicKeySize)
		}
		if !ed25519.Verify(ed25519.PublicKey(w.VKey), h[:], w.Signature) {
			return fmt.Errorf("witness signature does not verify against transaction body")
		}
		hashes = append(hashes, PaymentKeyHash(w.VKey))
	}

	for _, addr := range addresses {
		cred, err := addr.PaymentKeyHash()
		if err != nil {
			return err
		}
		found := false
		for _, kh := range hashes {
			if bytes.Equal(cred, kh) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no witness authorizes address %s", addr)
		}
	}
	return nil
}
