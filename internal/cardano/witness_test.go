package cardano

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWitnessSetCovers(t *testing.T) {
	key := NewSigningKeyFromSeed(bytes.Repeat([]byte{10}, 32))
	addr := testAddress(t, key.PublicKey())

	tx, err := NewTransaction(testBody(t), nil)
	require.NoError(t, err)
	bodyBytes, err := tx.BodyBytes()
	require.NoError(t, err)

	ws := WitnessSet{VKeyWitnesses: []VKeyWitness{key.WitnessBody(bodyBytes)}}
	assert.NoError(t, ws.Covers([]Address{addr}, bodyBytes))
}

func TestWitnessSetCoversRejectsUnauthorizedAddress(t *testing.T) {
	signer := NewSigningKeyFromSeed(bytes.Repeat([]byte{11}, 32))
	other := NewSigningKeyFromSeed(bytes.Repeat([]byte{12}, 32))
	otherAddr := testAddress(t, other.PublicKey())

	tx, err := NewTransaction(testBody(t), nil)
	require.NoError(t, err)
	bodyBytes, err := tx.BodyBytes()
	require.NoError(t, err)

	ws := WitnessSet{VKeyWitnesses: []VKeyWitness{signer.WitnessBody(bodyBytes)}}
	assert.Error(t, ws.Covers([]Address{otherAddr}, bodyBytes))
}

func TestWitnessSetCoversRejectsBadSignature(t *testing.T) {
	key := NewSigningKeyFromSeed(bytes.Repeat([]byte{13}, 32))
	addr := testAddress(t, key.PublicKey())

	tx, err := NewTransaction(testBody(t), nil)
	require.NoError(t, err)
	bodyBytes, err := tx.BodyBytes()
	require.NoError(t, err)

	// Signature over different bytes must not verify.
	w := key.WitnessBody(append([]byte{0xff}, bodyBytes...))
	ws := WitnessSet{VKeyWitnesses: []VKeyWitness{w}}
	assert.Error(t, ws.Covers([]Address{addr}, bodyBytes))
}

func TestWitnessSetCoversMultipleSenders(t *testing.T) {
	keyA := NewSigningKeyFromSeed(bytes.Repeat([]byte{14}, 32))
	keyB := NewSigningKeyFromSeed(bytes.Repeat([]byte{15}, 32))
	addrA := testAddress(t, keyA.PublicKey())
	addrB := testAddress(t, keyB.PublicKey())

	tx, err := NewTransaction(testBody(t), nil)
	require.NoError(t, err)
	bodyBytes, err := tx.BodyBytes()
	require.NoError(t, err)

	full := WitnessSet{VKeyWitnesses: []VKeyWitness{
		keyA.WitnessBody(bodyBytes),
		keyB.WitnessBody(bodyBytes),
	}}
	assert.NoError(t, full.Covers([]Address{addrA, addrB}, bodyBytes))

	partial := WitnessSet{VKeyWitnesses: []VKeyWitness{keyA.WitnessBody(bodyBytes)}}
	assert.Error(t, partial.Covers([]Address{addrA, addrB}, bodyBytes))
}

func TestPaymentKeyHashLength(t *testing.T) {
	key := NewSigningKeyFromSeed(bytes.Repeat([]byte{16}, 32))
	assert.Len(t, PaymentKeyHash(key.PublicKey()), 28)
}
