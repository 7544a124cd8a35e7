package cardano

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBody(t *testing.T) Body {
	t.Helper()

	key := NewSigningKeyFromSeed(bytes.Repeat([]byte{7}, 32))
	addrBytes, err := testAddress(t, key.PublicKey()).Bytes()
	require.NoError(t, err)

	return Body{
		Inputs: []Input{
			{TxHash: bytes.Repeat([]byte{0x11}, 32), Index: 0},
			{TxHash: bytes.Repeat([]byte{0x22}, 32), Index: 3},
		},
		Outputs: []Output{
			{Address: addrBytes, Amount: 5_000_000},
			{Address: addrBytes, Amount: 1_250_000},
		},
		Fee: 170_000,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tx, err := NewTransaction(testBody(t), nil)
	require.NoError(t, err)

	encoded, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)
	assert.Equal(t, tx.Body, decoded.Body)
	assert.True(t, decoded.IsValid)
	assert.Nil(t, decoded.AuxData)

	reencoded, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded, "decode then encode must be byte-identical")
}

func TestRoundTripWithAuxData(t *testing.T) {
	tx, err := NewTransaction(testBody(t), EscrowMetadata("-100123"))
	require.NoError(t, err)
	require.NotEmpty(t, tx.Body.AuxDataHash)

	encoded, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)
	assert.Equal(t, tx.Body.AuxDataHash, decoded.Body.AuxDataHash)
	assert.NotNil(t, decoded.AuxData)

	reencoded, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestIDIgnoresWitnesses(t *testing.T) {
	tx, err := NewTransaction(testBody(t), nil)
	require.NoError(t, err)

	unsignedID, err := tx.ID()
	require.NoError(t, err)
	require.Len(t, unsignedID, 64)

	bodyBytes, err := tx.BodyBytes()
	require.NoError(t, err)

	key := NewSigningKeyFromSeed(bytes.Repeat([]byte{9}, 32))
	tx.SetWitnesses(WitnessSet{VKeyWitnesses: []VKeyWitness{key.WitnessBody(bodyBytes)}})

	signedID, err := tx.ID()
	require.NoError(t, err)
	assert.Equal(t, unsignedID, signedID)
}

func TestIDStableAcrossDecode(t *testing.T) {
	tx, err := NewTransaction(testBody(t), EscrowMetadata("42"))
	require.NoError(t, err)

	originalID, err := tx.ID()
	require.NoError(t, err)

	encoded, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)

	decodedID, err := decoded.ID()
	require.NoError(t, err)
	assert.Equal(t, originalID, decodedID)
}

func TestSetWitnessSetCBORPreservesClientBytes(t *testing.T) {
	tx, err := NewTransaction(testBody(t), nil)
	require.NoError(t, err)

	bodyBytes, err := tx.BodyBytes()
	require.NoError(t, err)

	// A client serializes its own witness set and sends it back.
	key := NewSigningKeyFromSeed(bytes.Repeat([]byte{5}, 32))
	clientWS := WitnessSet{VKeyWitnesses: []VKeyWitness{key.WitnessBody(bodyBytes)}}
	clientBytes, err := encMode.Marshal(&clientWS)
	require.NoError(t, err)

	require.NoError(t, tx.SetWitnessSetCBOR(clientBytes))
	assert.Len(t, tx.Witnesses.VKeyWitnesses, 1)

	encoded, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(encoded)
	require.NoError(t, err)
	assert.Equal(t, clientWS.VKeyWitnesses, decoded.Witnesses.VKeyWitnesses)
}

func TestDecodeRejectsWrongArity(t *testing.T) {
	data, err := encMode.Marshal([]interface{}{1, 2})
	require.NoError(t, err)

	_, err = DecodeTransaction(data)
	assert.Error(t, err)
}
