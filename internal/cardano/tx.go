package cardano

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em

	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// Input references one unspent output being consumed.
type Input struct {
	_      struct{} `cbor:",toarray"`
	TxHash []byte
	Index  uint32
}

// Output pays Amount lovelace to the raw address payload.
type Output struct {
	_       struct{} `cbor:",toarray"`
	Address []byte
	Amount  uint64
}

// Body is the signed portion of a transaction. The transaction id is the
// blake2b-256 digest of its serialized form.
type Body struct {
	Inputs      []Input  `cbor:"0,keyasint"`
	Outputs     []Output `cbor:"1,keyasint"`
	Fee         uint64   `cbor:"2,keyasint"`
	TTL         uint64   `cbor:"3,keyasint,omitempty"`
	AuxDataHash []byte   `cbor:"7,keyasint,omitempty"`
}

// VKeyWitness is a verification key plus its signature over the body hash.
type VKeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

// WitnessSet carries the witnesses authorizing a transaction's inputs.
type WitnessSet struct {
	VKeyWitnesses []VKeyWitness `cbor:"0,keyasint,omitempty"`
}

// AuxData is the transaction's auxiliary metadata, keyed by numeric label.
type AuxData map[uint64]interface{}

// Transaction is the on-wire unit: [body, witness set, validity flag, aux data].
//
// Decoding keeps the original body, witness-set and aux-data bytes so that
// Encode reproduces the input byte for byte. This matters because unsigned
// transactions are stored and later recombined with a witness produced by an
// independent client; any re-encoding drift would change the transaction id
// the client signed.
type Transaction struct {
	Body      Body
	Witnesses WitnessSet
	IsValid   bool
	AuxData   AuxData

	rawBody      cbor.RawMessage
	rawWitnesses cbor.RawMessage
	rawAux       cbor.RawMessage
}

// NewTransaction builds an unwitnessed transaction around body. When aux is
// non-nil its hash is stamped into the body before first serialization.
func NewTransaction(body Body, aux AuxData) (*Transaction, error) {
	if aux != nil {
		auxBytes, err := encMode.Marshal(aux)
		if err != nil {
			return nil, fmt.Errorf("marshal aux data: %w", err)
		}
		h := blake2b.Sum256(auxBytes)
		body.AuxDataHash = h[:]
	}
	return &Transaction{Body: body, IsValid: true, AuxData: aux}, nil
}

// DecodeTransaction parses a CBOR-encoded transaction, retaining raw bytes.
func DecodeTransaction(data []byte) (*Transaction, error) {
	var parts []cbor.RawMessage
	if err := decMode.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("unmarshal transaction envelope: %w", err)
	}
	if len(parts) != 4 {
		return nil, fmt.Errorf("unexpected transaction arity %d", len(parts))
	}

	tx := &Transaction{}
	if err := decMode.Unmarshal(parts[0], &tx.Body); err != nil {
		return nil, fmt.Errorf("unmarshal transaction body: %w", err)
	}
	if err := decMode.Unmarshal(parts[1], &tx.Witnesses); err != nil {
		return nil, fmt.Errorf("unmarshal witness set: %w", err)
	}
	if err := decMode.Unmarshal(parts[2], &tx.IsValid); err != nil {
		return nil, fmt.Errorf("unmarshal validity flag: %w", err)
	}
	if !isCBORNull(parts[3]) {
		if err := decMode.Unmarshal(parts[3], &tx.AuxData); err != nil {
			return nil, fmt.Errorf("unmarshal aux data: %w", err)
		}
		tx.rawAux = parts[3]
	}

	tx.rawBody = parts[0]
	tx.rawWitnesses = parts[1]
	return tx, nil
}

// Encode serializes the transaction, reusing retained raw bytes when present.
func (t *Transaction) Encode() ([]byte, error) {
	body, err := t.BodyBytes()
	if err != nil {
		return nil, err
	}

	wit := t.rawWitnesses
	if wit == nil {
		wit, err = encMode.Marshal(&t.Witnesses)
		if err != nil {
			return nil, fmt.Errorf("marshal witness set: %w", err)
		}
	}

	var aux interface{}
	switch {
	case t.rawAux != nil:
		aux = t.rawAux
	case t.AuxData != nil:
		aux = t.AuxData
	}

	return encMode.Marshal([]interface{}{
		cbor.RawMessage(body),
		cbor.RawMessage(wit),
		t.IsValid,
		aux,
	})
}

// BodyBytes returns the canonical serialized body.
func (t *Transaction) BodyBytes() ([]byte, error) {
	if t.rawBody != nil {
		return t.rawBody, nil
	}
	b, err := encMode.Marshal(&t.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction body: %w", err)
	}
	return b, nil
}

// ID is the hex transaction id: blake2b-256 over the body bytes. Witnesses do
// not participate, so the id is identical before and after composition.
func (t *Transaction) ID() (string, error) {
	b, err := t.BodyBytes()
	if err != nil {
		return "", err
	}
	h := blake2b.Sum256(b)
	return hex.EncodeToString(h[:]), nil
}

// SetWitnessSetCBOR replaces the witness set with one supplied in serialized
// form, keeping the client's exact bytes.
func (t *Transaction) SetWitnessSetCBOR(raw []byte) error {
	var ws WitnessSet
	if err := decMode.Unmarshal(raw, &ws); err != nil {
		return fmt.Errorf("unmarshal witness set: %w", err)
	}
	t.Witnesses = ws
	t.rawWitnesses = append(cbor.RawMessage(nil), raw...)
	return nil
}

// SetWitnesses replaces the witness set with locally produced witnesses.
func (t *Transaction) SetWitnesses(ws WitnessSet) {
	t.Witnesses = ws
	t.rawWitnesses = nil
}

func isCBORNull(raw cbor.RawMessage) bool {
	return len(raw) == 1 && (raw[0] == 0xf6 || raw[0] == 0xf7)
}
