package cardano

import "fmt"

// FeeParams are the ledger's linear fee coefficients:
// fee = Constant + PerByte × serialized size.
type FeeParams struct {
	PerByte  uint64
	Constant uint64
}

// Fee computes the fee for a transaction of the given serialized size.
func (p FeeParams) Fee(size int) uint64 {
	return p.Constant + p.PerByte*uint64(size)
}

// EstimateFee derives the fee a signed transaction will pay. Fee depends on
// the final signed size, which itself depends on the fee field, so the body is
// first serialized with a placeholder maximum fee and witnessed by the fixed
// reference key; ed25519 witnesses are constant-size, so the measured length
// matches what the real witnesses will produce.
func EstimateFee(body Body, aux AuxData, numWitnesses int, params FeeParams, maxFee uint64) (uint64, error) {
	if numWitnesses < 1 {
		numWitnesses = 1
	}

	body.Fee = maxFee
	tx, err := NewTransaction(body, aux)
	if err != nil {
		return 0, err
	}

	bodyBytes, err := tx.BodyBytes()
	if err != nil {
		return 0, err
	}

	ref := ReferenceKey()
	witnesses := make([]VKeyWitness, numWitnesses)
	for i := range witnesses {
		witnesses[i] = ref.WitnessBody(bodyBytes)
	}
	tx.SetWitnesses(WitnessSet{VKeyWitnesses: witnesses})

	data, err := tx.Encode()
	if err != nil {
		return 0, fmt.Errorf("encode provisional transaction: %w", err)
	}
	return params.Fee(len(data)), nil
}
