package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"cardabot-backend/internal/cardano"
)

// errLedgerQuery marks failures of the chain-query layer, which callers may
// retry; anything else from the builder is an internal consistency failure.
var errLedgerQuery = errors.New("ledger query failed")

// Outputs below this carry no economic value as change; the remainder is
// folded into the fee instead of producing a sub-minimum output the ledger
// would reject.
const minChangeLovelace = 1_000_000

// Payment is one resolved output: destination and lovelace amount.
type Payment struct {
	Address cardano.Address
	Amount  uint64
}

// TransactionBuilder assembles unsigned transactions from resolved sender
// addresses. The first sender address doubles as the change destination.
type TransactionBuilder struct {
	ledger    cardano.Ledger
	feeParams cardano.FeeParams
	maxFee    uint64
}

func NewTransactionBuilder(ledger cardano.Ledger, feeParams cardano.FeeParams, maxFee uint64) *TransactionBuilder {
	return &TransactionBuilder{ledger: ledger, feeParams: feeParams, maxFee: maxFee}
}

// BuildUnsigned constructs an unsigned transaction spending every unspent
// output of the sender addresses. When escrowChatID is non-empty the escrow
// tag is attached as auxiliary metadata. Input sufficiency is re-validated
// here regardless of what coin selection promised.
func (b *TransactionBuilder) BuildUnsigned(ctx context.Context, senders []cardano.Address, payments []Payment, escrowChatID string) (*cardano.Transaction, uint64, error) {
	if len(senders) == 0 {
		return nil, 0, fmt.Errorf("no sender addresses")
	}
	if len(payments) == 0 {
		return nil, 0, fmt.Errorf("no payment outputs")
	}

	var inputs []cardano.Input
	var totalIn uint64
	for _, sender := range senders {
		utxos, err := b.ledger.AddressUTxOs(ctx, sender)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: utxos of %s: %v", errLedgerQuery, sender, err)
		}
		for _, utxo := range utxos {
			txHash, err := hex.DecodeString(utxo.TxHash)
			if err != nil {
				return nil, 0, fmt.Errorf("invalid utxo tx hash %q: %w", utxo.TxHash, err)
			}
			inputs = append(inputs, cardano.Input{TxHash: txHash, Index: utxo.Index})
			totalIn += utxo.Amount
		}
	}
	if len(inputs) == 0 {
		return nil, 0, fmt.Errorf("sender addresses hold no unspent outputs")
	}

	var outputs []cardano.Output
	var totalOut uint64
	for _, payment := range payments {
		addrBytes, err := payment.Address.Bytes()
		if err != nil {
			return nil, 0, fmt.Errorf("invalid recipient address %s: %w", payment.Address, err)
		}
		outputs = append(outputs, cardano.Output{Address: addrBytes, Amount: payment.Amount})
		totalOut += payment.Amount
	}

	changeAddr, err := senders[0].Bytes()
	if err != nil {
		return nil, 0, fmt.Errorf("invalid change address %s: %w", senders[0], err)
	}

	var aux cardano.AuxData
	if escrowChatID != "" {
		aux = cardano.EscrowMetadata(escrowChatID)
	}

	if totalIn < totalOut {
		return nil, 0, fmt.Errorf("inputs %d lovelace cannot cover outputs %d lovelace", totalIn, totalOut)
	}

	// Size the transaction with a provisional change output so the fee
	// accounts for it; the placeholder amount only influences size.
	sized := append(append([]cardano.Output(nil), outputs...), cardano.Output{
		Address: changeAddr,
		Amount:  totalIn - totalOut,
	})
	fee, err := cardano.EstimateFee(cardano.Body{Inputs: inputs, Outputs: sized}, aux, len(senders), b.feeParams, b.maxFee)
	if err != nil {
		return nil, 0, fmt.Errorf("estimate fee: %w", err)
	}

	if totalIn < totalOut+fee {
		return nil, 0, fmt.Errorf("inputs %d lovelace cannot cover outputs %d plus fee %d", totalIn, totalOut, fee)
	}

	change := totalIn - totalOut - fee
	if change > 0 && change < minChangeLovelace {
		fee += change
		change = 0
	}
	if change > 0 {
		outputs = append(outputs, cardano.Output{Address: changeAddr, Amount: change})
	}

	tx, err := cardano.NewTransaction(cardano.Body{Inputs: inputs, Outputs: outputs, Fee: fee}, aux)
	if err != nil {
		return nil, 0, fmt.Errorf("assemble transaction: %w", err)
	}
	return tx, fee, nil
}
