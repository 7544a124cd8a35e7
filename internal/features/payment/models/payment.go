package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipient is one destination and its amount in display units (ADA).
// Amounts are truncated to 6 decimals before conversion to lovelace.
type Recipient struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

// CreatePaymentRequest asks for an unsigned transaction paying one chat
// member from another.
type CreatePaymentRequest struct {
	SenderChatID     string          `json:"sender_chat_id" binding:"required"`
	ReceiverChatID   string          `json:"receiver_chat_id" binding:"required"`
	ReceiverUsername string          `json:"receiver_username"`
	Client           string          `json:"client"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
}

// UnsignedTxRecord is a stored unsigned transaction awaiting its witness.
// TxCBORHex round-trips byte-for-byte: the client signs exactly these bytes.
type UnsignedTxRecord struct {
	ID               string          `json:"id"`
	TxID             string          `json:"tx_id"`
	TxCBORHex        string          `json:"tx_cbor"`
	Amount           decimal.Decimal `json:"amount"`
	SenderChatID     string          `json:"sender_chat_id"`
	ReceiverChatID   string          `json:"receiver_chat_id"`
	ReceiverUsername string          `json:"receiver_username,omitempty"`
	SenderAddresses  []string        `json:"sender_addresses"`
	Escrowed         bool            `json:"escrowed"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SubmitPaymentRequest carries the witness produced by the client wallet for
// a previously stored unsigned transaction.
type SubmitPaymentRequest struct {
	RecordID   string `json:"tx_id" binding:"required"`
	WitnessHex string `json:"witness" binding:"required"`
}

// SubmitPaymentResponse reports the on-chain transaction id after submission.
type SubmitPaymentResponse struct {
	TxID string `json:"tx_id"`
}

// CheckTransactionResponse reports whether a transaction is visible on-chain.
type CheckTransactionResponse struct {
	TxID      string `json:"tx_id"`
	Confirmed bool   `json:"confirmed"`
}
