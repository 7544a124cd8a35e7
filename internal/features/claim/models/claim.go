package models

import "github.com/shopspring/decimal"

// ClaimRequest asks for every escrowed output owed to a chat to be paid out
// to the claimant's address.
type ClaimRequest struct {
	ChatID          string `json:"chat_id" binding:"required"`
	ReceiverAddress string `json:"receiver_address" binding:"required"`
}

// ClaimResponse reports the outcome. Claimed false with no TxID means there
// was nothing to claim; no transaction was submitted.
type ClaimResponse struct {
	Claimed bool            `json:"claimed"`
	TxID    string          `json:"tx_id,omitempty"`
	Amount  decimal.Decimal `json:"amount,omitempty"`
}
