package models

import "time"

// TokenResponse returns a freshly issued linking token. This is the only
// place the token value is ever exposed.
type TokenResponse struct {
	Token     string    `json:"tmp_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConnectRequest exchanges a linking token for a wallet binding.
type ConnectRequest struct {
	Token        string `json:"token" binding:"required"`
	StakeAddress string `json:"stake_key" binding:"required"`
}

// ConnectResponse reports the binding that was created.
type ConnectResponse struct {
	ChatID       string `json:"chat_id"`
	Client       string `json:"client"`
	UserID       string `json:"user_id"`
	StakeAddress string `json:"stake_address"`
}
