package models

import "time"

// DefaultPoolID is the stake pool preselected for new chats.
const DefaultPoolID = "pool1ndtsklata6rphamr6jw2p3ltnzayq3pezhg0djvn7n5js8rqlzh"

// Known chat clients.
const (
	ClientTelegram = "TELEGRAM"
)

// Chat is one chat record: a conversation identity on some client, optionally
// bound to a wallet user. LinkToken, when set, is the live linking token for
// this chat; at most one exists per chat at any instant.
type Chat struct {
	ChatID          string    `json:"chat_id"`
	Client          string    `json:"client"`
	DefaultLanguage string    `json:"default_language,omitempty"`
	DefaultPoolID   string    `json:"default_pool_id"`
	UserID          string    `json:"user_id,omitempty"`
	LinkToken       string    `json:"link_token,omitempty"`
	TokenIssuedAt   time.Time `json:"token_issued_at,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// User is a wallet owner identified by a unique stake address.
type User struct {
	ID           string    `json:"id"`
	StakeAddress string    `json:"stake_address"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChatResponse is the API view of a chat. The linking token is never exposed
// through chat reads; it is returned once, at issue time.
type ChatResponse struct {
	ChatID          string `json:"chat_id"`
	Client          string `json:"client"`
	DefaultLanguage string `json:"default_language,omitempty"`
	DefaultPoolID   string `json:"default_pool_id"`
	UserID          string `json:"user_id,omitempty"`
	Linked          bool   `json:"linked"`
}

// CreateChatRequest creates a new chat record.
type CreateChatRequest struct {
	ChatID          string `json:"chat_id" binding:"required"`
	Client          string `json:"client" binding:"required"`
	DefaultLanguage string `json:"default_language"`
	DefaultPoolID   string `json:"default_pool_id"`
}

// UpdateChatRequest patches mutable chat fields.
type UpdateChatRequest struct {
	DefaultLanguage *string `json:"default_language"`
	DefaultPoolID   *string `json:"default_pool_id"`
}

func ToChatResponse(chat *Chat) *ChatResponse {
	return &ChatResponse{
		ChatID:          chat.ChatID,
		Client:          chat.Client,
		DefaultLanguage: chat.DefaultLanguage,
		DefaultPoolID:   chat.DefaultPoolID,
		UserID:          chat.UserID,
		Linked:          chat.UserID != "",
	}
}
