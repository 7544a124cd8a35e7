package repository

import (
	"context"
	"errors"
	"time"

	"cardabot-backend/internal/features/chat/models"
)

// Storage-level sentinel errors.
var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrChatExists    = errors.New("chat already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("link token not found")
)

// ChatRepository persists chat and user records and owns the linking-token
// lifecycle, since a token is a field of its chat record.
type ChatRepository interface {
	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, client, chatID string) (*models.Chat, error)
	ListChats(ctx context.Context, clientFilter string) ([]*models.Chat, error)
	UpdateChat(ctx context.Context, chat *models.Chat) error
	DeleteChat(ctx context.Context, client, chatID string) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByStake(ctx context.Context, stakeAddress string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	// SetLinkToken stores a freshly issued token on the chat, replacing and
	// invalidating any previous one.
	SetLinkToken(ctx context.Context, client, chatID, token string, issuedAt time.Time) error

	// ConsumeLinkToken atomically exchanges a token for a wallet binding:
	// the owning chat's token field is cleared and the chat is bound to the
	// user holding stakeAddress (created if new) in one conditional
	// read-modify-write. Tokens older than ttl are rejected. Returns
	// ErrTokenNotFound when the token was never issued, already consumed,
	// or expired. Two concurrent consumers of the same token cannot both
	// succeed.
	ConsumeLinkToken(ctx context.Context, token, stakeAddress string, ttl time.Duration) (*models.Chat, *models.User, error)

	// SweepLinkTokens unconditionally clears every outstanding token and
	// returns how many were cleared. Safe to run concurrently with consume
	// operations.
	SweepLinkTokens(ctx context.Context) (int, error)
}
