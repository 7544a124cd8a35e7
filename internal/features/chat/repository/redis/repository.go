package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cardabot-backend/internal/features/chat/models"
	"cardabot-backend/internal/features/chat/repository"
)

const (
	keyPrefixChat      = "chat:"
	keyPrefixToken     = "link_token:"
	keyPrefixUser      = "user:"
	keyPrefixUserStake = "user_stake:"
	keyChatsIndex      = "chats:index"
	keyChatsLinking    = "chats:linking"
	keyUsersIndex      = "users:index"

	// Attempts for optimistic (WATCH-based) transactions before giving up.
	maxTxRetries = 3
)

type redisRepository struct {
	client *redis.Client
}

func NewChatRepository(client *redis.Client) repository.ChatRepository {
	return &redisRepository{client: client}
}

func makeChatKey(client, chatID string) string {
	return keyPrefixChat + client + ":" + chatID
}

func makeTokenKey(token string) string {
	return keyPrefixToken + token
}

func (r *redisRepository) CreateChat(ctx context.Context, chat *models.Chat) error {
	data, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}

	key := makeChatKey(chat.Client, chat.ChatID)
	ok, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	if !ok {
		return repository.ErrChatExists
	}
	return r.client.SAdd(ctx, keyChatsIndex, key).Err()
}

func (r *redisRepository) GetChat(ctx context.Context, client, chatID string) (*models.Chat, error) {
	return r.getChatByKey(ctx, makeChatKey(client, chatID))
}

func (r *redisRepository) getChatByKey(ctx context.Context, key string) (*models.Chat, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	var chat models.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat: %w", err)
	}
	return &chat, nil
}

func (r *redisRepository) ListChats(ctx context.Context, clientFilter string) ([]*models.Chat, error) {
	keys, err := r.client.SMembers(ctx, keyChatsIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	chats := make([]*models.Chat, 0, len(keys))
	for _, key := range keys {
		chat, err := r.getChatByKey(ctx, key)
		if errors.Is(err, repository.ErrChatNotFound) {
			// Index entry outlived its record; drop it.
			r.client.SRem(ctx, keyChatsIndex, key)
			continue
		}
		if err != nil {
			return nil, err
		}
		if clientFilter != "" && chat.Client != clientFilter {
			continue
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func (r *redisRepository) UpdateChat(ctx context.Context, chat *models.Chat) error {
	key := makeChatKey(chat.Client, chat.ChatID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check chat: %w", err)
	}
	if exists == 0 {
		return repository.ErrChatNotFound
	}

	data, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}
	return r.client.Set(ctx, key, data, 0).Err()
}

func (r *redisRepository) DeleteChat(ctx context.Context, client, chatID string) error {
	key := makeChatKey(client, chatID)
	chat, err := r.getChatByKey(ctx, key)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	if chat.LinkToken != "" {
		pipe.Del(ctx, makeTokenKey(chat.LinkToken))
	}
	pipe.Del(ctx, key)
	pipe.SRem(ctx, keyChatsIndex, key)
	pipe.SRem(ctx, keyChatsLinking, key)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	data, err := r.client.Get(ctx, keyPrefixUser+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (r *redisRepository) GetUserByStake(ctx context.Context, stakeAddress string) (*models.User, error) {
	id, err := r.client.Get(ctx, keyPrefixUserStake+stakeAddress).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by stake: %w", err)
	}
	return r.GetUser(ctx, id)
}

func (r *redisRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	ids, err := r.client.SMembers(ctx, keyUsersIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetUser(ctx, id)
		if errors.Is(err, repository.ErrUserNotFound) {
			r.client.SRem(ctx, keyUsersIndex, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *redisRepository) DeleteUser(ctx context.Context, id string) error {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, keyPrefixUser+id)
	pipe.Del(ctx, keyPrefixUserStake+user.StakeAddress)
	pipe.SRem(ctx, keyUsersIndex, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) SetLinkToken(ctx context.Context, client, chatID, token string, issuedAt time.Time) error {
	chatKey := makeChatKey(client, chatID)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, chatKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrChatNotFound
		}
		if err != nil {
			return err
		}

		var chat models.Chat
		if err := json.Unmarshal(data, &chat); err != nil {
			return fmt.Errorf("failed to unmarshal chat: %w", err)
		}

		previous := chat.LinkToken
		chat.LinkToken = token
		chat.TokenIssuedAt = issuedAt
		chat.UpdatedAt = time.Now()

		updated, err := json.Marshal(&chat)
		if err != nil {
			return fmt.Errorf("failed to marshal chat: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previous != "" {
				// Reissuing invalidates the prior token immediately.
				pipe.Del(ctx, makeTokenKey(previous))
			}
			pipe.Set(ctx, chatKey, updated, 0)
			pipe.Set(ctx, makeTokenKey(token), chatKey, 0)
			pipe.SAdd(ctx, keyChatsLinking, chatKey)
			return nil
		})
		return err
	}

	return r.withRetries(ctx, txf, chatKey)
}

func (r *redisRepository) ConsumeLinkToken(ctx context.Context, token, stakeAddress string, ttl time.Duration) (*models.Chat, *models.User, error) {
	tokenKey := makeTokenKey(token)
	stakeKey := keyPrefixUserStake + stakeAddress

	var boundChat *models.Chat
	var boundUser *models.User

	txf := func(tx *redis.Tx) error {
		chatKey, err := tx.Get(ctx, tokenKey).Result()
		if errors.Is(err, redis.Nil) {
			return repository.ErrTokenNotFound
		}
		if err != nil {
			return err
		}

		// Everything read below participates in the conditional write.
		if err := tx.Watch(ctx, chatKey, stakeKey).Err(); err != nil {
			return err
		}

		data, err := tx.Get(ctx, chatKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrTokenNotFound
		}
		if err != nil {
			return err
		}

		var chat models.Chat
		if err := json.Unmarshal(data, &chat); err != nil {
			return fmt.Errorf("failed to unmarshal chat: %w", err)
		}
		if chat.LinkToken != token {
			return repository.ErrTokenNotFound
		}
		if ttl > 0 && time.Since(chat.TokenIssuedAt) >= ttl {
			return repository.ErrTokenNotFound
		}

		user := &models.User{}
		newUser := false
		userID, err := tx.Get(ctx, stakeKey).Result()
		switch {
		case errors.Is(err, redis.Nil):
			newUser = true
			user.ID = uuid.New().String()
			user.StakeAddress = stakeAddress
			user.CreatedAt = time.Now()
		case err != nil:
			return err
		default:
			userData, err := tx.Get(ctx, keyPrefixUser+userID).Bytes()
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}
			if err := json.Unmarshal(userData, user); err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
		}

		chat.LinkToken = ""
		chat.TokenIssuedAt = time.Time{}
		chat.UserID = user.ID
		chat.UpdatedAt = time.Now()

		updatedChat, err := json.Marshal(&chat)
		if err != nil {
			return fmt.Errorf("failed to marshal chat: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, tokenKey)
			pipe.SRem(ctx, keyChatsLinking, chatKey)
			pipe.Set(ctx, chatKey, updatedChat, 0)
			if newUser {
				userData, err := json.Marshal(user)
				if err != nil {
					return fmt.Errorf("failed to marshal user: %w", err)
				}
				pipe.Set(ctx, keyPrefixUser+user.ID, userData, 0)
				pipe.Set(ctx, stakeKey, user.ID, 0)
				pipe.SAdd(ctx, keyUsersIndex, user.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}

		boundChat = &chat
		boundUser = user
		return nil
	}

	if err := r.withRetries(ctx, txf, tokenKey); err != nil {
		return nil, nil, err
	}
	return boundChat, boundUser, nil
}

func (r *redisRepository) SweepLinkTokens(ctx context.Context) (int, error) {
	chatKeys, err := r.client.SMembers(ctx, keyChatsLinking).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list linking chats: %w", err)
	}

	cleared := 0
	for _, chatKey := range chatKeys {
		key := chatKey
		txf := func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				tx.SRem(ctx, keyChatsLinking, key)
				return nil
			}
			if err != nil {
				return err
			}

			var chat models.Chat
			if err := json.Unmarshal(data, &chat); err != nil {
				return fmt.Errorf("failed to unmarshal chat: %w", err)
			}
			if chat.LinkToken == "" {
				tx.SRem(ctx, keyChatsLinking, key)
				return nil
			}

			token := chat.LinkToken
			chat.LinkToken = ""
			chat.TokenIssuedAt = time.Time{}
			chat.UpdatedAt = time.Now()

			updated, err := json.Marshal(&chat)
			if err != nil {
				return fmt.Errorf("failed to marshal chat: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, makeTokenKey(token))
				pipe.Set(ctx, key, updated, 0)
				pipe.SRem(ctx, keyChatsLinking, key)
				return nil
			})
			if err == nil {
				cleared++
			}
			return err
		}

		// A conflict means a consume landed first; its write already
		// cleared the token, so skipping is correct.
		if err := r.client.Watch(ctx, txf, key); err != nil && !errors.Is(err, redis.TxFailedErr) {
			return cleared, err
		}
	}
	return cleared, nil
}

// withRetries runs an optimistic transaction, retrying on write conflicts.
func (r *redisRepository) withRetries(ctx context.Context, txf func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = r.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("transaction conflict after %d attempts: %w", maxTxRetries, err)
}
