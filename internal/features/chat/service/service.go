package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/bech32"

	apperrors "cardabot-backend/internal/common/errors"
	"cardabot-backend/internal/features/chat/models"
	"cardabot-backend/internal/features/chat/repository"
)

type ChatService interface {
	CreateChat(ctx context.Context, req *models.CreateChatRequest) (*models.ChatResponse, error)
	GetChat(ctx context.Context, client, chatID string) (*models.ChatResponse, error)
	ListChats(ctx context.Context, clientFilter string) ([]*models.ChatResponse, error)
	UpdateChat(ctx context.Context, client, chatID string, req *models.UpdateChatRequest) (*models.ChatResponse, error)
	DeleteChat(ctx context.Context, client, chatID string) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type chatService struct {
	repo repository.ChatRepository
}

func NewChatService(repo repository.ChatRepository) ChatService {
	return &chatService{repo: repo}
}

func (s *chatService) CreateChat(ctx context.Context, req *models.CreateChatRequest) (*models.ChatResponse, error) {
	poolID := req.DefaultPoolID
	if poolID == "" {
		poolID = models.DefaultPoolID
	}
	if !isValidPoolID(poolID) {
		return nil, apperrors.NewValidationError("default_pool_id", "not a valid pool id")
	}

	now := time.Now()
	chat := &models.Chat{
		ChatID:          req.ChatID,
		Client:          req.Client,
		DefaultLanguage: req.DefaultLanguage,
		DefaultPoolID:   poolID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateChat(ctx, chat); err != nil {
		if errors.Is(err, repository.ErrChatExists) {
			return nil, apperrors.New(apperrors.ErrCodeConflict, "Chat already exists").
				WithDetail("chat_id", req.ChatID)
		}
		return nil, apperrors.NewDatabaseError("create chat", err)
	}
	return models.ToChatResponse(chat), nil
}

func (s *chatService) GetChat(ctx context.Context, client, chatID string) (*models.ChatResponse, error) {
	chat, err := s.repo.GetChat(ctx, client, chatID)
	if err != nil {
		return nil, mapChatError(err, chatID)
	}
	return models.ToChatResponse(chat), nil
}

func (s *chatService) ListChats(ctx context.Context, clientFilter string) ([]*models.ChatResponse, error) {
	chats, err := s.repo.ListChats(ctx, clientFilter)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list chats", err)
	}

	responses := make([]*models.ChatResponse, 0, len(chats))
	for _, chat := range chats {
		responses = append(responses, models.ToChatResponse(chat))
	}
	return responses, nil
}

func (s *chatService) UpdateChat(ctx context.Context, client, chatID string, req *models.UpdateChatRequest) (*models.ChatResponse, error) {
	chat, err := s.repo.GetChat(ctx, client, chatID)
	if err != nil {
		return nil, mapChatError(err, chatID)
	}

	if req.DefaultLanguage != nil {
		chat.DefaultLanguage = *req.DefaultLanguage
	}
	if req.DefaultPoolID != nil {
		if !isValidPoolID(*req.DefaultPoolID) {
			return nil, apperrors.NewValidationError("default_pool_id", "not a valid pool id")
		}
		chat.DefaultPoolID = *req.DefaultPoolID
	}
	chat.UpdatedAt = time.Now()

	if err := s.repo.UpdateChat(ctx, chat); err != nil {
		return nil, mapChatError(err, chatID)
	}
	return models.ToChatResponse(chat), nil
}

func (s *chatService) DeleteChat(ctx context.Context, client, chatID string) error {
	if err := s.repo.DeleteChat(ctx, client, chatID); err != nil {
		return mapChatError(err, chatID)
	}
	return nil
}

func (s *chatService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.New(apperrors.ErrCodeUserNotFound, "User not found")
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return user, nil
}

func (s *chatService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}
	return users, nil
}

func (s *chatService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperrors.New(apperrors.ErrCodeUserNotFound, "User not found")
		}
		return apperrors.NewDatabaseError("delete user", err)
	}
	return nil
}

func mapChatError(err error, chatID string) error {
	if errors.Is(err, repository.ErrChatNotFound) {
		return apperrors.NewChatNotFoundError(chatID)
	}
	return apperrors.NewDatabaseError("chat", err)
}

// isValidPoolID checks the bech32 form of a stake pool id.
func isValidPoolID(poolID string) bool {
	if !strings.HasPrefix(poolID, "pool1") {
		return false
	}
	_, _, err := bech32.DecodeNoLimit(poolID)
	return err == nil
}
