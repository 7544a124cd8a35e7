package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"cardabot-backend/internal/cardano"
	apperrors "cardabot-backend/internal/common/errors"
	"cardabot-backend/internal/common/metrics"
	"cardabot-backend/internal/features/link/models"
	chatrepo "cardabot-backend/internal/features/chat/repository"
)

// tokenBytes gives 256 bits of entropy per token.
const tokenBytes = 32

type LinkService interface {
	// IssueToken mints a linking token for a chat, replacing any live one.
	IssueToken(ctx context.Context, client, chatID string) (*models.TokenResponse, error)

	// Connect consumes a token and binds the presenting wallet to the
	// owning chat. Exactly one concurrent Connect per token can succeed.
	Connect(ctx context.Context, req *models.ConnectRequest) (*models.ConnectResponse, error)
}

type linkService struct {
	repo     chatrepo.ChatRepository
	tokenTTL time.Duration
}

func NewLinkService(repo chatrepo.ChatRepository, tokenTTL time.Duration) LinkService {
	return &linkService{repo: repo, tokenTTL: tokenTTL}
}

func (s *linkService) IssueToken(ctx context.Context, client, chatID string) (*models.TokenResponse, error) {
	token, err := generateToken()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to generate token")
	}

	issuedAt := time.Now()
	if err := s.repo.SetLinkToken(ctx, client, chatID, token, issuedAt); err != nil {
		if errors.Is(err, chatrepo.ErrChatNotFound) {
			return nil, apperrors.NewChatNotFoundError(chatID)
		}
		return nil, apperrors.NewDatabaseError("issue link token", err)
	}

	metrics.TokensIssued.Inc()
	return &models.TokenResponse{
		Token:     token,
		ExpiresAt: issuedAt.Add(s.tokenTTL),
	}, nil
}

func (s *linkService) Connect(ctx context.Context, req *models.ConnectRequest) (*models.ConnectResponse, error) {
	stake, err := cardano.ParseStakeAddress(req.StakeAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("stake_key", err.Error())
	}

	chat, user, err := s.repo.ConsumeLinkToken(ctx, req.Token, stake.String(), s.tokenTTL)
	if err != nil {
		if errors.Is(err, chatrepo.ErrTokenNotFound) {
			return nil, apperrors.NewTokenNotFoundError()
		}
		return nil, apperrors.NewDatabaseError("consume link token", err)
	}

	return &models.ConnectResponse{
		ChatID:       chat.ChatID,
		Client:       chat.Client,
		UserID:       user.ID,
		StakeAddress: user.StakeAddress,
	}, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
