package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cardabot-backend/internal/common/errors"
	"cardabot-backend/internal/features/chat/models"
	"cardabot-backend/internal/features/chat/repository"
)

type memRepo struct {
	repository.ChatRepository
	mu    sync.Mutex
	chats map[string]*models.Chat
	users map[string]*models.User
}

func newMemRepo() *memRepo {
	return &memRepo{
		chats: make(map[string]*models.Chat),
		users: make(map[string]*models.User),
	}
}

func key(client, chatID string) string { return client + ":" + chatID }

func (r *memRepo) CreateChat(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(chat.Client, chat.ChatID)
	if _, ok := r.chats[k]; ok {
		return repository.ErrChatExists
	}
	copied := *chat
	r.chats[k] = &copied
	return nil
}

func (r *memRepo) GetChat(_ context.Context, client, chatID string) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[key(client, chatID)]
	if !ok {
		return nil, repository.ErrChatNotFound
	}
	copied := *chat
	return &copied, nil
}

func (r *memRepo) ListChats(_ context.Context, clientFilter string) ([]*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Chat
	for _, chat := range r.chats {
		if clientFilter == "" || chat.Client == clientFilter {
			copied := *chat
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateChat(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(chat.Client, chat.ChatID)
	if _, ok := r.chats[k]; !ok {
		return repository.ErrChatNotFound
	}
	copied := *chat
	r.chats[k] = &copied
	return nil
}

func (r *memRepo) DeleteChat(_ context.Context, client, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(client, chatID)
	if _, ok := r.chats[k]; !ok {
		return repository.ErrChatNotFound
	}
	delete(r.chats, k)
	return nil
}

func (r *memRepo) GetUser(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memRepo) ListUsers(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func createRequest(chatID string) *models.CreateChatRequest {
	return &models.CreateChatRequest{
		ChatID: chatID,
		Client: models.ClientTelegram,
	}
}

func TestCreateChatDefaults(t *testing.T) {
	svc := NewChatService(newMemRepo())

	resp, err := svc.CreateChat(context.Background(), createRequest("3001"))
	require.NoError(t, err)
	assert.Equal(t, "3001", resp.ChatID)
	assert.Equal(t, models.DefaultPoolID, resp.DefaultPoolID)
	assert.False(t, resp.Linked)
}

func TestCreateChatDuplicate(t *testing.T) {
	svc := NewChatService(newMemRepo())

	_, err := svc.CreateChat(context.Background(), createRequest("3001"))
	require.NoError(t, err)

	_, err = svc.CreateChat(context.Background(), createRequest("3001"))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
}

func TestCreateChatRejectsBadPoolID(t *testing.T) {
	svc := NewChatService(newMemRepo())

	req := createRequest("3001")
	req.DefaultPoolID = "not-a-pool"

	_, err := svc.CreateChat(context.Background(), req)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestGetChatNotFound(t *testing.T) {
	svc := NewChatService(newMemRepo())

	_, err := svc.GetChat(context.Background(), models.ClientTelegram, "missing")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeChatNotFound, appErr.Code)
}

func TestUpdateChatLanguage(t *testing.T) {
	svc := NewChatService(newMemRepo())

	_, err := svc.CreateChat(context.Background(), createRequest("3001"))
	require.NoError(t, err)

	lang := "es"
	resp, err := svc.UpdateChat(context.Background(), models.ClientTelegram, "3001",
		&models.UpdateChatRequest{DefaultLanguage: &lang})
	require.NoError(t, err)
	assert.Equal(t, "es", resp.DefaultLanguage)
	assert.Equal(t, models.DefaultPoolID, resp.DefaultPoolID)
}

func TestUpdateChatRejectsBadPoolID(t *testing.T) {
	svc := NewChatService(newMemRepo())

	_, err := svc.CreateChat(context.Background(), createRequest("3001"))
	require.NoError(t, err)

	bad := "pool-invalid"
	_, err = svc.UpdateChat(context.Background(), models.ClientTelegram, "3001",
		&models.UpdateChatRequest{DefaultPoolID: &bad})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestDeleteChat(t *testing.T) {
	svc := NewChatService(newMemRepo())

	_, err := svc.CreateChat(context.Background(), createRequest("3001"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteChat(context.Background(), models.ClientTelegram, "3001"))

	_, err = svc.GetChat(context.Background(), models.ClientTelegram, "3001")
	assert.Error(t, err)
}

func TestListChatsFiltersByClient(t *testing.T) {
	repo := newMemRepo()
	svc := NewChatService(repo)

	_, err := svc.CreateChat(context.Background(), createRequest("3001"))
	require.NoError(t, err)
	_, err = svc.CreateChat(context.Background(), &models.CreateChatRequest{ChatID: "8", Client: "OTHER"})
	require.NoError(t, err)

	chats, err := svc.ListChats(context.Background(), models.ClientTelegram)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "3001", chats[0].ChatID)

	all, err := svc.ListChats(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestChatResponseHidesLinkToken(t *testing.T) {
	repo := newMemRepo()
	svc := NewChatService(repo)

	_, err := svc.CreateChat(context.Background(), createRequest("3001"))
	require.NoError(t, err)

	repo.mu.Lock()
	repo.chats[key(models.ClientTelegram, "3001")].LinkToken = "secret"
	repo.chats[key(models.ClientTelegram, "3001")].TokenIssuedAt = time.Now()
	repo.mu.Unlock()

	resp, err := svc.GetChat(context.Background(), models.ClientTelegram, "3001")
	require.NoError(t, err)

	// The response type has no token field at all; linked state is the only
	// wallet information exposed.
	assert.False(t, resp.Linked)
}

func TestUserLifecycle(t *testing.T) {
	repo := newMemRepo()
	svc := NewChatService(repo)

	repo.mu.Lock()
	repo.users["u9"] = &models.User{ID: "u9", StakeAddress: "stake_test1xyz"}
	repo.mu.Unlock()

	user, err := svc.GetUser(context.Background(), "u9")
	require.NoError(t, err)
	assert.Equal(t, "stake_test1xyz", user.StakeAddress)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(context.Background(), "u9"))

	_, err = svc.GetUser(context.Background(), "u9")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, appErr.Code)
}
