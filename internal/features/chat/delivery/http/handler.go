package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cardabot-backend/internal/common/middleware"
	"cardabot-backend/internal/features/chat/models"
	"cardabot-backend/internal/features/chat/service"
)

type Handler struct {
	service service.ChatService
	logger  zerolog.Logger
}

func NewHandler(service service.ChatService, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	chats := router.Group("/chats")
	{
		chats.GET("", h.ListChats)
		chats.POST("", h.CreateChat)
		chats.GET("/:chat_id", h.GetChat)
		chats.PATCH("/:chat_id", h.UpdateChat)
		chats.DELETE("/:chat_id", h.DeleteChat)
	}

	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

// @Summary List chats
// @Description List all chat records, optionally filtered by client
// @Tags chats
// @Produce json
// @Param client_filter query string false "Client name (e.g. TELEGRAM)"
// @Success 200 {array} models.ChatResponse
// @Router /chats [get]
func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.service.ListChats(c.Request.Context(), c.Query("client_filter"))
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// @Summary Create chat
// @Tags chats
// @Accept json
// @Produce json
// @Param chat body models.CreateChatRequest true "Chat record"
// @Success 201 {object} models.ChatResponse
// @Router /chats [post]
func (h *Handler) CreateChat(c *gin.Context) {
	var req models.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	chat, err := h.service.CreateChat(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

// @Summary Get chat
// @Tags chats
// @Produce json
// @Param chat_id path string true "Chat id"
// @Param client_filter query string false "Client name"
// @Success 200 {object} models.ChatResponse
// @Router /chats/{chat_id} [get]
func (h *Handler) GetChat(c *gin.Context) {
	chat, err := h.service.GetChat(c.Request.Context(), clientOf(c), c.Param("chat_id"))
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// @Summary Update chat
// @Tags chats
// @Accept json
// @Produce json
// @Param chat_id path string true "Chat id"
// @Param chat body models.UpdateChatRequest true "Fields to update"
// @Success 200 {object} models.ChatResponse
// @Router /chats/{chat_id} [patch]
func (h *Handler) UpdateChat(c *gin.Context) {
	var req models.UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	chat, err := h.service.UpdateChat(c.Request.Context(), clientOf(c), c.Param("chat_id"), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// @Summary Delete chat
// @Tags chats
// @Param chat_id path string true "Chat id"
// @Success 204
// @Router /chats/{chat_id} [delete]
func (h *Handler) DeleteChat(c *gin.Context) {
	if err := h.service.DeleteChat(c.Request.Context(), clientOf(c), c.Param("chat_id")); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Router /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} models.User
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Delete user
// @Tags users
// @Param id path string true "User id"
// @Success 204
// @Router /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func clientOf(c *gin.Context) string {
	if client := c.Query("client_filter"); client != "" {
		return client
	}
	return models.ClientTelegram
}
