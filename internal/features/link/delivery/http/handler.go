package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cardabot-backend/internal/common/middleware"
	chatmodels "cardabot-backend/internal/features/chat/models"
	"cardabot-backend/internal/features/link/models"
	"cardabot-backend/internal/features/link/service"
)

type Handler struct {
	service service.LinkService
	logger  zerolog.Logger
}

func NewHandler(service service.LinkService, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/chats/:chat_id/token", h.IssueToken)
	router.POST("/connect", h.Connect)
}

// @Summary Issue linking token
// @Description Mint a single-use, time-bounded token authorizing a wallet to bind to this chat. Reissuing invalidates the previous token.
// @Tags link
// @Produce json
// @Param chat_id path string true "Chat id"
// @Param client_filter query string false "Client name"
// @Success 201 {object} models.TokenResponse
// @Router /chats/{chat_id}/token [post]
func (h *Handler) IssueToken(c *gin.Context) {
	client := c.Query("client_filter")
	if client == "" {
		client = chatmodels.ClientTelegram
	}

	token, err := h.service.IssueToken(c.Request.Context(), client, c.Param("chat_id"))
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// @Summary Connect wallet
// @Description Consume a linking token and bind the presenting stake address to the owning chat.
// @Tags link
// @Accept json
// @Produce json
// @Param request body models.ConnectRequest true "Token and stake address"
// @Success 200 {object} models.ConnectResponse
// @Failure 404 "Token not found, expired, or already used"
// @Router /connect [post]
func (h *Handler) Connect(c *gin.Context) {
	var req models.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.service.Connect(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
