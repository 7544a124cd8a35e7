package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "cardabot-backend/internal/common/errors"
	"cardabot-backend/internal/common/middleware"
	"cardabot-backend/internal/features/claim/models"
	"cardabot-backend/internal/features/claim/service"
)

type ClaimHandler struct {
	service service.ClaimService
	logger  zerolog.Logger
}

func NewClaimHandler(service service.ClaimService, logger zerolog.Logger) *ClaimHandler {
	return &ClaimHandler{service: service, logger: logger}
}

func (h *ClaimHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/claim", h.Claim)
}

// Claim godoc
// @Summary Claim escrowed funds
// @Description Sweeps every escrowed output tagged for the chat into the given receiver address
// @Tags claims
// @Accept json
// @Produce json
// @Param request body models.ClaimRequest true "Claim request"
// @Success 200 {object} models.ClaimResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /claim [post]
func (h *ClaimHandler) Claim(c *gin.Context) {
	var req models.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, h.logger, apperrors.NewValidationError("body", err.Error()))
		return
	}

	resp, err := h.service.Claim(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
