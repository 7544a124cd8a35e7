package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cardabot-backend/internal/common/middleware"
	"cardabot-backend/internal/features/payment/models"
	"cardabot-backend/internal/features/payment/service"
)

type Handler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

func NewHandler(service service.PaymentService, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/unsignedtx", h.CreatePayment)
	router.GET("/unsignedtx/:id", h.GetPayment)
	router.POST("/tx", h.SubmitPayment)
	router.GET("/checktx/:tx_id", h.CheckTransaction)
}

// @Summary Build unsigned payment
// @Description Select funds for a chat-to-chat payment and build the unsigned transaction the sender's wallet must sign. Receivers without a linked wallet are paid into escrow. A stake account the ledger has never seen resolves to no addresses and is reported as insufficient funds.
// @Tags payments
// @Accept json
// @Produce json
// @Param payment body models.CreatePaymentRequest true "Payment request"
// @Success 201 {object} models.UnsignedTxRecord
// @Failure 422 "Insufficient funds"
// @Router /unsignedtx [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	record, err := h.service.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// @Summary Get unsigned payment
// @Tags payments
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} models.UnsignedTxRecord
// @Router /unsignedtx/{id} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	record, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// @Summary Submit signed payment
// @Description Merge the wallet's witness into the stored unsigned transaction and submit it to the ledger.
// @Tags payments
// @Accept json
// @Produce json
// @Param submission body models.SubmitPaymentRequest true "Record id and witness"
// @Success 200 {object} models.SubmitPaymentResponse
// @Failure 502 "Ledger rejected the submission"
// @Router /tx [post]
func (h *Handler) SubmitPayment(c *gin.Context) {
	var req models.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitPayment(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Check transaction
// @Tags payments
// @Produce json
// @Param tx_id path string true "Transaction id"
// @Success 200 {object} models.CheckTransactionResponse
// @Router /checktx/{tx_id} [get]
func (h *Handler) CheckTransaction(c *gin.Context) {
	resp, err := h.service.CheckTransaction(c.Request.Context(), c.Param("tx_id"))
	if err != nil {
		middleware.HandleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
