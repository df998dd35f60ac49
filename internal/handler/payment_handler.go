package handler

import (
	"net/http"

	"ethicrawler/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Submit records proof of payment for :payment_id and returns the access token.
func (h *PaymentHandler) Submit(c *gin.Context) {
	var req struct {
		TxHash         string `json:"tx_hash"`
		PayerPublicKey string `json:"payer_public_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	paymentID := c.Param("payment_id")
	token, err := h.payments.SubmitPayment(c.Request.Context(), paymentID, req.TxHash, req.PayerPublicKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_id": paymentID, "token": token})
}

func (h *PaymentHandler) GetRecord(c *gin.Context) {
	rec, err := h.payments.GetRecord(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Reissue mints a new token for a paid invoice (admin).
func (h *PaymentHandler) Reissue(c *gin.Context) {
	paymentID := c.Param("payment_id")
	token, err := h.payments.ReissueToken(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_id": paymentID, "token": token})
}
