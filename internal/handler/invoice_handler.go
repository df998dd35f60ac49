package handler

import (
	"net/http"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoices *service.InvoiceService
	clock    domain.Clock
}

func NewInvoiceHandler(invoices *service.InvoiceService, clock domain.Clock) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, clock: clock}
}

// Create issues a pending invoice for a site resource.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req struct {
		SiteID  string `json:"site_id" binding:"required"`
		URLHash string `json:"url_hash" binding:"required"`
		Amount  int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.invoices.CreateInvoice(c.Request.Context(), req.SiteID, req.URLHash, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// Get returns the stored invoice plus its status as of now.
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoices.GetInvoice(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_id":       inv.PaymentID,
		"site_id":          inv.SiteID,
		"url_hash":         inv.URLHash,
		"amount":           inv.Amount,
		"created_at":       inv.CreatedAt,
		"expires_at":       inv.ExpiresAt,
		"status":           inv.Status,
		"effective_status": inv.EffectiveStatus(h.clock.Now().Unix()),
	})
}
