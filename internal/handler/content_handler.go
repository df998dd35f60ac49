package handler

import (
	"net/http"

	"ethicrawler/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Content answers requests that passed the PaymentRequired gate.
func Content(c *gin.Context) {
	rec := middleware.GetPaymentRecord(c)
	c.JSON(http.StatusOK, gin.H{
		"path":       c.Param("path"),
		"payment_id": rec.PaymentID,
		"site_id":    rec.SiteID,
	})
}
