package handler

import (
	"log"
	"net/http"

	"ethicrawler/internal/service"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[service.Code]int{
	service.CodeNotFound:    http.StatusNotFound,
	service.CodeExpired:     http.StatusGone,
	service.CodeAlreadyPaid: http.StatusConflict,
	service.CodeInvalidTx:   http.StatusUnprocessableEntity,
	service.CodeBadJWT:      http.StatusUnauthorized,
}

// respondError writes err as {"error", "code"}; unknown errors become 500.
func respondError(c *gin.Context, err error) {
	if code, ok := service.CodeOf(err); ok {
		c.JSON(statusByCode[code], gin.H{"error": err.Error(), "code": code})
		return
	}
	log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
