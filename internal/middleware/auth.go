package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"ethicrawler/internal/models"
	"ethicrawler/internal/service"

	"github.com/gin-gonic/gin"
)

const paymentRecordKey = "payment_record"

// TokenResolver is the token authority as seen by resource servers.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.PaymentRecord, error)
}

// PaymentRequired admits requests carrying a valid access token and stores
// the resolved payment record in the context. Others get 402 with a pointer
// to the invoice endpoint.
func PaymentRequired(tokens TokenResolver, invoiceURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractPaymentToken(c)
		if token == "" {
			paymentRequired(c, invoiceURL, "payment token required", 0)
			return
		}
		rec, err := tokens.ResolveToken(c.Request.Context(), token)
		if err != nil {
			code, ok := service.CodeOf(err)
			if !ok {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token verification failed"})
				return
			}
			paymentRequired(c, invoiceURL, err.Error(), code)
			return
		}
		c.Set(paymentRecordKey, rec)
		c.Header("X-Payment-Verified", "true")
		c.Next()
	}
}

func paymentRequired(c *gin.Context, invoiceURL, msg string, code service.Code) {
	c.Header("WWW-Authenticate", `Bearer realm="Payment Required"`)
	c.Header("X-Payment-Required", "true")
	body := gin.H{"error": msg, "invoice_url": invoiceURL}
	if code != 0 {
		body["code"] = code
	}
	c.AbortWithStatusJSON(http.StatusPaymentRequired, body)
}

// extractPaymentToken checks Authorization: Bearer, then X-Payment-Token,
// then the payment_token query parameter.
func extractPaymentToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if token := c.GetHeader("X-Payment-Token"); token != "" {
		return token
	}
	return c.Query("payment_token")
}

// GetPaymentRecord returns the record set by PaymentRequired.
func GetPaymentRecord(c *gin.Context) *models.PaymentRecord {
	v, _ := c.Get(paymentRecordKey)
	rec, _ := v.(*models.PaymentRecord)
	return rec
}

var errAdminDisabled = errors.New("admin api disabled")

// AdminKeyRequired guards operator endpoints with a shared X-Admin-Key.
// An empty key disables them.
func AdminKeyRequired(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errAdminDisabled.Error()})
			return
		}
		got := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
