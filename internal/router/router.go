package router

import (
	"context"

	"ethicrawler/config"
	"ethicrawler/internal/auth"
	"ethicrawler/internal/domain"
	"ethicrawler/internal/handler"
	"ethicrawler/internal/middleware"
	"ethicrawler/internal/repository"
	"ethicrawler/internal/service"
	"ethicrawler/internal/ws"
	"ethicrawler/pkg/payment"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Store    repository.Store
	Revoked  repository.RevocationList
	Clock    domain.Clock
	Verifier payment.Verifier
	// Limiter throttles every route when set. The caller owns it and
	// stops it on shutdown.
	Limiter *middleware.InMemoryRateLimiter
}

func Setup(ctx context.Context, cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Clock == nil {
		deps.Clock = domain.SystemClock{}
	}
	if deps.Verifier == nil {
		deps.Verifier = payment.NewLengthVerifier(cfg.Payment.MinTxHashLength)
	}

	keys := auth.NewKeyRing(deps.Store, deps.Clock, cfg.Token.KeyRetention)
	if err := keys.Ensure(ctx); err != nil {
		return nil, err
	}
	hub := ws.NewHub()

	// Services
	invoiceSvc := service.NewInvoiceService(deps.Store, deps.Clock)
	tokenSvc := service.NewTokenService(&cfg.Token, deps.Store, keys, deps.Revoked, deps.Clock)
	paymentSvc := service.NewPaymentService(deps.Store, deps.Clock, deps.Verifier, tokenSvc, hub)

	// Handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceSvc, deps.Clock)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	tokenHandler := handler.NewTokenHandler(tokenSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Limiter != nil {
		r.Use(middleware.RateLimit(deps.Limiter, nil))
	}

	adminMw := middleware.AdminKeyRequired(cfg.Admin.APIKey)

	api := r.Group("/api/v1")
	{
		api.POST("/invoices", invoiceHandler.Create)
		api.GET("/invoices/:payment_id", invoiceHandler.Get)
		api.POST("/invoices/:payment_id/payment", paymentHandler.Submit)
		api.GET("/records/:payment_id", paymentHandler.GetRecord)
		api.POST("/tokens/resolve", tokenHandler.Resolve)
		api.GET("/keys", tokenHandler.Keys)

		admin := api.Group("/admin")
		admin.Use(adminMw)
		{
			admin.POST("/tokens/:payment_id/revoke", tokenHandler.Revoke)
			admin.POST("/keys/rotate", tokenHandler.RotateKey)
			admin.POST("/records/:payment_id/token", paymentHandler.Reissue)
		}
	}

	r.GET("/content/*path", middleware.PaymentRequired(tokenSvc, "/api/v1/invoices"), handler.Content)
	r.GET("/ws/invoices/:payment_id", ws.UpgradeInvoiceWS(invoiceSvc, deps.Clock, hub))

	return r, nil
}
