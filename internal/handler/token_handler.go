package handler

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"ethicrawler/internal/service"

	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	tokens *service.TokenService
}

func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Resolve verifies a token for a resource server and returns its payment record.
func (h *TokenHandler) Resolve(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.tokens.ResolveToken(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type publicKey struct {
	Kty       string `json:"kty"`
	Crv       string `json:"crv"`
	Alg       string `json:"alg"`
	Use       string `json:"use"`
	KID       string `json:"kid"`
	X         string `json:"x"`
	CreatedAt int64  `json:"created_at"`
	RotatedAt int64  `json:"rotated_at,omitempty"`
}

// Keys publishes the Ed25519 verification keys as a JWK set.
func (h *TokenHandler) Keys(c *gin.Context) {
	keys, err := h.tokens.PublicKeys(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]publicKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, publicKey{
			Kty:       "OKP",
			Crv:       "Ed25519",
			Alg:       "EdDSA",
			Use:       "sig",
			KID:       k.KID,
			X:         base64.RawURLEncoding.EncodeToString(k.PublicKey),
			CreatedAt: k.CreatedAt,
			RotatedAt: k.RotatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"keys": out})
}

// Revoke puts :payment_id on the disablement list (admin).
func (h *TokenHandler) Revoke(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// an empty body means no reason
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tokens.RevokeToken(c.Request.Context(), c.Param("payment_id"), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RotateKey replaces the active signing key (admin).
func (h *TokenHandler) RotateKey(c *gin.Context) {
	key, err := h.tokens.RotateKey(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kid": key.KID, "created_at": key.CreatedAt})
}
