package auth

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"time"

	"ethicrawler/config"
	"ethicrawler/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims binds an access token to one paid invoice.
type Claims struct {
	PaymentID string `json:"payment_id"`
	SiteID    string `json:"site_id"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// KeyLookup resolves a key id from the token header to its public key.
type KeyLookup func(kid string) (ed25519.PublicKey, error)

// GenerateAccessToken signs claims for paymentID with key and prepends the
// namespace prefix: "<prefix>.<header>.<payload>.<signature>".
func GenerateAccessToken(cfg *config.TokenConfig, key *models.SigningKey, paymentID, siteID string, now time.Time) (string, error) {
	claims := Claims{
		PaymentID: paymentID,
		SiteID:    siteID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   paymentID,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = key.KID
	signed, err := token.SignedString(ed25519.NewKeyFromSeed(key.Seed))
	if err != nil {
		return "", err
	}
	if cfg.Prefix == "" {
		return signed, nil
	}
	return cfg.Prefix + "." + signed, nil
}

// ParseAccessToken strips the namespace prefix and verifies signature,
// expiry and issuer. Every failure is reported as ErrInvalidToken.
func ParseAccessToken(cfg *config.TokenConfig, tokenString string, lookup KeyLookup, now func() time.Time) (*Claims, error) {
	raw := tokenString
	if cfg.Prefix != "" {
		p := cfg.Prefix + "."
		if !strings.HasPrefix(raw, p) {
			return nil, ErrInvalidToken
		}
		raw = strings.TrimPrefix(raw, p)
	}
	if raw == "" {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrInvalidToken
		}
		return lookup(kid)
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PaymentID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
