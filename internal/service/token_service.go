package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log"

	"ethicrawler/config"
	"ethicrawler/internal/auth"
	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"
	"ethicrawler/internal/repository"
)

// TokenService issues access tokens for payment records and resolves them
// back. Resolution never writes.
type TokenService struct {
	cfg     *config.TokenConfig
	store   repository.Store
	keys    *auth.KeyRing
	revoked repository.RevocationList
	clock   domain.Clock
}

func NewTokenService(cfg *config.TokenConfig, store repository.Store, keys *auth.KeyRing, revoked repository.RevocationList, clock domain.Clock) *TokenService {
	return &TokenService{cfg: cfg, store: store, keys: keys, revoked: revoked, clock: clock}
}

// Issue signs a token bound to rec's payment id and site.
func (s *TokenService) Issue(ctx context.Context, rec *models.PaymentRecord) (string, error) {
	key, err := s.keys.Active(ctx)
	if err != nil {
		return "", fmt.Errorf("signing key: %w", err)
	}
	return auth.GenerateAccessToken(s.cfg, key, rec.PaymentID, rec.SiteID, s.clock.Now())
}

// ResolveToken verifies token and returns the payment record it is bound to.
func (s *TokenService) ResolveToken(ctx context.Context, token string) (*models.PaymentRecord, error) {
	if token == "" {
		return nil, ErrBadJWT
	}
	lookup := func(kid string) (ed25519.PublicKey, error) {
		return s.keys.PublicKey(ctx, kid)
	}
	claims, err := auth.ParseAccessToken(s.cfg, token, lookup, s.clock.Now)
	if err != nil {
		return nil, ErrBadJWT
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("revocation lookup: %w", err)
		}
		if revoked {
			return nil, ErrBadJWT
		}
	}
	rec, err := s.store.GetRecord(ctx, claims.PaymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	if rec.SiteID != claims.SiteID {
		return nil, ErrBadJWT
	}
	return rec, nil
}

// RevokeToken disables every token bound to paymentID.
func (s *TokenService) RevokeToken(ctx context.Context, paymentID, reason string) error {
	if s.revoked == nil {
		return errors.New("revocation list not configured")
	}
	if _, err := s.store.GetRecord(ctx, paymentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load record: %w", err)
	}
	err := s.revoked.Revoke(ctx, &models.RevokedPayment{
		PaymentID: paymentID,
		Reason:    reason,
		RevokedAt: s.clock.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	log.Printf("[Token] revoked payment_id=%s reason=%q", paymentID, reason)
	return nil
}

// PublicKeys returns the verification keys that still accept tokens.
func (s *TokenService) PublicKeys(ctx context.Context) ([]models.SigningKey, error) {
	return s.keys.Accepted(ctx)
}

// RotateKey replaces the active signing key.
func (s *TokenService) RotateKey(ctx context.Context) (*models.SigningKey, error) {
	return s.keys.Rotate(ctx)
}
