package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"
	"ethicrawler/internal/repository"
	"ethicrawler/pkg/payment"
)

// Notifier is told about invoices that have just been paid.
type Notifier interface {
	InvoicePaid(inv *models.Invoice, rec *models.PaymentRecord)
}

type PaymentService struct {
	store    repository.Store
	clock    domain.Clock
	verifier payment.Verifier
	tokens   *TokenService
	notifier Notifier
	locks    *keyedMutex
}

func NewPaymentService(store repository.Store, clock domain.Clock, verifier payment.Verifier, tokens *TokenService, notifier Notifier) *PaymentService {
	return &PaymentService{
		store:    store,
		clock:    clock,
		verifier: verifier,
		tokens:   tokens,
		notifier: notifier,
		locks:    newKeyedMutex(),
	}
}

// SubmitPayment accepts txHash as payment of invoice paymentID and returns
// an access token. Guards run in order: NotFound, Expired, AlreadyPaid,
// InvalidTx. Nothing is written unless all pass.
func (s *PaymentService) SubmitPayment(ctx context.Context, paymentID, txHash, payerPublicKey string) (string, error) {
	unlock := s.locks.Lock(paymentID)
	defer unlock()

	inv, err := s.store.GetInvoice(ctx, paymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load invoice: %w", err)
	}

	now := s.clock.Now().Unix()
	if inv.IsExpired(now) {
		return "", ErrExpired
	}
	if inv.Status == domain.InvoiceStatusPaid {
		return "", ErrAlreadyPaid
	}
	if err := s.verifier.VerifyTransaction(ctx, txHash); err != nil {
		if errors.Is(err, payment.ErrInvalidTx) {
			return "", &Error{Code: CodeInvalidTx, Message: err.Error()}
		}
		return "", fmt.Errorf("verify transaction: %w", err)
	}

	rec := &models.PaymentRecord{
		PaymentID:      inv.PaymentID,
		TxHash:         txHash,
		PayerPublicKey: payerPublicKey,
		VerifiedAt:     now,
		SiteID:         inv.SiteID,
		Amount:         inv.Amount,
	}
	switch err := s.store.CommitPayment(ctx, rec); {
	case errors.Is(err, repository.ErrAlreadyPaid):
		return "", ErrAlreadyPaid
	case errors.Is(err, repository.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("commit payment: %w", err)
	}
	inv.Status = domain.InvoiceStatusPaid
	log.Printf("[Payment] paid payment_id=%s site=%s amount=%d tx=%s", inv.PaymentID, inv.SiteID, inv.Amount, txHash)

	if s.notifier != nil {
		s.notifier.InvoicePaid(inv, rec)
	}

	token, err := s.tokens.Issue(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("issue token for committed payment %s: %w", rec.PaymentID, err)
	}
	return token, nil
}

// GetRecord returns the payment record for paymentID.
func (s *PaymentService) GetRecord(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	rec, err := s.store.GetRecord(ctx, paymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	return rec, nil
}

// ReissueToken mints a fresh token for an already paid invoice.
func (s *PaymentService) ReissueToken(ctx context.Context, paymentID string) (string, error) {
	rec, err := s.GetRecord(ctx, paymentID)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(ctx, rec)
}
