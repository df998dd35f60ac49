package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"
	"ethicrawler/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const paymentIDAttempts = 3

type InvoiceService struct {
	store repository.Store
	clock domain.Clock
}

func NewInvoiceService(store repository.Store, clock domain.Clock) *InvoiceService {
	return &InvoiceService{store: store, clock: clock}
}

// CreateInvoice prices access to urlHash on siteID. The invoice is pending
// and expires InvoiceTTL after the trusted current time. Amount is stored
// as given.
func (s *InvoiceService) CreateInvoice(ctx context.Context, siteID, urlHash string, amount int64) (*models.Invoice, error) {
	now := s.clock.Now().Unix()
	for attempt := 0; attempt < paymentIDAttempts; attempt++ {
		inv := &models.Invoice{
			PaymentID: newPaymentID(siteID, urlHash, now),
			SiteID:    siteID,
			URLHash:   urlHash,
			Amount:    amount,
			CreatedAt: now,
			ExpiresAt: now + int64(domain.InvoiceTTL.Seconds()),
			Status:    domain.InvoiceStatusPending,
		}
		err := s.store.PutInvoice(ctx, inv)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store invoice: %w", err)
		}
		log.Printf("[Invoice] created payment_id=%s site=%s amount=%d expires_at=%d", inv.PaymentID, siteID, amount, inv.ExpiresAt)
		return inv, nil
	}
	return nil, fmt.Errorf("store invoice: %w", repository.ErrDuplicate)
}

// GetInvoice looks an invoice up. Expiry does not hide it.
func (s *InvoiceService) GetInvoice(ctx context.Context, paymentID string) (*models.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, paymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return inv, nil
}

// newPaymentID hashes the request with a fresh nonce so ids never repeat,
// even for identical requests in the same second.
func newPaymentID(siteID, urlHash string, now int64) string {
	nonce := uuid.New()
	buf := make([]byte, 0, len(siteID)+len(urlHash)+64)
	buf = append(buf, siteID...)
	buf = append(buf, 0)
	buf = append(buf, urlHash...)
	buf = append(buf, 0)
	buf = strconv.AppendInt(buf, now, 10)
	buf = append(buf, 0)
	buf = append(buf, nonce[:]...)
	sum := blake2b.Sum256(buf)
	return domain.PaymentIDPrefix + hex.EncodeToString(sum[:16])
}
