package repository

import (
	"context"
	"sort"
	"sync"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"
)

// MemoryStore is an in-process Store and RevocationList for tests and
// single-node development. Values are copied in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	invoices map[string]models.Invoice
	records  map[string]models.PaymentRecord
	keys     map[string]models.SigningKey
	revoked  map[string]models.RevokedPayment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices: make(map[string]models.Invoice),
		records:  make(map[string]models.PaymentRecord),
		keys:     make(map[string]models.SigningKey),
		revoked:  make(map[string]models.RevokedPayment),
	}
}

func (s *MemoryStore) GetInvoice(_ context.Context, paymentID string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (s *MemoryStore) PutInvoice(_ context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.PaymentID]; ok {
		return ErrDuplicate
	}
	s.invoices[inv.PaymentID] = *inv
	return nil
}

func (s *MemoryStore) GetRecord(_ context.Context, paymentID string) (*models.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) CommitPayment(_ context.Context, rec *models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[rec.PaymentID]
	if !ok {
		return ErrNotFound
	}
	if inv.Status != domain.InvoiceStatusPending {
		return ErrAlreadyPaid
	}
	if _, ok := s.records[rec.PaymentID]; ok {
		return ErrAlreadyPaid
	}
	inv.Status = domain.InvoiceStatusPaid
	s.invoices[rec.PaymentID] = inv
	s.records[rec.PaymentID] = *rec
	return nil
}

func (s *MemoryStore) ActiveSigningKey(_ context.Context) (*models.SigningKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active *models.SigningKey
	for _, k := range s.keys {
		if !k.Active() {
			continue
		}
		if active == nil || k.CreatedAt > active.CreatedAt {
			k := k
			active = &k
		}
	}
	if active == nil {
		return nil, ErrNotFound
	}
	return active, nil
}

func (s *MemoryStore) ListSigningKeys(_ context.Context) ([]models.SigningKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.SigningKey, 0, len(s.keys))
	for _, k := range s.keys {
		list = append(list, k)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt > list[j].CreatedAt })
	return list, nil
}

func (s *MemoryStore) RotateSigningKey(_ context.Context, next *models.SigningKey, now int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[next.KID]; ok {
		return ErrDuplicate
	}
	for kid, k := range s.keys {
		if k.Active() {
			k.RotatedAt = now
			s.keys[kid] = k
		}
	}
	s.keys[next.KID] = *next
	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, rev *models.RevokedPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[rev.PaymentID] = *rev
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, paymentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[paymentID]
	return ok, nil
}
