package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"
)

func pendingInvoice(id string) *models.Invoice {
	return &models.Invoice{
		PaymentID: id,
		SiteID:    "site123",
		URLHash:   "hash456",
		Amount:    1000000,
		CreatedAt: 1000,
		ExpiresAt: 4600,
		Status:    domain.InvoiceStatusPending,
	}
}

func TestMemoryStore_PutAndGetInvoice(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.PutInvoice(ctx, pendingInvoice("pay_1")); err != nil {
		t.Fatalf("PutInvoice: %v", err)
	}
	if err := s.PutInvoice(ctx, pendingInvoice("pay_1")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}

	got, err := s.GetInvoice(ctx, "pay_1")
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	got.Status = "MUTATED"
	again, _ := s.GetInvoice(ctx, "pay_1")
	if again.Status != domain.InvoiceStatusPending {
		t.Error("Store must return copies")
	}

	if _, err := s.GetInvoice(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_CommitPayment(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.PutInvoice(ctx, pendingInvoice("pay_1"))

	rec := &models.PaymentRecord{PaymentID: "pay_1", TxHash: "stellar_tx_hash_123456", SiteID: "site123", Amount: 1000000}
	if err := s.CommitPayment(ctx, rec); err != nil {
		t.Fatalf("CommitPayment: %v", err)
	}

	inv, _ := s.GetInvoice(ctx, "pay_1")
	if inv.Status != domain.InvoiceStatusPaid {
		t.Errorf("Expected PAID, got %s", inv.Status)
	}
	if _, err := s.GetRecord(ctx, "pay_1"); err != nil {
		t.Errorf("Expected record, got %v", err)
	}

	if err := s.CommitPayment(ctx, rec); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("Expected ErrAlreadyPaid, got %v", err)
	}
	if err := s.CommitPayment(ctx, &models.PaymentRecord{PaymentID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_CommitPaymentConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.PutInvoice(ctx, pendingInvoice("pay_1"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.CommitPayment(ctx, &models.PaymentRecord{PaymentID: "pay_1", TxHash: "tx_hash_abcdef"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("Expected exactly one successful commit, got %d", wins)
	}
}

func TestMemoryStore_RotateSigningKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.ActiveSigningKey(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected no active key, got %v", err)
	}
	_ = s.RotateSigningKey(ctx, &models.SigningKey{KID: "k1", CreatedAt: 100}, 100)
	_ = s.RotateSigningKey(ctx, &models.SigningKey{KID: "k2", CreatedAt: 200}, 200)

	active, err := s.ActiveSigningKey(ctx)
	if err != nil {
		t.Fatalf("ActiveSigningKey: %v", err)
	}
	if active.KID != "k2" {
		t.Errorf("Expected k2 active, got %s", active.KID)
	}

	keys, _ := s.ListSigningKeys(ctx)
	if len(keys) != 2 || keys[0].KID != "k2" {
		t.Fatalf("Expected newest first, got %+v", keys)
	}
	if keys[1].RotatedAt != 200 {
		t.Errorf("Expected k1 rotated at 200, got %d", keys[1].RotatedAt)
	}
}

func TestMemoryStore_Revocation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	revoked, _ := s.IsRevoked(ctx, "pay_1")
	if revoked {
		t.Fatal("Expected not revoked")
	}
	_ = s.Revoke(ctx, &models.RevokedPayment{PaymentID: "pay_1", Reason: "chargeback", RevokedAt: 10})
	revoked, _ = s.IsRevoked(ctx, "pay_1")
	if !revoked {
		t.Error("Expected revoked")
	}
}
