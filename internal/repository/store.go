package repository

import (
	"context"
	"errors"

	"ethicrawler/internal/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("record already exists")
	ErrAlreadyPaid = errors.New("invoice is not pending")
)

// Store is the persistent key-value store shared by the invoice, payment
// and token components. Every mutation is keyed by payment id.
type Store interface {
	GetInvoice(ctx context.Context, paymentID string) (*models.Invoice, error)
	// PutInvoice inserts a new invoice; ErrDuplicate if the id is taken.
	PutInvoice(ctx context.Context, inv *models.Invoice) error
	GetRecord(ctx context.Context, paymentID string) (*models.PaymentRecord, error)
	// CommitPayment moves invoice rec.PaymentID from PENDING to PAID and
	// inserts rec as one unit. ErrAlreadyPaid if the invoice is not pending.
	CommitPayment(ctx context.Context, rec *models.PaymentRecord) error

	ActiveSigningKey(ctx context.Context) (*models.SigningKey, error)
	// ListSigningKeys returns every key, newest first.
	ListSigningKeys(ctx context.Context) ([]models.SigningKey, error)
	// RotateSigningKey marks the active key rotated at now and stores next
	// as the active key.
	RotateSigningKey(ctx context.Context, next *models.SigningKey, now int64) error
}

// RevocationList is the app-level disablement list for issued tokens.
type RevocationList interface {
	Revoke(ctx context.Context, rev *models.RevokedPayment) error
	IsRevoked(ctx context.Context, paymentID string) (bool, error)
}
