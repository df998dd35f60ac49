package repository

import (
	"context"
	"errors"

	"ethicrawler/internal/domain"
	"ethicrawler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) GetInvoice(ctx context.Context, paymentID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&inv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (s *GormStore) PutInvoice(ctx context.Context, inv *models.Invoice) error {
	return translate(s.db.WithContext(ctx).Create(inv).Error)
}

func (s *GormStore) GetRecord(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *GormStore) CommitPayment(ctx context.Context, rec *models.PaymentRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invoice{}).
			Where("payment_id = ? AND status = ?", rec.PaymentID, domain.InvoiceStatusPending).
			Update("status", domain.InvoiceStatusPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Invoice{}).Where("payment_id = ?", rec.PaymentID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrAlreadyPaid
		}
		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyPaid
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) ActiveSigningKey(ctx context.Context) (*models.SigningKey, error) {
	var k models.SigningKey
	err := s.db.WithContext(ctx).Where("rotated_at = ?", 0).Order("created_at DESC").First(&k).Error
	if err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (s *GormStore) ListSigningKeys(ctx context.Context) ([]models.SigningKey, error) {
	var list []models.SigningKey
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (s *GormStore) RotateSigningKey(ctx context.Context, next *models.SigningKey, now int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SigningKey{}).Where("rotated_at = ?", 0).Update("rotated_at", now).Error; err != nil {
			return err
		}
		return translate(tx.Create(next).Error)
	})
}

func (s *GormStore) Revoke(ctx context.Context, rev *models.RevokedPayment) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "revoked_at"}),
	}).Create(rev).Error
}

func (s *GormStore) IsRevoked(ctx context.Context, paymentID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RevokedPayment{}).Where("payment_id = ?", paymentID).Count(&count).Error
	return count > 0, err
}
