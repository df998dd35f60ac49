package models

import "ethicrawler/internal/domain"

// Invoice is a priced access request for one resource of one site.
// Timestamps are unix seconds from the trusted clock.
type Invoice struct {
	PaymentID string `gorm:"primaryKey;size:64" json:"payment_id"`
	SiteID    string `gorm:"size:128;not null;index" json:"site_id"`
	URLHash   string `gorm:"size:128;not null" json:"url_hash"`
	Amount    int64  `gorm:"not null" json:"amount"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:false" json:"created_at"`
	ExpiresAt int64  `gorm:"not null" json:"expires_at"`
	Status    string `gorm:"size:20;not null;index" json:"status"` // PENDING, PAID
}

func (Invoice) TableName() string {
	return "payment_invoices"
}

// IsExpired reports whether now is past the invoice's expiry.
func (i *Invoice) IsExpired(now int64) bool {
	return now > i.ExpiresAt
}

// EffectiveStatus is the status a reader should see at now. A pending
// invoice past its expiry reads as EXPIRED; nothing is written back.
func (i *Invoice) EffectiveStatus(now int64) string {
	if i.Status == domain.InvoiceStatusPending && i.IsExpired(now) {
		return domain.InvoiceStatusExpired
	}
	return i.Status
}
