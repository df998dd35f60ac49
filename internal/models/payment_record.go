package models

// PaymentRecord is the immutable proof that an invoice was paid.
type PaymentRecord struct {
	PaymentID      string `gorm:"primaryKey;size:64" json:"payment_id"`
	TxHash         string `gorm:"size:128;not null" json:"tx_hash"`
	PayerPublicKey string `gorm:"size:128;not null" json:"payer_public_key"`
	VerifiedAt     int64  `gorm:"not null" json:"verified_at"`
	SiteID         string `gorm:"size:128;not null;index" json:"site_id"`
	Amount         int64  `gorm:"not null" json:"amount"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}
