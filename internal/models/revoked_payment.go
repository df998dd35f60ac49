package models

// RevokedPayment disables every token bound to PaymentID.
type RevokedPayment struct {
	PaymentID string `gorm:"primaryKey;size:64" json:"payment_id"`
	Reason    string `gorm:"size:255" json:"reason"`
	RevokedAt int64  `gorm:"not null" json:"revoked_at"`
}

func (RevokedPayment) TableName() string { return "revoked_payments" }
