package models

// SigningKey holds an Ed25519 token-signing key. RotatedAt is 0 for the
// active key and the rotation time (unix seconds) for superseded ones.
type SigningKey struct {
	KID       string `gorm:"primaryKey;size:64" json:"kid"`
	Seed      []byte `gorm:"not null" json:"-"`
	PublicKey []byte `gorm:"not null" json:"public_key"`
	CreatedAt int64  `gorm:"not null;index;autoCreateTime:false" json:"created_at"`
	RotatedAt int64  `gorm:"not null;default:0" json:"rotated_at"`
}

func (SigningKey) TableName() string { return "signing_keys" }

func (k *SigningKey) Active() bool { return k.RotatedAt == 0 }
