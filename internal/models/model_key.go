package models

import (
	"time"

	"github.com/fatflowers/licensing/pkg/types"
)

// Key is a license key granting a customer the right to activate a product
// on up to Max locations. Max == 0 means unlimited; a nil ExpiresAt never expires.
type Key struct {
	Key           string          `gorm:"column:lkey;type:varchar(128);primary_key" json:"key"`
	TransactionID string          `gorm:"column:transaction_id;type:varchar(64);not null;index" json:"transaction_id"`
	ProductID     string          `gorm:"column:product_id;type:varchar(64);not null;index" json:"product_id"`
	CustomerID    string          `gorm:"column:customer_id;type:varchar(64);not null;index" json:"customer_id"`
	Status        types.KeyStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Max           int             `gorm:"column:max_activations;not null;default:0" json:"max"`
	ExpiresAt     *time.Time      `gorm:"column:expires_at;default:null;index" json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Key) TableName() string {
	return "license_key"
}

// Expires reports whether the key has an expiration date at all.
func (k *Key) Expires() bool {
	return k != nil && k.ExpiresAt != nil
}

// Unlimited reports whether the key has no activation limit.
func (k *Key) Unlimited() bool {
	return k != nil && k.Max == 0
}

// HasCapacity reports whether one more active activation fits.
func (k *Key) HasCapacity(activeCount int64) bool {
	return k.Unlimited() || activeCount < int64(k.Max)
}

// KeyRef references a key by its string without loading it.
// Resolve it through the license service to get the full record.
type KeyRef string

func (r KeyRef) String() string { return string(r) }

func (k *Key) Ref() KeyRef {
	return KeyRef(k.Key)
}
