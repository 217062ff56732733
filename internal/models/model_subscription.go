package models

import (
	"time"

	"github.com/fatflowers/licensing/pkg/types"

	"gorm.io/datatypes"
)

// Subscription is the recurring billing agreement behind a transaction, if any.
type Subscription struct {
	ID            string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	TransactionID string                   `gorm:"column:transaction_id;type:varchar(64);not null;uniqueIndex" json:"transaction_id"`
	Status        types.SubscriptionStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	// NextRenewAt is the next expected payment, nil when auto renewal is off.
	NextRenewAt *time.Time `gorm:"column:next_renew_at;default:null" json:"next_renew_at"`
	ExpireAt    *time.Time `gorm:"column:expire_at;default:null" json:"expire_at"`
	// Extra stores provider specific data such as the plan id.
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == types.SubscriptionStatusActive
}
