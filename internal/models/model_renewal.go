package models

import "time"

// Renewal is an append-only ledger row written for every key renewal.
type Renewal struct {
	ID              string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Key             string    `gorm:"column:lkey;type:varchar(128);not null;index" json:"key"`
	TransactionID   *string   `gorm:"column:transaction_id;type:varchar(64);default:null" json:"transaction_id"`
	PriorExpiration time.Time `gorm:"column:prior_expiration;not null" json:"prior_expiration"`
	NewExpiration   time.Time `gorm:"column:new_expiration;not null" json:"new_expiration"`
	RenewedAt       time.Time `gorm:"column:renewed_at;not null" json:"renewed_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Renewal) TableName() string {
	return "renewal"
}
