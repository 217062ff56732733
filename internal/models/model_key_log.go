package models

import (
	"time"

	"github.com/fatflowers/licensing/pkg/types"

	"gorm.io/datatypes"
)

// KeyLog records changes to license keys.
// Use case: troubleshooting support requests about bricked installs.
type KeyLog struct {
	ID  string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Key string `gorm:"column:lkey;type:varchar(128);index:idx_lkey_id,priority:1;not null" json:"key"`
	// Reason is the change reason.
	Reason types.KeyChangeReason `gorm:"column:reason;type:varchar(64);not null" json:"reason"`
	// Before stores key data before the change in JSON format.
	Before datatypes.JSONType[*Key] `gorm:"column:before;type:jsonb;default:'null'" json:"before"`
	// After stores key data after the change in JSON format.
	After datatypes.JSONType[*Key] `gorm:"column:after;type:jsonb;default:'null'" json:"after"`
	// Extra stores additional context such as the operator or renewal transaction.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time         `json:"created_at"`
}

func (KeyLog) TableName() string {
	return "key_log"
}
