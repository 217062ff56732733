package models

import (
	"time"

	"github.com/fatflowers/licensing/pkg/types"
)

// Activation is one install location consuming a unit of a key's capacity.
// (lkey, location) is unique: a deactivated location is reactivated in place.
type Activation struct {
	ID            string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Key           string                 `gorm:"column:lkey;type:varchar(128);not null;uniqueIndex:unique_lkey_location,priority:1;index:idx_lkey_status,priority:1" json:"key"`
	Location      string                 `gorm:"column:location;type:varchar(191);not null;uniqueIndex:unique_lkey_location,priority:2" json:"location"`
	Status        types.ActivationStatus `gorm:"column:status;type:varchar(20);not null;index:idx_lkey_status,priority:2" json:"status"`
	ActivatedAt   time.Time              `gorm:"column:activated_at;not null" json:"activated_at"`
	DeactivatedAt *time.Time             `gorm:"column:deactivated_at;default:null" json:"deactivated_at"`
	// ReleaseID is the release installed at this location, nil when unknown.
	ReleaseID *string     `gorm:"column:release_id;type:uuid;default:null;index" json:"release_id"`
	Track     types.Track `gorm:"column:track;type:varchar(20);not null;default:'stable'" json:"track"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Activation) TableName() string {
	return "activation"
}

func (a *Activation) IsActive() bool {
	return a != nil && a.Status == types.ActivationStatusActive
}
