package models

import "time"

// Upgrade is an append-only ledger row: an activation updated to a release.
// ReleaseID is a soft reference; deleting a release keeps its upgrades.
type Upgrade struct {
	ID              string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ActivationID    string    `gorm:"column:activation_id;type:uuid;not null;index" json:"activation_id"`
	ReleaseID       string    `gorm:"column:release_id;type:uuid;not null;index" json:"release_id"`
	PreviousVersion string    `gorm:"column:previous_version;type:varchar(64)" json:"previous_version"`
	UpgradedAt      time.Time `gorm:"column:upgraded_at;not null" json:"upgraded_at"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Upgrade) TableName() string {
	return "upgrade"
}
