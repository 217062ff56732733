package models

import (
	"time"

	"github.com/fatflowers/licensing/pkg/types"
)

// Release is one published version of a product.
type Release struct {
	ID        string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProductID string              `gorm:"column:product_id;type:varchar(64);not null;index:idx_product_status,priority:1" json:"product_id"`
	Download  string              `gorm:"column:download;type:varchar(512);not null" json:"download"`
	Version   string              `gorm:"column:version;type:varchar(64);not null" json:"version"`
	Type      types.ReleaseType   `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Status    types.ReleaseStatus `gorm:"column:status;type:varchar(20);not null;index:idx_product_status,priority:2" json:"status"`
	Changelog string              `gorm:"column:changelog;type:text" json:"changelog"`
	StartDate *time.Time          `gorm:"column:start_date;default:null" json:"start_date"`
	// PreviousVersion and PreviousDownload hold what the product served before
	// this release was last activated; pausing restores them.
	PreviousVersion  string    `gorm:"column:previous_version;type:varchar(64)" json:"-"`
	PreviousDownload string    `gorm:"column:previous_download;type:varchar(512)" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Release) TableName() string {
	return "release"
}
