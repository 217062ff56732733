package models

import (
	"time"

	"github.com/fatflowers/licensing/pkg/types"
)

// Product holds the licensing features of a sellable product, including the
// version and file currently served to update checks.
type Product struct {
	ID              string             `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Name            string             `gorm:"column:name;type:varchar(255);not null" json:"name"`
	RecurringUnit   types.IntervalUnit `gorm:"column:recurring_unit;type:varchar(16)" json:"recurring_unit"`
	RecurringCount  int                `gorm:"column:recurring_count;not null;default:0" json:"recurring_count"`
	ActivationLimit int                `gorm:"column:activation_limit;not null;default:0" json:"activation_limit"`
	OnlineSoftware  bool               `gorm:"column:online_software;not null;default:false" json:"online_software"`
	BasePrice       int64              `gorm:"column:base_price;not null;default:0" json:"base_price"`
	CurrentVersion  string             `gorm:"column:current_version;type:varchar(64)" json:"current_version"`
	CurrentDownload string             `gorm:"column:current_download;type:varchar(512)" json:"current_download"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}

// Interval returns the recurring billing period, zero for lifetime products.
func (p *Product) Interval() types.Interval {
	return types.Interval{Unit: p.RecurringUnit, Count: p.RecurringCount}
}
