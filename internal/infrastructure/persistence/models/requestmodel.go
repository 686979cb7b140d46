package models

import (
	"gorm.io/datatypes"
)

type RequestModel struct {
	ID               string         `gorm:"primaryKey;size:40"`
	ConsumerID       string         `gorm:"size:64;not null;index"`
	Summary          string         `gorm:"size:200;not null"`
	Category         string         `gorm:"size:100;index"`
	Location         string         `gorm:"size:200"`
	Description      string         `gorm:"type:text"`
	BudgetMinCents   *int64         `gorm:"column:budget_min_cents"`
	BudgetMaxCents   *int64         `gorm:"column:budget_max_cents"`
	Status           string         `gorm:"size:32;not null;index"`
	Extras           datatypes.JSON `gorm:"type:json"`
	ApplicationCount int            `gorm:"not null;default:0"`
	Version          int            `gorm:"not null;default:1"`
	CreatedAt        int64          `gorm:"autoCreateTime:milli;not null;index"`
	UpdatedAt        int64          `gorm:"autoUpdateTime:milli;not null"`
	DeletedAt        *int64         `gorm:"index"`
}

func (RequestModel) TableName() string {
	return "market_requests"
}
