package models

import "github.com/shopspring/decimal"

// Service is a catalog offering a customer can request.
type Service struct {
	Base
	Name              string          `gorm:"type:varchar(150);not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	BasePrice         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	EstimatedDuration int             `gorm:"not null" json:"estimated_duration_minutes"`
	IsActive          bool            `gorm:"not null;index" json:"is_active"`
}
