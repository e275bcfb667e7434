package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/plantops/plantops-backend/pkg/enums"
)

// InventoryItem is the per-item stock record for one production section.
// AlertStatus is derived from the other fields and only written by the alert emitter.
type InventoryItem struct {
	ID              int64             `gorm:"primaryKey;autoIncrement"`
	Code            string            `gorm:"type:text;not null;uniqueIndex"`
	Name            string            `gorm:"type:text;not null"`
	Category        *string           `gorm:"type:text"`
	Unit            string            `gorm:"type:text;not null"`
	Section         enums.Section     `gorm:"not null;index"`
	Quantity        decimal.Decimal   `gorm:"type:numeric(14,3);not null"`
	MinThreshold    decimal.Decimal   `gorm:"type:numeric(14,3);not null"`
	MaxThreshold    decimal.Decimal   `gorm:"type:numeric(14,3);not null"`
	UnitCost        decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	ExpiryDate      *time.Time        `gorm:"type:date"`
	ManufactureDate *time.Time        `gorm:"type:date"`
	Status          enums.ItemStatus  `gorm:"type:text;not null;index"`
	AlertStatus     enums.AlertStatus `gorm:"type:text;not null;index"`
	CreatedBy       *int64
	UpdatedBy       *int64
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// TotalValue is quantity times unit cost, never stored.
func (i InventoryItem) TotalValue() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}
