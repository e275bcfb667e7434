package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovement is the append-only log of quantity changes on an item.
type StockMovement struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	ItemID        int64           `gorm:"not null;index"`
	Delta         decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	QuantityAfter decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	Reason        string          `gorm:"type:text;not null"`
	ActorID       *int64
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}
