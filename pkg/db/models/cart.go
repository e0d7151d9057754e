package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart holds a buyer's pending purchases. The primary key IS the owning
// user's id: one cart per user, created lazily and never deleted, only
// emptied. TotalQuantity and TotalPrice are derived and recomputed after
// every mutation of Items.
type Cart struct {
	OwnerID       uuid.UUID       `gorm:"column:owner_id;type:uuid;primaryKey"`
	TotalQuantity int             `gorm:"column:total_quantity;not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	Items         []CartItem      `gorm:"foreignKey:CartID;references:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
