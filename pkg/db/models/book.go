package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Book represents a seller's catalog listing. Stock is only ever decremented
// by checkout, never by cart mutations.
type Book struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title      string          `gorm:"column:title;not null"`
	Author     string          `gorm:"column:author;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ISBN       string          `gorm:"column:isbn;type:text;not null;uniqueIndex"`
	Stock      int             `gorm:"column:stock;not null;default:0"`
	CategoryID uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	SellerID   uuid.UUID       `gorm:"column:seller_id;type:uuid;not null"`
	Category   *Category       `gorm:"foreignKey:CategoryID"`
	Seller     *User           `gorm:"foreignKey:SellerID"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
