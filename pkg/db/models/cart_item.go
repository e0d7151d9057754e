package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a cart. A given book appears at most once per
// cart; adding it again merges quantities. Subtotal is price*quantity at
// the price captured when the line was last touched. Position preserves
// insertion order across merges and rewrites.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_book,priority:1"`
	BookID    uuid.UUID       `gorm:"column:book_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_book,priority:2"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Position  int             `gorm:"column:position;not null"`
	Book      *Book           `gorm:"foreignKey:BookID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
