package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
)

// CartItemDTO is the API shape of a cart line.
type CartItemDTO struct {
	BookID    uuid.UUID `json:"book_id"`
	Title     string    `json:"title,omitempty"`
	Author    string    `json:"author,omitempty"`
	UnitPrice string    `json:"unit_price,omitempty"`
	Quantity  int       `json:"quantity"`
	Subtotal  string    `json:"subtotal"`
}

// CartDTO is the API shape of a cart.
type CartDTO struct {
	Items         []CartItemDTO `json:"items"`
	TotalQuantity int           `json:"total_quantity"`
	TotalPrice    string        `json:"total_price"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewCartDTO maps a cart model (items in stored order) to its API shape.
func NewCartDTO(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}
	items := make([]CartItemDTO, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		dto := CartItemDTO{
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal.StringFixed(2),
		}
		if item.Book != nil {
			dto.Title = item.Book.Title
			dto.Author = item.Book.Author
			dto.UnitPrice = item.Book.Price.StringFixed(2)
		}
		items = append(items, dto)
	}
	return &CartDTO{
		Items:         items,
		TotalQuantity: cart.TotalQuantity,
		TotalPrice:    cart.TotalPrice.StringFixed(2),
		UpdatedAt:     cart.UpdatedAt,
	}
}
