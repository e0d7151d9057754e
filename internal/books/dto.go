package books

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
)

// CategorySummary is the slim category view embedded in book payloads.
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SellerSummary is the slim seller view embedded in book payloads.
type SellerSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookDTO is the API shape of a catalog listing. Price and money values are
// serialized as fixed two-decimal strings.
type BookDTO struct {
	ID        uuid.UUID        `json:"id"`
	Title     string           `json:"title"`
	Author    string           `json:"author"`
	Price     string           `json:"price"`
	ISBN      string           `json:"isbn"`
	Stock     int              `json:"stock"`
	Category  *CategorySummary `json:"category,omitempty"`
	Seller    *SellerSummary   `json:"seller,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewBookDTO maps a book model (with optionally preloaded relations) to its
// API shape.
func NewBookDTO(book *models.Book) *BookDTO {
	if book == nil {
		return nil
	}
	dto := &BookDTO{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		Price:     book.Price.StringFixed(2),
		ISBN:      book.ISBN,
		Stock:     book.Stock,
		CreatedAt: book.CreatedAt,
		UpdatedAt: book.UpdatedAt,
	}
	if book.Category != nil {
		dto.Category = &CategorySummary{ID: book.Category.ID, Name: book.Category.Name}
	}
	if book.Seller != nil {
		dto.Seller = &SellerSummary{ID: book.Seller.ID, Name: book.Seller.Name}
	}
	return dto
}

// NewBookDTOs maps a slice of book models.
func NewBookDTOs(rows []models.Book) []BookDTO {
	out := make([]BookDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewBookDTO(&rows[i]))
	}
	return out
}
