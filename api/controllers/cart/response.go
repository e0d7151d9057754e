package cart

import (
	cartsvc "github.com/inkwell/bookstore-backend/internal/cart"
	"github.com/inkwell/bookstore-backend/pkg/db/models"
)

func newCartResponse(record *models.Cart) *cartsvc.CartDTO {
	return cartsvc.NewCartDTO(record)
}
