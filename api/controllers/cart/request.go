package cart

import "github.com/google/uuid"

type addItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gte=1"`
}

// Quantity is a pointer so an omitted field is rejected while an explicit
// zero still means "remove the line".
type updateItemRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity *int      `json:"quantity" validate:"required,gte=0"`
}
