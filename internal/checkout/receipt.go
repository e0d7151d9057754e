package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkwell/bookstore-backend/pkg/enums"
)

// ReceiptItem is one finalized checkout line.
type ReceiptItem struct {
	BookID   uuid.UUID `json:"book_id"`
	Title    string    `json:"title"`
	Price    string    `json:"price"`
	Quantity int       `json:"quantity"`
	Subtotal string    `json:"subtotal"`
}

// Receipt summarizes a completed checkout. Money values are fixed two-decimal
// strings.
type Receipt struct {
	TotalAmount  string         `json:"total_amount"`
	Currency     enums.Currency `json:"currency"`
	TotalItems   int            `json:"total_items"`
	Items        []ReceiptItem  `json:"items"`
	CheckedOutAt time.Time      `json:"checked_out_at"`
}

func buildReceipt(lines []checkoutLine, now time.Time) *Receipt {
	total := decimal.Zero
	totalItems := 0
	items := make([]ReceiptItem, 0, len(lines))
	for _, line := range lines {
		total = total.Add(line.subtotal)
		totalItems += line.qty
		items = append(items, ReceiptItem{
			BookID:   line.book.ID,
			Title:    line.book.Title,
			Price:    line.book.Price.StringFixed(2),
			Quantity: line.qty,
			Subtotal: line.subtotal.StringFixed(2),
		})
	}
	return &Receipt{
		TotalAmount:  total.Round(2).StringFixed(2),
		Currency:     enums.CurrencyUSD,
		TotalItems:   totalItems,
		Items:        items,
		CheckedOutAt: now.UTC(),
	}
}
