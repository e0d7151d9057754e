package cart

import (
	"github.com/shopspring/decimal"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
)

// lineSubtotal computes unit price times quantity at two decimals, half-up.
func lineSubtotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// recomputeTotals rebuilds the cart's aggregate fields from its items. It
// mutates the cart in place and does not persist: total_quantity is the sum
// of line quantities, total_price the sum of line subtotals rounded half-up
// to two decimals. Runs after every structural mutation so the stored
// aggregates never drift from the lines.
func recomputeTotals(cart *models.Cart) {
	totalQty := 0
	totalPrice := decimal.Zero
	for i := range cart.Items {
		totalQty += cart.Items[i].Quantity
		totalPrice = totalPrice.Add(cart.Items[i].Subtotal)
	}
	cart.TotalQuantity = totalQty
	cart.TotalPrice = totalPrice.Round(2)
}
