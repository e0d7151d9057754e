package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
)

func TestLineSubtotalRoundsHalfUp(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString("13.323333")
	if got := lineSubtotal(price, 3); got.StringFixed(2) != "39.97" {
		t.Fatalf("expected 39.97, got %s", got.StringFixed(2))
	}

	price = decimal.RequireFromString("0.005")
	if got := lineSubtotal(price, 1); got.StringFixed(2) != "0.01" {
		t.Fatalf("expected half-up rounding to 0.01, got %s", got.StringFixed(2))
	}

	price = decimal.RequireFromString("14.99")
	if got := lineSubtotal(price, 2); got.StringFixed(2) != "29.98" {
		t.Fatalf("expected 29.98, got %s", got.StringFixed(2))
	}
}

func TestRecomputeTotals(t *testing.T) {
	t.Parallel()

	cart := &models.Cart{
		Items: []models.CartItem{
			{Quantity: 2, Subtotal: decimal.RequireFromString("29.98")},
			{Quantity: 1, Subtotal: decimal.RequireFromString("9.99")},
		},
	}

	recomputeTotals(cart)

	if cart.TotalQuantity != 3 {
		t.Fatalf("expected total quantity 3, got %d", cart.TotalQuantity)
	}
	if cart.TotalPrice.StringFixed(2) != "39.97" {
		t.Fatalf("expected total price 39.97, got %s", cart.TotalPrice.StringFixed(2))
	}
}

func TestRecomputeTotalsEmptyCart(t *testing.T) {
	t.Parallel()

	cart := &models.Cart{
		TotalQuantity: 5,
		TotalPrice:    decimal.RequireFromString("10.00"),
	}

	recomputeTotals(cart)

	if cart.TotalQuantity != 0 {
		t.Fatalf("expected zeroed quantity, got %d", cart.TotalQuantity)
	}
	if !cart.TotalPrice.IsZero() {
		t.Fatalf("expected zeroed price, got %s", cart.TotalPrice)
	}
}
