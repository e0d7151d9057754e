package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
)

// Repository exposes persistence operations for cart data. The cart row is
// keyed by the owning user id.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByOwner loads the user's cart with items in stored order and book rows
// populated.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.Book").
		First(&cart, "owner_id = ?", ownerID).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart row.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// Update saves the cart row, including its recomputed totals.
func (r *Repository) Update(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("owner_id = ?", cart.OwnerID).
		Updates(map[string]any{
			"total_quantity": cart.TotalQuantity,
			"total_price":    cart.TotalPrice,
		}).Error
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ReplaceItems atomically replaces the cart's items, reassigning contiguous
// positions in slice order.
func (r *Repository) ReplaceItems(ctx context.Context, ownerID uuid.UUID, items []models.CartItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", ownerID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = ownerID
		items[i].Position = i
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].Book = nil
	}
	return tx.Create(&items).Error
}
