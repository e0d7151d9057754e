package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/inkwell/bookstore-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Service exposes the cart engine. Every mutation runs in a single
// transaction and leaves the stored totals consistent with the items.
// Cart mutations never touch book stock; only checkout does.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, bookID uuid.UUID, qty int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, bookID uuid.UUID, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, bookID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo  CartRepository
	tx    txRunner
	books bookLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, books bookLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if books == nil {
		return nil, fmt.Errorf("book loader required")
	}
	return &service{repo: repo, tx: tx, books: books}, nil
}

// Get returns the user's cart, or not-found if none has been created yet.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// AddItem merges qty of the book into the cart, creating the cart on first
// use. An existing line absorbs the quantity and is re-priced at the book's
// current price; otherwise a new line is appended.
func (s *service) AddItem(ctx context.Context, userID, bookID uuid.UUID, qty int) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.loadOrCreate(ctx, txRepo, userID)
		if err != nil {
			return err
		}

		merged := false
		for i := range cart.Items {
			if cart.Items[i].BookID == bookID {
				cart.Items[i].Quantity += qty
				cart.Items[i].Subtotal = lineSubtotal(book.Price, cart.Items[i].Quantity)
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, models.CartItem{
				CartID:   cart.OwnerID,
				BookID:   bookID,
				Quantity: qty,
				Subtotal: lineSubtotal(book.Price, qty),
			})
		}

		saved, err = s.persist(ctx, txRepo, cart)
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return saved, nil
}

// UpdateItem overwrites the line's quantity, re-pricing at the book's current
// price. Quantity zero removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, bookID uuid.UUID, qty int) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if qty == 0 {
		return s.RemoveItem(ctx, userID, bookID)
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.loadExisting(ctx, txRepo, userID)
		if err != nil {
			return err
		}

		found := false
		for i := range cart.Items {
			if cart.Items[i].BookID == bookID {
				cart.Items[i].Quantity = qty
				cart.Items[i].Subtotal = lineSubtotal(book.Price, qty)
				found = true
				break
			}
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}

		saved, err = s.persist(ctx, txRepo, cart)
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return saved, nil
}

// RemoveItem drops the book's line from the cart. Removing a line that is
// not present is a no-op; a missing cart is still not-found.
func (s *service) RemoveItem(ctx context.Context, userID, bookID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.loadExisting(ctx, txRepo, userID)
		if err != nil {
			return err
		}

		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.BookID != bookID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept

		saved, err = s.persist(ctx, txRepo, cart)
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return saved, nil
}

// Clear empties the cart and zeroes its totals. The cart row itself is kept.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var saved *models.Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := s.loadExisting(ctx, txRepo, userID)
		if err != nil {
			return err
		}

		cart.Items = nil
		saved, err = s.persist(ctx, txRepo, cart)
		return err
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return saved, nil
}

func (s *service) loadOrCreate(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByOwner(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return repo.Create(ctx, &models.Cart{OwnerID: userID})
}

func (s *service) loadExisting(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, err
	}
	return cart, nil
}

// persist recomputes totals, replaces the item rows, saves the cart header,
// and reloads the cart so positions and book rows come back populated.
func (s *service) persist(ctx context.Context, repo CartRepository, cart *models.Cart) (*models.Cart, error) {
	recomputeTotals(cart)
	if err := repo.ReplaceItems(ctx, cart.OwnerID, cart.Items); err != nil {
		return nil, err
	}
	if _, err := repo.Update(ctx, cart); err != nil {
		return nil, err
	}
	return repo.FindByOwner(ctx, cart.OwnerID)
}
