package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inkwell/bookstore-backend/internal/cart"
	"github.com/inkwell/bookstore-backend/pkg/config"
	"github.com/inkwell/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/inkwell/bookstore-backend/pkg/errors"
)

const (
	lockScopePrefix = "checkout:"
	defaultLockTTL  = 30 * time.Second
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	DB() *gorm.DB
}

type locker interface {
	AcquireLock(ctx context.Context, scope string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, scope string) error
}

type bookInventory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, qty int) error
}

// Service executes checkout orchestration: per-user mutual exclusion, stock
// validation, compensated stock decrement, receipt, cart clearing.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID) (*Receipt, error)
}

type checkoutLine struct {
	book     *models.Book
	qty      int
	subtotal decimal.Decimal
}

type service struct {
	db      txRunner
	carts   cart.CartRepository
	books   bookInventory
	locks   locker
	lockTTL time.Duration
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(db txRunner, carts cart.CartRepository, books bookInventory, locks locker, cfg config.CheckoutConfig) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if books == nil {
		return nil, fmt.Errorf("book inventory required")
	}
	if locks == nil {
		return nil, fmt.Errorf("locker required")
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &service{
		db:      db,
		carts:   carts,
		books:   books,
		locks:   locks,
		lockTTL: ttl,
		now:     time.Now,
	}, nil
}

// Checkout converts the user's cart into a receipt. Stock decrements are not
// wrapped in one transaction across books: each guarded decrement commits on
// its own, and a failure replays the already-applied decrements in reverse
// before surfacing.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) (*Receipt, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	scope := lockScopePrefix + userID.String()
	acquired, err := s.locks.AcquireLock(ctx, scope, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire checkout lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	defer func() {
		_ = s.locks.ReleaseLock(context.WithoutCancel(ctx), scope)
	}()

	userCart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.validateStock(ctx, userCart)
	if err != nil {
		return nil, err
	}

	lines, err = s.commitDecrements(ctx, lines)
	if err != nil {
		return nil, err
	}

	receipt := buildReceipt(lines, s.now())

	if err := s.clearCart(ctx, userCart); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) loadCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	userCart, err := s.carts.FindByOwner(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(userCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return userCart, nil
}

// validateStock is the read-only pass: every line must be satisfiable before
// anything mutates. Lines come back priced at the book's current price.
func (s *service) validateStock(ctx context.Context, userCart *models.Cart) ([]checkoutLine, error) {
	lines := make([]checkoutLine, 0, len(userCart.Items))
	for i := range userCart.Items {
		item := &userCart.Items[i]
		book, err := s.books.FindByID(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found").
					WithDetails(map[string]any{"book_id": item.BookID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
		}
		if item.Quantity > book.Stock {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{"book": book.Title, "available": book.Stock})
		}
		lines = append(lines, checkoutLine{
			book:     book,
			qty:      item.Quantity,
			subtotal: book.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		})
	}
	return lines, nil
}

// commitDecrements applies the guarded decrements in line order, recording an
// inverse increment for each success. The first failure replays the recorded
// increments in reverse order and surfaces the cause.
func (s *service) commitDecrements(ctx context.Context, lines []checkoutLine) ([]checkoutLine, error) {
	handle := s.db.DB()
	committed := make([]checkoutLine, 0, len(lines))
	for i := range lines {
		if err := s.books.DecrementStock(ctx, handle, lines[i].book.ID, lines[i].qty); err != nil {
			replayErr := s.replayCompensations(ctx, handle, committed)
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
				out := pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
				details := map[string]any{"book": lines[i].book.Title}
				if replayErr != nil {
					details["compensation_incomplete"] = true
				}
				return nil, out.WithDetails(details)
			}
			wrapped := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "commit stock decrement")
			if replayErr != nil {
				wrapped = wrapped.WithDetails(map[string]any{"compensation_incomplete": true})
			}
			return nil, wrapped
		}
		committed = append(committed, lines[i])
	}
	return lines, nil
}

func (s *service) replayCompensations(ctx context.Context, handle *gorm.DB, committed []checkoutLine) error {
	var firstErr error
	for i := len(committed) - 1; i >= 0; i-- {
		if err := s.books.IncrementStock(ctx, handle, committed[i].book.ID, committed[i].qty); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *service) clearCart(ctx context.Context, userCart *models.Cart) error {
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.carts.WithTx(tx)
		if err := txRepo.ReplaceItems(ctx, userCart.OwnerID, nil); err != nil {
			return err
		}
		userCart.Items = nil
		userCart.TotalQuantity = 0
		userCart.TotalPrice = decimal.Zero
		_, err := txRepo.Update(ctx, userCart)
		return err
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}
