package checkout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inkwell/bookstore-backend/internal/books"
	"github.com/inkwell/bookstore-backend/internal/cart"
	"github.com/inkwell/bookstore-backend/pkg/config"
	"github.com/inkwell/bookstore-backend/pkg/db/models"
	"github.com/inkwell/bookstore-backend/pkg/enums"
	pkgerrors "github.com/inkwell/bookstore-backend/pkg/errors"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS books (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  price NUMERIC NOT NULL,
  isbn TEXT NOT NULL UNIQUE,
  stock INTEGER NOT NULL DEFAULT 0,
  category_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS carts (
  owner_id TEXT PRIMARY KEY,
  total_quantity INTEGER NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  subtotal NUMERIC NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, book_id)
);`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type sqliteRunner struct {
	db *gorm.DB
}

func (r sqliteRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r sqliteRunner) DB() *gorm.DB {
	return r.db
}

type fakeLocker struct {
	held     map[string]bool
	denyAll  bool
	acquires int
	releases int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) AcquireLock(ctx context.Context, scope string, ttl time.Duration) (bool, error) {
	l.acquires++
	if l.denyAll || l.held[scope] {
		return false, nil
	}
	l.held[scope] = true
	return true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, scope string) error {
	l.releases++
	delete(l.held, scope)
	return nil
}

// failingInventory delegates to the real repository but fails decrements for
// one chosen book.
type failingInventory struct {
	*books.Repository
	failBookID uuid.UUID
}

func (f failingInventory) DecrementStock(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, qty int) error {
	if bookID == f.failBookID {
		return fmt.Errorf("simulated write failure")
	}
	return f.Repository.DecrementStock(ctx, tx, bookID, qty)
}

type checkoutFixture struct {
	db     *gorm.DB
	locker *fakeLocker
	svc    Service
	buyer  *models.User
}

func newCheckoutFixture(t *testing.T, inventory bookInventory) *checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	if inventory == nil {
		inventory = books.NewRepository(db)
	}
	locker := newFakeLocker()
	svc, err := NewService(sqliteRunner{db: db}, cart.NewRepository(db), inventory, locker, config.CheckoutConfig{LockTTL: time.Second})
	require.NoError(t, err)

	buyer := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("buyer_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         "Checkout Buyer",
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	require.NoError(t, db.Create(buyer).Error)

	return &checkoutFixture{db: db, locker: locker, svc: svc, buyer: buyer}
}

func (f *checkoutFixture) mustCreateBook(t *testing.T, title, price string, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		ID:         uuid.New(),
		Title:      title,
		Author:     "Checkout Author",
		Price:      decimal.RequireFromString(price),
		ISBN:       fmt.Sprintf("isbn-%s", uuid.NewString()),
		Stock:      stock,
		CategoryID: uuid.New(),
		SellerID:   uuid.New(),
	}
	require.NoError(t, f.db.Create(book).Error)
	return book
}

func (f *checkoutFixture) mustFillCart(t *testing.T, lines map[uuid.UUID]int) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Cart{OwnerID: f.buyer.ID}).Error)

	position := 0
	for bookID, qty := range lines {
		var book models.Book
		require.NoError(t, f.db.First(&book, "id = ?", bookID).Error)
		item := &models.CartItem{
			ID:       uuid.New(),
			CartID:   f.buyer.ID,
			BookID:   bookID,
			Quantity: qty,
			Subtotal: book.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2),
			Position: position,
		}
		require.NoError(t, f.db.Create(item).Error)
		position++
	}
}

func (f *checkoutFixture) stockOf(t *testing.T, bookID uuid.UUID) int {
	t.Helper()
	var stock int
	require.NoError(t, f.db.Raw("SELECT stock FROM books WHERE id = ?", bookID).Scan(&stock).Error)
	return stock
}

func (f *checkoutFixture) cartItemCount(t *testing.T) int {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("cart_id = ?", f.buyer.ID).Count(&count).Error)
	return int(count)
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	first := f.mustCreateBook(t, "Dune", "14.99", 5)
	second := f.mustCreateBook(t, "Hyperion", "9.99", 5)
	f.mustFillCart(t, map[uuid.UUID]int{first.ID: 2, second.ID: 1})

	receipt, err := f.svc.Checkout(ctx, f.buyer.ID)
	require.NoError(t, err)

	assert.Equal(t, "39.97", receipt.TotalAmount)
	assert.Equal(t, enums.CurrencyUSD, receipt.Currency)
	assert.Equal(t, 3, receipt.TotalItems)
	require.Len(t, receipt.Items, 2)
	assert.False(t, receipt.CheckedOutAt.IsZero())

	assert.Equal(t, 3, f.stockOf(t, first.ID))
	assert.Equal(t, 4, f.stockOf(t, second.ID))

	assert.Zero(t, f.cartItemCount(t), "cart emptied after checkout")
	var cartRow models.Cart
	require.NoError(t, f.db.First(&cartRow, "owner_id = ?", f.buyer.ID).Error)
	assert.Equal(t, 0, cartRow.TotalQuantity)
	assert.True(t, cartRow.TotalPrice.IsZero())

	assert.Equal(t, 1, f.locker.acquires)
	assert.Equal(t, 1, f.locker.releases, "lock released after checkout")
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	// No cart at all.
	_, err := f.svc.Checkout(ctx, f.buyer.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// Cart exists but holds nothing.
	require.NoError(t, f.db.Create(&models.Cart{OwnerID: f.buyer.ID}).Error)
	_, err = f.svc.Checkout(ctx, f.buyer.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCheckoutInsufficientStockMutatesNothing(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	plenty := f.mustCreateBook(t, "In Stock", "5.00", 10)
	scarce := f.mustCreateBook(t, "Scarce", "5.00", 2)
	f.mustFillCart(t, map[uuid.UUID]int{plenty.ID: 1, scarce.ID: 5})

	_, err := f.svc.Checkout(ctx, f.buyer.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Scarce", details["book"])
	assert.Equal(t, 2, details["available"])

	assert.Equal(t, 10, f.stockOf(t, plenty.ID), "validation pass must not mutate")
	assert.Equal(t, 2, f.stockOf(t, scarce.ID))
	assert.Equal(t, 2, f.cartItemCount(t), "cart intact after failed checkout")
	assert.Equal(t, 1, f.locker.releases, "lock released on failure")
}

func TestCheckoutMissingBook(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	book := f.mustCreateBook(t, "Ghost", "5.00", 5)
	f.mustFillCart(t, map[uuid.UUID]int{book.ID: 1})
	require.NoError(t, f.db.Exec("DELETE FROM books WHERE id = ?", book.ID).Error)

	_, err := f.svc.Checkout(ctx, f.buyer.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCheckoutLockContention(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	book := f.mustCreateBook(t, "Contended", "5.00", 5)
	f.mustFillCart(t, map[uuid.UUID]int{book.ID: 1})

	f.locker.denyAll = true
	_, err := f.svc.Checkout(ctx, f.buyer.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, 5, f.stockOf(t, book.ID))
	assert.Equal(t, 1, f.cartItemCount(t))
}

func TestCheckoutCompensatesOnMidCommitFailure(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := context.Background()

	// The failing book must sort after the healthy one in position order.
	healthy := f.mustCreateBook(t, "Healthy", "5.00", 5)
	doomed := f.mustCreateBook(t, "Doomed", "5.00", 5)

	inv := failingInventory{Repository: books.NewRepository(f.db), failBookID: doomed.ID}
	svc, err := NewService(sqliteRunner{db: f.db}, cart.NewRepository(f.db), inv, f.locker, config.CheckoutConfig{})
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&models.Cart{OwnerID: f.buyer.ID}).Error)
	for position, book := range []*models.Book{healthy, doomed} {
		item := &models.CartItem{
			ID:       uuid.New(),
			CartID:   f.buyer.ID,
			BookID:   book.ID,
			Quantity: 2,
			Subtotal: decimal.RequireFromString("10.00"),
			Position: position,
		}
		require.NoError(t, f.db.Create(item).Error)
	}

	_, err = svc.Checkout(ctx, f.buyer.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())

	assert.Equal(t, 5, f.stockOf(t, healthy.ID), "decrement rolled back by compensation")
	assert.Equal(t, 5, f.stockOf(t, doomed.ID))
	assert.Equal(t, 2, f.cartItemCount(t), "cart untouched after failed commit")
}
