package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
	"github.com/inkwell/bookstore-backend/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	books := `
CREATE TABLE IF NOT EXISTS books (
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
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  owner_id TEXT PRIMARY KEY,
  total_quantity INTEGER NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  subtotal NUMERIC NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, book_id)
);`

	for _, stmt := range []string{users, categories, books, carts, cartItems} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func mustCreateCartTestBuyer(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("buyer_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         "Cart Buyer",
		Role:         enums.UserRoleBuyer,
		IsActive:     true,
	}
	require.NoError(t, tx.Create(user).Error)
	return user
}

func mustCreateCartTestBook(t *testing.T, tx *gorm.DB, price string, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		ID:         uuid.New(),
		Title:      fmt.Sprintf("Book %s", uuid.NewString()[:8]),
		Author:     "Cart Author",
		Price:      decimal.RequireFromString(price),
		ISBN:       fmt.Sprintf("isbn-%s", uuid.NewString()),
		Stock:      stock,
		CategoryID: uuid.New(),
		SellerID:   uuid.New(),
	}
	require.NoError(t, tx.Create(book).Error)
	return book
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type gormBookLoader struct {
	db *gorm.DB
}

func (l gormBookLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := l.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func newTestCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, gormBookLoader{db: db})
	require.NoError(t, err)
	return svc
}
