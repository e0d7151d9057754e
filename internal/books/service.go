package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inkwell/bookstore-backend/pkg/db"
	"github.com/inkwell/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/inkwell/bookstore-backend/pkg/errors"
)

// Service exposes seller catalog management plus the public read paths.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateBookInput) (*BookDTO, error)
	Update(ctx context.Context, sellerID, bookID uuid.UUID, input UpdateBookInput) (*BookDTO, error)
	SetStock(ctx context.Context, sellerID, bookID uuid.UUID, stock int) (*BookDTO, error)
	Delete(ctx context.Context, sellerID, bookID uuid.UUID) error
	Get(ctx context.Context, bookID uuid.UUID) (*BookDTO, error)
	List(ctx context.Context, filters ListFilters) ([]BookDTO, error)
}

// CreateBookInput holds the validated payload to create a listing.
type CreateBookInput struct {
	Title      string
	Author     string
	Price      decimal.Decimal
	ISBN       string
	Stock      int
	CategoryID uuid.UUID
}

// UpdateBookInput holds optional mutation values for a listing. Stock is
// mutated only through SetStock so stock writes stay explicit.
type UpdateBookInput struct {
	Title      *string
	Author     *string
	Price      *decimal.Decimal
	ISBN       *string
	CategoryID *uuid.UUID
}

type categoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo         *Repository
	categoryRepo categoryLoader
}

// NewService constructs a book service instance.
func NewService(repo *Repository, categoryRepo categoryLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("book repository required")
	}
	if categoryRepo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo, categoryRepo: categoryRepo}, nil
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateBookInput) (*BookDTO, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	isbn := strings.TrimSpace(input.ISBN)

	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if author == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author is required")
	}
	if isbn == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}

	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.ensureISBNFree(ctx, isbn); err != nil {
		return nil, err
	}

	book := &models.Book{
		ID:         uuid.New(),
		Title:      title,
		Author:     author,
		Price:      input.Price.Round(2),
		ISBN:       isbn,
		Stock:      input.Stock,
		CategoryID: input.CategoryID,
		SellerID:   sellerID,
	}

	created, err := s.repo.Create(ctx, book)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "isbn already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert book")
	}
	return s.loadDetail(ctx, created.ID)
}

func (s *service) Update(ctx context.Context, sellerID, bookID uuid.UUID, input UpdateBookInput) (*BookDTO, error) {
	book, err := s.loadOwned(ctx, sellerID, bookID)
	if err != nil {
		return nil, err
	}

	if input.Price != nil && input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.ISBN != nil {
		isbn := strings.TrimSpace(*input.ISBN)
		if isbn == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "isbn is required")
		}
		if isbn != book.ISBN {
			if err := s.ensureISBNFree(ctx, isbn); err != nil {
				return nil, err
			}
		}
		book.ISBN = isbn
	}

	applyUpdateToBook(book, input)

	if _, err := s.repo.Update(ctx, book); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "isbn already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
	}
	return s.loadDetail(ctx, book.ID)
}

func (s *service) SetStock(ctx context.Context, sellerID, bookID uuid.UUID, stock int) (*BookDTO, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}

	book, err := s.loadOwned(ctx, sellerID, bookID)
	if err != nil {
		return nil, err
	}

	book.Stock = stock
	if _, err := s.repo.Update(ctx, book); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	return s.loadDetail(ctx, book.ID)
}

func (s *service) Delete(ctx context.Context, sellerID, bookID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, sellerID, bookID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, bookID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete book")
	}
	return nil
}

func (s *service) Get(ctx context.Context, bookID uuid.UUID) (*BookDTO, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	book, err := s.repo.FindDetail(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return NewBookDTO(book), nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]BookDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	return NewBookDTOs(rows), nil
}

func (s *service) loadOwned(ctx context.Context, sellerID, bookID uuid.UUID) (*models.Book, error) {
	book, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if book.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "book does not belong to seller")
	}
	return book, nil
}

func (s *service) loadDetail(ctx context.Context, bookID uuid.UUID) (*BookDTO, error) {
	book, err := s.repo.FindDetail(ctx, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book detail")
	}
	return NewBookDTO(book), nil
}

func (s *service) ensureCategory(ctx context.Context, categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return nil
}

func (s *service) ensureISBNFree(ctx context.Context, isbn string) error {
	if _, err := s.repo.FindByISBN(ctx, isbn); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "isbn already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check isbn")
	}
	return nil
}

func applyUpdateToBook(book *models.Book, input UpdateBookInput) {
	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.Price != nil {
		book.Price = input.Price.Round(2)
	}
	if input.CategoryID != nil {
		book.CategoryID = *input.CategoryID
	}
}
