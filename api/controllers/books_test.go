package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwell/bookstore-backend/api/middleware"
	booksvc "github.com/inkwell/bookstore-backend/internal/books"
	pkgerrors "github.com/inkwell/bookstore-backend/pkg/errors"
)

type stubBookService struct {
	book        *booksvc.BookDTO
	list        []booksvc.BookDTO
	err         error
	lastFilters booksvc.ListFilters
	lastStock   int
	lastInput   booksvc.CreateBookInput
}

func (s *stubBookService) Create(ctx context.Context, sellerID uuid.UUID, input booksvc.CreateBookInput) (*booksvc.BookDTO, error) {
	s.lastInput = input
	return s.book, s.err
}

func (s *stubBookService) Update(ctx context.Context, sellerID, bookID uuid.UUID, input booksvc.UpdateBookInput) (*booksvc.BookDTO, error) {
	return s.book, s.err
}

func (s *stubBookService) SetStock(ctx context.Context, sellerID, bookID uuid.UUID, stock int) (*booksvc.BookDTO, error) {
	s.lastStock = stock
	return s.book, s.err
}

func (s *stubBookService) Delete(ctx context.Context, sellerID, bookID uuid.UUID) error {
	return s.err
}

func (s *stubBookService) Get(ctx context.Context, bookID uuid.UUID) (*booksvc.BookDTO, error) {
	return s.book, s.err
}

func (s *stubBookService) List(ctx context.Context, filters booksvc.ListFilters) ([]booksvc.BookDTO, error) {
	s.lastFilters = filters
	return s.list, s.err
}

func sellerRequest(req *http.Request, sellerID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), sellerID.String()))
}

func TestBookListForwardsFilters(t *testing.T) {
	categoryID := uuid.New()
	service := &stubBookService{list: []booksvc.BookDTO{{Title: "Dune", Price: "9.99"}}}
	handler := BookList(service, nil)

	target := fmt.Sprintf("/api/v1/books?category_id=%s&q=dune", categoryID)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastFilters.CategoryID == nil || *service.lastFilters.CategoryID != categoryID {
		t.Fatalf("category filter not forwarded: %+v", service.lastFilters)
	}
	if service.lastFilters.Query != "dune" {
		t.Fatalf("query filter not forwarded: %q", service.lastFilters.Query)
	}

	var envelope struct {
		Data []booksvc.BookDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Price != "9.99" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestBookListRejectsBadCategoryID(t *testing.T) {
	handler := BookList(&stubBookService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books?category_id=nope", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookDetailNotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/v1/books/{bookId}", BookDetail(&stubBookService{err: pkgerrors.New(pkgerrors.CodeNotFound, "book not found")}, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestBookCreateSuccess(t *testing.T) {
	sellerID := uuid.New()
	categoryID := uuid.New()
	service := &stubBookService{book: &booksvc.BookDTO{Title: "Dune", Price: "9.99"}}
	handler := BookCreate(service, nil)

	body := fmt.Sprintf(`{
		"title": "Dune",
		"author": "Frank Herbert",
		"price": "9.99",
		"isbn": "9780441172719",
		"stock": 10,
		"category_id": "%s"
	}`, categoryID)
	req := sellerRequest(httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(body)), sellerID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !service.lastInput.Price.Equal(service.lastInput.Price.Round(2)) || service.lastInput.Price.StringFixed(2) != "9.99" {
		t.Fatalf("price not parsed: %s", service.lastInput.Price)
	}
}

func TestBookCreateRejectsBadPrice(t *testing.T) {
	sellerID := uuid.New()
	handler := BookCreate(&stubBookService{}, nil)

	body := fmt.Sprintf(`{
		"title": "Dune",
		"author": "Frank Herbert",
		"price": "nine dollars",
		"isbn": "9780441172719",
		"stock": 10,
		"category_id": "%s"
	}`, uuid.New())
	req := sellerRequest(httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(body)), sellerID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookCreateMissingUserContext(t *testing.T) {
	handler := BookCreate(&stubBookService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestBookSetStockForwardsValue(t *testing.T) {
	sellerID := uuid.New()
	service := &stubBookService{book: &booksvc.BookDTO{Stock: 40}}

	router := chi.NewRouter()
	router.Patch("/api/v1/books/{bookId}/stock", BookSetStock(service, nil))

	req := sellerRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/books/"+uuid.NewString()+"/stock", strings.NewReader(`{"stock": 40}`)), sellerID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if service.lastStock != 40 {
		t.Fatalf("expected stock 40 forwarded, got %d", service.lastStock)
	}
}

func TestBookDeleteForbidden(t *testing.T) {
	sellerID := uuid.New()
	router := chi.NewRouter()
	router.Delete("/api/v1/books/{bookId}", BookDelete(&stubBookService{err: pkgerrors.New(pkgerrors.CodeForbidden, "book does not belong to seller")}, nil))

	req := sellerRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/books/"+uuid.NewString(), nil), sellerID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
