package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell/bookstore-backend/pkg/db/models"
	pkgerrors "github.com/inkwell/bookstore-backend/pkg/errors"
)

type stubRepo struct {
	byName    map[string]*models.Category
	created   []*models.Category
	updateErr error
	deleteErr error
}

func (s *stubRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.ID = uuid.New()
	s.created = append(s.created, category)
	return category, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	for _, c := range s.created {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByName(ctx context.Context, name string) (*models.Category, error) {
	if c, ok := s.byName[name]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return category, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.created[:0]
	for _, c := range s.created {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.created = kept
	return nil
}

func (s *stubRepo) List(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(s.created))
	for _, c := range s.created {
		out = append(out, *c)
	}
	return out, nil
}

func TestCreateTrimsAndPersists(t *testing.T) {
	repo := &stubRepo{byName: map[string]*models.Category{}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Create(context.Background(), CreateCategoryInput{
		Name:        "  Science Fiction  ",
		Description: " Speculative futures ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Science Fiction" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Description != "Speculative futures" {
		t.Fatalf("expected trimmed description, got %q", created.Description)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	repo := &stubRepo{byName: map[string]*models.Category{
		"History": {ID: uuid.New(), Name: "History"},
	}}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreateCategoryInput{Name: "History"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateRenamesCategory(t *testing.T) {
	repo := &stubRepo{byName: map[string]*models.Category{}}
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), CreateCategoryInput{Name: "Histroy"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "History"
	updated, err := svc.Update(context.Background(), created.ID, UpdateCategoryInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "History" {
		t.Fatalf("expected renamed category, got %q", updated.Name)
	}
}

func TestUpdateRejectsTakenName(t *testing.T) {
	repo := &stubRepo{byName: map[string]*models.Category{
		"History": {ID: uuid.New(), Name: "History"},
	}}
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), CreateCategoryInput{Name: "Drama"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "History"
	_, err = svc.Update(context.Background(), created.ID, UpdateCategoryInput{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteRemovesCategory(t *testing.T) {
	repo := &stubRepo{byName: map[string]*models.Category{}}
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), CreateCategoryInput{Name: "Poetry"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = svc.Get(context.Background(), created.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteUnknownCategory(t *testing.T) {
	repo := &stubRepo{byName: map[string]*models.Category{}}
	svc, _ := NewService(repo)

	err := svc.Delete(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetUnknownCategory(t *testing.T) {
	repo := &stubRepo{byName: map[string]*models.Category{}}
	svc, _ := NewService(repo)

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
