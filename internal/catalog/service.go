package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/aurumpos/aurumpos/internal/shared"
)

// RepositoryPort abstracts catalog storage for the service.
type RepositoryPort interface {
	ListCategories(ctx context.Context, shopID string) ([]Category, error)
	GetCategory(ctx context.Context, shopID, id string) (Category, error)
	FindCategoryByFold(ctx context.Context, shopID, nameFold string) (Category, error)
	CreateCategory(ctx context.Context, c Category, nameFold string) error
	DeleteCategory(ctx context.Context, shopID, id string) error

	ListSubCategories(ctx context.Context, shopID string) ([]SubCategory, error)
	FindSubCategoryByFold(ctx context.Context, shopID, categoryID, nameFold string) (SubCategory, error)
	CreateSubCategory(ctx context.Context, sc SubCategory, nameFold string) error
	DeleteSubCategory(ctx context.Context, shopID, id string) error
}

// Service resolves free-text category input into stable ids and manages the
// catalog entities.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

var folder = cases.Fold()

// Fold normalises a name for case-insensitive matching.
func Fold(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// ListCategories returns all categories in the shop.
func (s *Service) ListCategories(ctx context.Context, shopID string) ([]Category, error) {
	return s.repo.ListCategories(ctx, shopID)
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, shopID, id string) (Category, error) {
	return s.repo.GetCategory(ctx, shopID, id)
}

// ListSubCategories returns all sub-categories in the shop.
func (s *Service) ListSubCategories(ctx context.Context, shopID string) ([]SubCategory, error) {
	return s.repo.ListSubCategories(ctx, shopID)
}

// ResolveCategory finds a category by typed name, case-insensitively, creating
// it with the given metal type when absent. Resolving the same name twice
// yields the same id.
func (s *Service) ResolveCategory(ctx context.Context, shopID, typedName string, metalIfNew MetalType) (Category, error) {
	name := strings.TrimSpace(typedName)
	if name == "" {
		return Category{}, shared.ErrMissingCategory
	}
	fold := Fold(name)
	existing, err := s.repo.FindCategoryByFold(ctx, shopID, fold)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Category{}, err
	}
	if !metalIfNew.Valid() {
		return Category{}, fmt.Errorf("%w: metal type required for new category %q", shared.ErrValidation, name)
	}
	category := Category{
		ID:        uuid.NewString(),
		ShopID:    shopID,
		Name:      name,
		Type:      metalIfNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateCategory(ctx, category, fold); err != nil {
		// A concurrent resolve may have created the same name first.
		if errors.Is(err, shared.ErrDuplicate) {
			return s.repo.FindCategoryByFold(ctx, shopID, fold)
		}
		return Category{}, err
	}
	return category, nil
}

// ResolveSubCategory applies the same find-or-create semantics scoped to a
// category. A blank name means "no sub-category" and returns the zero value.
func (s *Service) ResolveSubCategory(ctx context.Context, shopID, categoryID, typedName string) (SubCategory, error) {
	name := strings.TrimSpace(typedName)
	if name == "" {
		return SubCategory{}, nil
	}
	if categoryID == "" {
		return SubCategory{}, shared.ErrMissingCategory
	}
	fold := Fold(name)
	existing, err := s.repo.FindSubCategoryByFold(ctx, shopID, categoryID, fold)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return SubCategory{}, err
	}
	sub := SubCategory{
		ID:         uuid.NewString(),
		ShopID:     shopID,
		CategoryID: categoryID,
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateSubCategory(ctx, sub, fold); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return s.repo.FindSubCategoryByFold(ctx, shopID, categoryID, fold)
		}
		return SubCategory{}, err
	}
	return sub, nil
}

// DeleteCategory removes a category and, by cascade, its sub-categories.
// Products referencing it keep their dangling categoryId; the pricing engine
// quotes such products at zero.
func (s *Service) DeleteCategory(ctx context.Context, shopID, id string) error {
	return s.repo.DeleteCategory(ctx, shopID, id)
}

// DeleteSubCategory removes one sub-category.
func (s *Service) DeleteSubCategory(ctx context.Context, shopID, id string) error {
	return s.repo.DeleteSubCategory(ctx, shopID, id)
}
