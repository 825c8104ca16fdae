package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/db"
	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
)

// Store is the persistence surface the catalog service depends on.
type Store interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, *string, error)
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	SaveCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CountProductsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// Service exposes storefront reads and back-office writes for the catalog.
type Service struct {
	store Store
}

// NewService builds a catalog service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	return &Service{store: store}, nil
}

// ListProducts returns one page of visible products. Hidden products are
// only included for back-office callers.
func (s *Service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductList, error) {
	products, next, err := s.store.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *ProductFromModel(&products[i], input.Country, input.IncludePrices))
	}
	return &ProductList{Products: out, NextCursor: next}, nil
}

// GetProduct returns one product. Inactive products are hidden from
// storefront callers but visible to the back office.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID, country *enums.Country, includeHidden bool) (*ProductDTO, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive && !includeHidden {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return ProductFromModel(product, country, includeHidden), nil
}

// CreateProduct inserts a product and its destination prices.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	size := strings.TrimSpace(input.Size)
	if size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product size required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if _, err := s.store.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	prices, err := buildPriceRows(input.Prices)
	if err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &models.Product{
		Name:        name,
		Description: input.Description,
		Size:        size,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
		IsActive:    isActive,
		Prices:      prices,
	}

	created, err := s.store.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return ProductFromModel(created, nil, true), nil
}

// UpdateProduct applies a partial update to the product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if input.CategoryID != nil && *input.CategoryID != product.CategoryID {
		if _, err := s.store.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
	}

	applyProductUpdate(product, input)

	saved, err := s.store.SaveProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product")
	}
	return ProductFromModel(saved, nil, true), nil
}

// DeleteProduct removes a product and its prices.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		out = append(out, *CategoryFromModel(&categories[i]))
	}
	return out, nil
}

// CreateCategory inserts a new category with a unique name.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	created, err := s.store.CreateCategory(ctx, &models.Category{Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_categories_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return CategoryFromModel(created), nil
}

// UpdateCategory renames a category.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category, err := s.store.FindCategoryByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	category.Name = name
	saved, err := s.store.SaveCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_categories_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save category")
	}
	return CategoryFromModel(saved), nil
}

// DeleteCategory removes an empty category. Categories still referenced by
// products cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	count, err := s.store.CountProductsInCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category still has products")
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func buildPriceRows(inputs []PriceInput) ([]models.ProductPrice, error) {
	seen := map[enums.Country]bool{}
	rows := make([]models.ProductPrice, 0, len(inputs))
	for _, in := range inputs {
		country, err := enums.ParseCountry(in.Country)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		if seen[country] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate price for country %q", country))
		}
		seen[country] = true

		amount, err := decimal.NewFromString(in.Amount)
		if err != nil || amount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid price amount %q", in.Amount))
		}
		rows = append(rows, models.ProductPrice{Country: country, Amount: amount})
	}
	return rows, nil
}

func applyProductUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Size != nil {
		product.Size = strings.TrimSpace(*input.Size)
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
