package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	"github.com/boxport/boxport-backend/pkg/pagination"
)

// CategoryDTO is the transport shape for a catalog category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceDTO is one destination price on a product.
type PriceDTO struct {
	ID      uuid.UUID       `json:"id"`
	Country enums.Country   `json:"country"`
	Amount  decimal.Decimal `json:"amount"`
}

// ProductDTO is the transport shape for a catalog product. Price carries the
// destination-resolved unit price when the caller supplied a country.
type ProductDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Size        string           `json:"size"`
	CategoryID  uuid.UUID        `json:"category_id"`
	Category    *CategoryDTO     `json:"category,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	IsActive    bool             `json:"is_active"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Prices      []PriceDTO       `json:"prices,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductList is one page of products plus the cursor for the next page.
type ProductList struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// ListProductsInput captures the filter and pagination knobs for browsing.
type ListProductsInput struct {
	Country       *enums.Country
	CategoryID    *uuid.UUID
	Query         string
	IncludeHidden bool
	IncludePrices bool
	Pagination    pagination.Params
}

// PriceInput sets one destination price on a product.
type PriceInput struct {
	Country string `json:"country" validate:"required"`
	Amount  string `json:"amount" validate:"required"`
}

// CreateProductInput holds the admin payload for a new product.
type CreateProductInput struct {
	Name        string       `json:"name" validate:"required"`
	Description *string      `json:"description,omitempty"`
	Size        string       `json:"size" validate:"required"`
	CategoryID  uuid.UUID    `json:"category_id" validate:"required"`
	ImageURL    *string      `json:"image_url,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
	Prices      []PriceInput `json:"prices,omitempty" validate:"dive"`
}

// UpdateProductInput holds the admin payload for a partial product update.
type UpdateProductInput struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Size        *string    `json:"size,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

// CategoryInput holds the admin payload for creating or renaming a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

// CategoryFromModel maps the persistence model to its DTO.
func CategoryFromModel(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ProductFromModel maps the persistence model to its DTO. When country is set
// and the loaded price rows contain that destination, Price is populated.
func ProductFromModel(p *models.Product, country *enums.Country, includePrices bool) *ProductDTO {
	if p == nil {
		return nil
	}

	dto := &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Size:        p.Size,
		CategoryID:  p.CategoryID,
		Category:    CategoryFromModel(p.Category),
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	for _, price := range p.Prices {
		if includePrices {
			dto.Prices = append(dto.Prices, PriceDTO{
				ID:      price.ID,
				Country: price.Country,
				Amount:  price.Amount,
			})
		}
		if country != nil && price.Country == *country {
			amount := price.Amount
			dto.Price = &amount
		}
	}

	return dto
}
