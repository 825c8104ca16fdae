package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/types"
)

// CartItemDTO is one product line in the cart response.
type CartItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartDTO is the transport shape for an owner's cart. A missing cart is
// rendered as an empty cart, never an error.
type CartDTO struct {
	Products   []CartItemDTO   `json:"products"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	Country   string    `json:"country" validate:"required"`
}

// UpdateItemInput sets the absolute quantity for one cart line. Zero removes
// the line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// EmptyCart returns the canonical empty cart response.
func EmptyCart() *CartDTO {
	return &CartDTO{Products: []CartItemDTO{}, TotalPrice: decimal.Zero}
}

// FromModel maps a persisted cart to its DTO.
func FromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return EmptyCart()
	}
	dto := &CartDTO{
		Products:   make([]CartItemDTO, 0, len(c.Items)),
		TotalPrice: c.TotalPrice,
	}
	for _, item := range c.Items {
		dto.Products = append(dto.Products, CartItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return dto
}

// Snapshot converts the cart's lines into an immutable line item snapshot
// for checkout creation.
func Snapshot(c *models.Cart) types.LineItems {
	if c == nil {
		return types.LineItems{}
	}
	items := make(types.LineItems, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, types.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return items
}
