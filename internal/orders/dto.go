package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	"github.com/boxport/boxport-backend/pkg/types"
)

// OrderItemDTO is one purchased line on an order.
type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderDTO is the transport shape for an order.
type OrderDTO struct {
	ID              uuid.UUID            `json:"id"`
	CheckoutID      uuid.UUID            `json:"checkout_id"`
	Status          enums.OrderStatus    `json:"status"`
	ShippingAddress types.Address        `json:"shipping_address"`
	Destination     enums.Country        `json:"destination"`
	ShippingMethod  enums.ShippingMethod `json:"shipping_method"`
	TotalPrice      decimal.Decimal      `json:"total_price"`
	Currency        enums.Currency       `json:"currency"`
	ChargeID        *string              `json:"charge_id,omitempty"`
	Items           []OrderItemDTO       `json:"items"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// UpdateStatusInput holds the admin payload for advancing an order.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListFilters narrows admin order listings.
type ListFilters struct {
	Status  *enums.OrderStatus
	OwnerID string
}

// FromModel maps the persistence model to its DTO.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return &OrderDTO{
		ID:              o.ID,
		CheckoutID:      o.CheckoutID,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		Destination:     o.Destination,
		ShippingMethod:  o.ShippingMethod,
		TotalPrice:      o.TotalPrice,
		Currency:        o.Currency,
		ChargeID:        o.ChargeID,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// BuildFromCheckout materializes the order rows for a paid checkout. The
// order copies the checkout's snapshot so later catalog edits never change
// what was sold.
func BuildFromCheckout(c *models.Checkout) *models.Order {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return &models.Order{
		CheckoutID:      c.ID,
		OwnerID:         c.OwnerID,
		Status:          enums.OrderStatusProcessing,
		ShippingAddress: c.ShippingAddress,
		Destination:     c.Destination,
		ShippingMethod:  c.ShippingMethod,
		TotalPrice:      c.TotalPrice,
		Currency:        c.Currency,
		ChargeID:        c.ChargeID,
		Items:           items,
	}
}
