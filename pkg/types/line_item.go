package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is an immutable product snapshot captured when a cart is converted
// into a checkout (and later copied onto the order).
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineItems is persisted as jsonb via the gorm json serializer.
type LineItems []LineItem

// Subtotal sums quantity times unit price across the snapshot.
func (items LineItems) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
