package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
)

type priceStore interface {
	FindPrice(ctx context.Context, productID uuid.UUID, country enums.Country) (*models.ProductPrice, error)
	ListPricesByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductPrice, error)
	UpsertPrice(ctx context.Context, price *models.ProductPrice) (*models.ProductPrice, error)
	DeletePrice(ctx context.Context, id uuid.UUID) error
}

// PriceDTO is the admin-facing view of one destination price.
type PriceDTO struct {
	ID      uuid.UUID       `json:"id"`
	Country enums.Country   `json:"country"`
	Amount  decimal.Decimal `json:"amount"`
}

// UpsertPriceInput sets one product's price for one destination.
type UpsertPriceInput struct {
	Country string `json:"country" validate:"required"`
	Amount  string `json:"amount" validate:"required"`
}

// Admin manages the per-country price matrix.
type Admin struct {
	prices priceStore
}

// NewAdmin constructs the admin price manager.
func NewAdmin(prices priceStore) (*Admin, error) {
	if prices == nil {
		return nil, fmt.Errorf("price store is required")
	}
	return &Admin{prices: prices}, nil
}

// ListForProduct returns every destination price configured for a product.
func (a *Admin) ListForProduct(ctx context.Context, productID uuid.UUID) ([]PriceDTO, error) {
	rows, err := a.prices.ListPricesByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prices")
	}
	out := make([]PriceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, PriceDTO{ID: row.ID, Country: row.Country, Amount: row.Amount})
	}
	return out, nil
}

// Upsert sets or replaces the price for one product and destination.
func (a *Admin) Upsert(ctx context.Context, productID uuid.UUID, input UpsertPriceInput) (*PriceDTO, error) {
	country, err := enums.ParseCountry(input.Country)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a decimal string")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}

	row, err := a.prices.UpsertPrice(ctx, &models.ProductPrice{
		ProductID: productID,
		Country:   country,
		Amount:    amount,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert price")
	}
	return &PriceDTO{ID: row.ID, Country: row.Country, Amount: row.Amount}, nil
}

// Delete removes the price for one product and destination. Products with no
// price for a country simply cannot ship there.
func (a *Admin) Delete(ctx context.Context, productID uuid.UUID, rawCountry string) error {
	country, err := enums.ParseCountry(rawCountry)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	row, err := a.prices.FindPrice(ctx, productID, country)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find price")
	}
	if err := a.prices.DeletePrice(ctx, row.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price")
	}
	return nil
}
