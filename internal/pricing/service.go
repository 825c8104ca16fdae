package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/config"
	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/types"
)

// PriceReader is the read subset the quoting paths depend on.
type PriceReader interface {
	FindPrice(ctx context.Context, productID uuid.UUID, country enums.Country) (*models.ProductPrice, error)
}

// Quote breaks a checkout total into its charged components.
type Quote struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	Total         decimal.Decimal `json:"total"`
}

// Service resolves destination prices and computes checkout quotes from the
// configured flat shipping rates and processing fee.
type Service struct {
	prices        PriceReader
	standardRate  decimal.Decimal
	expressRate   decimal.Decimal
	processingFee decimal.Decimal
}

// NewService parses the configured rates and builds a pricing service.
func NewService(prices PriceReader, cfg config.CheckoutConfig) (*Service, error) {
	if prices == nil {
		return nil, fmt.Errorf("price reader required")
	}
	standard, err := decimal.NewFromString(cfg.StandardShippingRate)
	if err != nil {
		return nil, fmt.Errorf("invalid standard shipping rate %q: %w", cfg.StandardShippingRate, err)
	}
	express, err := decimal.NewFromString(cfg.ExpressShippingRate)
	if err != nil {
		return nil, fmt.Errorf("invalid express shipping rate %q: %w", cfg.ExpressShippingRate, err)
	}
	fee, err := decimal.NewFromString(cfg.ProcessingFee)
	if err != nil {
		return nil, fmt.Errorf("invalid processing fee %q: %w", cfg.ProcessingFee, err)
	}
	return &Service{
		prices:        prices,
		standardRate:  standard,
		expressRate:   express,
		processingFee: fee,
	}, nil
}

// PriceFor resolves the unit price of a product for the destination country.
// A product with no configured price for the destination is an explicit
// failure, never a fallback to another country's price.
func (s *Service) PriceFor(ctx context.Context, productID uuid.UUID, country enums.Country) (decimal.Decimal, error) {
	if !country.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unsupported destination country")
	}
	price, err := s.prices.FindPrice(ctx, productID, country)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product has no price for destination").
				WithDetails(map[string]any{"product_id": productID, "country": country})
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product price")
	}
	return price.Amount, nil
}

// ShippingRate returns the flat rate for the shipping method.
func (s *Service) ShippingRate(method enums.ShippingMethod) decimal.Decimal {
	if method == enums.ShippingMethodExpress {
		return s.expressRate
	}
	return s.standardRate
}

// ProcessingFee returns the flat per-checkout processing fee.
func (s *Service) ProcessingFee() decimal.Decimal {
	return s.processingFee
}

// QuoteTotal prices a line item snapshot: item subtotal plus the flat
// shipping rate for the method plus the processing fee.
func (s *Service) QuoteTotal(items types.LineItems, method enums.ShippingMethod) Quote {
	subtotal := items.Subtotal()
	shipping := s.ShippingRate(method)
	return Quote{
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		ProcessingFee: s.processingFee,
		Total:         subtotal.Add(shipping).Add(s.processingFee),
	}
}
