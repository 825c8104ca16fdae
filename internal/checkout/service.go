package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/internal/orders"
	"github.com/boxport/boxport-backend/internal/pricing"
	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
	"github.com/boxport/boxport-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartSource interface {
	FetchModel(ctx context.Context, ownerID string) (*models.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type quoter interface {
	PriceFor(ctx context.Context, productID uuid.UUID, country enums.Country) (decimal.Decimal, error)
	QuoteTotal(items types.LineItems, method enums.ShippingMethod) pricing.Quote
}

// Service owns the checkout lifecycle: create from cart, record payment,
// finalize into an order.
type Service struct {
	repo   Store
	orders orders.Store
	tx     txRunner
	carts  cartSource
	prices quoter
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	Repo    Store
	Orders  orders.Store
	Tx      txRunner
	Carts   cartSource
	Pricing quoter
	Logger  *logger.Logger
	Now     func() time.Time
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("checkout store required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   params.Repo,
		orders: params.Orders,
		tx:     params.Tx,
		carts:  params.Carts,
		prices: params.Pricing,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// Create snapshots the owner's cart into a checkout draft. Every line is
// repriced for the shipping destination; a product without a price there
// fails the whole checkout.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*CheckoutDTO, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout owner required")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	destination, err := enums.ParseCountry(input.ShippingAddress.Country)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	method, err := enums.ParseShippingMethod(input.ShippingMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	cartModel, err := s.carts.FetchModel(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(cartModel.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make(types.LineItems, 0, len(cartModel.Items))
	for _, line := range cartModel.Items {
		unitPrice, err := s.prices.PriceFor(ctx, line.ProductID, destination)
		if err != nil {
			return nil, err
		}
		items = append(items, types.LineItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		})
	}

	quote := s.prices.QuoteTotal(items, method)

	contactEmail := input.ContactEmail
	if contactEmail == "" {
		contactEmail = input.ShippingAddress.Email
	}

	checkout := &models.Checkout{
		OwnerID:         ownerID,
		Items:           items,
		ShippingAddress: input.ShippingAddress,
		Destination:     destination,
		ShippingMethod:  method,
		Subtotal:        quote.Subtotal,
		ShippingCost:    quote.ShippingCost,
		ProcessingFee:   quote.ProcessingFee,
		TotalPrice:      quote.Total,
		Currency:        enums.CurrencyUSD,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		ContactEmail:    &contactEmail,
	}

	created, err := s.repo.Create(ctx, checkout)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"checkout_id": created.ID,
		"total":       created.TotalPrice,
	}), "checkout created")
	return FromModel(created), nil
}

// Get loads one checkout and enforces ownership.
func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*CheckoutDTO, error) {
	checkout, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(checkout), nil
}

// Pay records the processor outcome on the checkout and marks it paid.
// The processor has already captured the charge by the time this runs; a
// crash between confirmation and this write loses the record, which is why
// the write is logged on entry.
func (s *Service) Pay(ctx context.Context, ownerID string, id uuid.UUID, input PayInput) (*CheckoutDTO, error) {
	if input.PaymentIntentID == "" || input.PaymentMethodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id and payment method id required")
	}
	currency, err := enums.ParseCurrency(input.PaidCurrency)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	checkout, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if checkout.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already finalized")
	}
	if checkout.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment already recorded")
	}

	ctx = s.logg.WithField(ctx, "checkout_id", checkout.ID)
	s.logg.Info(ctx, "recording payment after processor confirmation")

	paidAt := s.now().UTC()
	updates := map[string]any{
		"payment_status":    enums.PaymentStatusPaid,
		"payment_intent_id": input.PaymentIntentID,
		"payment_method_id": input.PaymentMethodID,
		"paid_amount":       input.PaidAmount,
		"paid_currency":     currency,
		"paid_at":           paidAt,
	}
	if input.ChargeID != nil {
		updates["charge_id"] = *input.ChargeID
	}
	if input.ContactEmail != "" {
		updates["contact_email"] = input.ContactEmail
	}

	if err := s.repo.RecordPayment(ctx, checkout.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
	}

	checkout.PaymentStatus = enums.PaymentStatusPaid
	checkout.PaymentIntentID = &input.PaymentIntentID
	checkout.PaymentMethodID = &input.PaymentMethodID
	checkout.ChargeID = input.ChargeID
	checkout.PaidAmount = &input.PaidAmount
	checkout.PaidCurrency = &currency
	checkout.PaidAt = &paidAt
	return FromModel(checkout), nil
}

// Finalize materializes the order from a paid checkout exactly once. The
// cart is cleared only after the order committed.
func (s *Service) Finalize(ctx context.Context, ownerID string, id uuid.UUID) (*orders.OrderDTO, error) {
	checkout, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if checkout.PaymentStatus != enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not paid")
	}
	if checkout.IsFinalized {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already finalized").
			WithDetails(map[string]any{"order_id": checkout.OrderID})
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderStore := s.orders.WithTx(tx)
		checkoutStore := s.repo.WithTx(tx)

		order, err := orderStore.Create(ctx, orders.BuildFromCheckout(checkout))
		if err != nil {
			return err
		}
		if err := checkoutStore.MarkFinalized(ctx, checkout.ID, order.ID); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyFinalized) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already finalized")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize checkout")
	}

	if err := s.carts.Clear(ctx, ownerID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "checkout_id", checkout.ID), "cart not cleared after finalize")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"checkout_id": checkout.ID,
		"order_id":    created.ID,
	}), "checkout finalized")
	return orders.FromModel(created), nil
}

func (s *Service) load(ctx context.Context, ownerID string, id uuid.UUID) (*models.Checkout, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout owner required")
	}
	checkout, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
	}
	if checkout.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
	}
	return checkout, nil
}
