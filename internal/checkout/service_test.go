package checkout

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/internal/orders"
	"github.com/boxport/boxport-backend/internal/pricing"
	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/logger"
	"github.com/boxport/boxport-backend/pkg/pagination"
	"github.com/boxport/boxport-backend/pkg/types"
)

type fakeCheckoutStore struct {
	byID map[uuid.UUID]*models.Checkout
}

func newFakeCheckoutStore() *fakeCheckoutStore {
	return &fakeCheckoutStore{byID: map[uuid.UUID]*models.Checkout{}}
}

func (f *fakeCheckoutStore) WithTx(tx *gorm.DB) Store { return f }

func (f *fakeCheckoutStore) Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error) {
	clone := *checkout
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now().UTC()
	clone.UpdatedAt = clone.CreatedAt
	f.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeCheckoutStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *stored
	return &out, nil
}

func (f *fakeCheckoutStore) RecordPayment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	stored, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["payment_status"].(enums.PaymentStatus); ok {
		stored.PaymentStatus = status
	}
	if intentID, ok := updates["payment_intent_id"].(string); ok {
		stored.PaymentIntentID = &intentID
	}
	if methodID, ok := updates["payment_method_id"].(string); ok {
		stored.PaymentMethodID = &methodID
	}
	return nil
}

func (f *fakeCheckoutStore) MarkFinalized(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error {
	stored, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.IsFinalized {
		return ErrAlreadyFinalized
	}
	stored.IsFinalized = true
	stored.OrderID = &orderID
	return nil
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeCarts struct {
	cart    *models.Cart
	cleared []string
}

func (f *fakeCarts) FetchModel(ctx context.Context, ownerID string) (*models.Cart, error) {
	if f.cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
	}
	return f.cart, nil
}

func (f *fakeCarts) Clear(ctx context.Context, ownerID string) error {
	f.cleared = append(f.cleared, ownerID)
	return nil
}

type priceKey struct {
	productID uuid.UUID
	country   enums.Country
}

type fakeQuoter struct {
	prices map[priceKey]decimal.Decimal
}

func (f *fakeQuoter) PriceFor(ctx context.Context, productID uuid.UUID, country enums.Country) (decimal.Decimal, error) {
	price, ok := f.prices[priceKey{productID: productID, country: country}]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product is not priced for the destination")
	}
	return price, nil
}

func (f *fakeQuoter) QuoteTotal(items types.LineItems, method enums.ShippingMethod) pricing.Quote {
	shipping := decimal.RequireFromString("19.99")
	if method == enums.ShippingMethodExpress {
		shipping = decimal.RequireFromString("29.99")
	}
	fee := decimal.RequireFromString("12.50")
	subtotal := items.Subtotal()
	return pricing.Quote{
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		ProcessingFee: fee,
		Total:         subtotal.Add(shipping).Add(fee),
	}
}

type fakeOrderStore struct {
	created []*models.Order
}

func (f *fakeOrderStore) WithTx(tx *gorm.DB) orders.Store { return f }

func (f *fakeOrderStore) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	clone := *order
	clone.ID = uuid.New()
	f.created = append(f.created, &clone)
	out := clone
	return &out, nil
}

func (f *fakeOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	for _, o := range f.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderStore) List(ctx context.Context, params pagination.Params, filters orders.ListFilters) ([]models.Order, *string, error) {
	return nil, nil, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return nil
}

func (f *fakeOrderStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func ukAddress() types.Address {
	return types.Address{
		FullName:   "Dana Reeves",
		Line1:      "12 Harbour Way",
		City:       "Bristol",
		PostalCode: "BS1 4DJ",
		Country:    "uk",
		Email:      "dana@example.com",
	}
}

type serviceFixture struct {
	service *Service
	store   *fakeCheckoutStore
	carts   *fakeCarts
	orders  *fakeOrderStore
}

func newServiceFixture(t *testing.T, cart *models.Cart, prices map[priceKey]decimal.Decimal) *serviceFixture {
	t.Helper()
	store := newFakeCheckoutStore()
	carts := &fakeCarts{cart: cart}
	orderStore := &fakeOrderStore{}
	svc, err := NewService(ServiceParams{
		Repo:    store,
		Orders:  orderStore,
		Tx:      passTx{},
		Carts:   carts,
		Pricing: &fakeQuoter{prices: prices},
		Logger:  testLogger(),
		Now:     func() time.Time { return time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return &serviceFixture{service: svc, store: store, carts: carts, orders: orderStore}
}

func TestCreateRepricesForDestination(t *testing.T) {
	productID := uuid.New()
	cart := &models.Cart{
		OwnerID: "owner-1",
		Items: []models.CartItem{
			{ProductID: productID, Name: "medium box", Quantity: 2, UnitPrice: decimal.RequireFromString("20.00")},
		},
	}
	// The cart was priced for canada; the checkout ships to the uk.
	prices := map[priceKey]decimal.Decimal{
		{productID: productID, country: enums.CountryUK}: decimal.RequireFromString("25.00"),
	}
	fx := newServiceFixture(t, cart, prices)

	dto, err := fx.service.Create(context.Background(), "owner-1", CreateInput{
		ShippingAddress: ukAddress(),
		ShippingMethod:  "express",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if dto.Destination != enums.CountryUK {
		t.Fatalf("expected destination uk, got %q", dto.Destination)
	}
	if !dto.Subtotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected repriced subtotal 50.00, got %s", dto.Subtotal)
	}
	if !dto.TotalPrice.Equal(decimal.RequireFromString("92.49")) {
		t.Fatalf("expected total 92.49, got %s", dto.TotalPrice)
	}
	if dto.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid draft, got %q", dto.PaymentStatus)
	}
	if dto.Currency != enums.CurrencyUSD {
		t.Fatalf("expected usd charge currency, got %q", dto.Currency)
	}
}

func TestCreateFailsWhenDestinationUnpriced(t *testing.T) {
	productID := uuid.New()
	cart := &models.Cart{
		OwnerID: "owner-1",
		Items: []models.CartItem{
			{ProductID: productID, Name: "medium box", Quantity: 1, UnitPrice: decimal.RequireFromString("20.00")},
		},
	}
	fx := newServiceFixture(t, cart, map[priceKey]decimal.Decimal{})

	_, err := fx.service.Create(context.Background(), "owner-1", CreateInput{
		ShippingAddress: ukAddress(),
		ShippingMethod:  "standard",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unpriced destination, got %v", err)
	}
	if len(fx.store.byID) != 0 {
		t.Fatal("no checkout should persist when repricing fails")
	}
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	fx := newServiceFixture(t, &models.Cart{OwnerID: "owner-1"}, nil)

	_, err := fx.service.Create(context.Background(), "owner-1", CreateInput{
		ShippingAddress: ukAddress(),
		ShippingMethod:  "standard",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestGetHidesForeignCheckout(t *testing.T) {
	productID := uuid.New()
	cart := &models.Cart{
		OwnerID: "owner-1",
		Items: []models.CartItem{
			{ProductID: productID, Name: "small box", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}
	prices := map[priceKey]decimal.Decimal{
		{productID: productID, country: enums.CountryUK}: decimal.RequireFromString("10.00"),
	}
	fx := newServiceFixture(t, cart, prices)

	dto, err := fx.service.Create(context.Background(), "owner-1", CreateInput{
		ShippingAddress: ukAddress(),
		ShippingMethod:  "standard",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = fx.service.Get(context.Background(), "someone-else", dto.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
}

func TestPayAndFinalize(t *testing.T) {
	productID := uuid.New()
	cart := &models.Cart{
		OwnerID: "owner-1",
		Items: []models.CartItem{
			{ProductID: productID, Name: "medium box", Quantity: 2, UnitPrice: decimal.RequireFromString("25.00")},
		},
	}
	prices := map[priceKey]decimal.Decimal{
		{productID: productID, country: enums.CountryUK}: decimal.RequireFromString("25.00"),
	}
	fx := newServiceFixture(t, cart, prices)

	dto, err := fx.service.Create(context.Background(), "owner-1", CreateInput{
		ShippingAddress: ukAddress(),
		ShippingMethod:  "express",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("finalizeBeforePayIsRejected", func(t *testing.T) {
		_, err := fx.service.Finalize(context.Background(), "owner-1", dto.ID)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for unpaid checkout, got %v", err)
		}
	})

	chargeID := "ch_789"
	payInput := PayInput{
		PaymentIntentID: "pi_123",
		PaymentMethodID: "pm_456",
		ChargeID:        &chargeID,
		PaidAmount:      decimal.RequireFromString("92.49"),
		PaidCurrency:    "usd",
	}

	t.Run("payRecordsProcessorRefs", func(t *testing.T) {
		paid, err := fx.service.Pay(context.Background(), "owner-1", dto.ID, payInput)
		if err != nil {
			t.Fatalf("Pay failed: %v", err)
		}
		if paid.PaymentStatus != enums.PaymentStatusPaid {
			t.Fatalf("expected paid, got %q", paid.PaymentStatus)
		}
		if paid.PaymentIntentID == nil || *paid.PaymentIntentID != "pi_123" {
			t.Fatalf("expected pi_123, got %v", paid.PaymentIntentID)
		}
	})

	t.Run("secondPayIsRejected", func(t *testing.T) {
		_, err := fx.service.Pay(context.Background(), "owner-1", dto.ID, payInput)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for repeated pay, got %v", err)
		}
	})

	t.Run("finalizeCreatesOrderAndClearsCart", func(t *testing.T) {
		order, err := fx.service.Finalize(context.Background(), "owner-1", dto.ID)
		if err != nil {
			t.Fatalf("Finalize failed: %v", err)
		}
		if order.Status != enums.OrderStatusProcessing {
			t.Fatalf("expected processing order, got %q", order.Status)
		}
		if len(fx.orders.created) != 1 {
			t.Fatalf("expected exactly one order, got %d", len(fx.orders.created))
		}
		if len(fx.carts.cleared) != 1 || fx.carts.cleared[0] != "owner-1" {
			t.Fatalf("expected cart cleared for owner-1, got %v", fx.carts.cleared)
		}
	})

	t.Run("secondFinalizeIsRejected", func(t *testing.T) {
		_, err := fx.service.Finalize(context.Background(), "owner-1", dto.ID)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for repeated finalize, got %v", err)
		}
		if len(fx.orders.created) != 1 {
			t.Fatalf("expected no second order, got %d", len(fx.orders.created))
		}
	})
}
