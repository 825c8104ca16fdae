package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	"github.com/boxport/boxport-backend/pkg/types"
)

func newCheckoutDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// The production schema defaults id to gen_random_uuid(), which sqlite
	// does not have. Tests create the table by hand and set ids explicitly.
	ddl := `CREATE TABLE checkouts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		items TEXT NOT NULL,
		shipping_address TEXT NOT NULL,
		destination TEXT NOT NULL,
		shipping_method TEXT NOT NULL,
		subtotal NUMERIC NOT NULL,
		shipping_cost NUMERIC NOT NULL,
		processing_fee NUMERIC NOT NULL,
		total_price NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_intent_id TEXT,
		payment_method_id TEXT,
		charge_id TEXT,
		paid_amount NUMERIC,
		paid_currency TEXT,
		contact_email TEXT,
		paid_at DATETIME,
		is_finalized BOOLEAN NOT NULL DEFAULT FALSE,
		order_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`
	if err := conn.Exec(ddl).Error; err != nil {
		t.Fatalf("failed to create checkouts table: %v", err)
	}
	return conn
}

func seedCheckout(t *testing.T, repo *Repository, ownerID string) *models.Checkout {
	t.Helper()
	checkout := &models.Checkout{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Items: types.LineItems{
			{ProductID: uuid.New(), Name: "medium box", Quantity: 2, UnitPrice: decimal.RequireFromString("25.00")},
		},
		ShippingAddress: types.Address{
			FullName:   "Dana Reeves",
			Line1:      "12 Harbour Way",
			City:       "Bristol",
			PostalCode: "BS1 4DJ",
			Country:    "uk",
			Email:      "dana@example.com",
		},
		Destination:    enums.CountryUK,
		ShippingMethod: enums.ShippingMethodExpress,
		Subtotal:       decimal.RequireFromString("50.00"),
		ShippingCost:   decimal.RequireFromString("29.99"),
		ProcessingFee:  decimal.RequireFromString("12.50"),
		TotalPrice:     decimal.RequireFromString("92.49"),
		Currency:       enums.CurrencyUSD,
		PaymentStatus:  enums.PaymentStatusUnpaid,
	}
	created, err := repo.Create(context.Background(), checkout)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return created
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(newCheckoutDB(t))
	created := seedCheckout(t, repo, "owner-1")

	found, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.OwnerID != "owner-1" {
		t.Fatalf("expected owner-1, got %q", found.OwnerID)
	}
	if !found.TotalPrice.Equal(decimal.RequireFromString("92.49")) {
		t.Fatalf("expected total 92.49, got %s", found.TotalPrice)
	}
	if len(found.Items) != 1 || found.Items[0].Name != "medium box" {
		t.Fatalf("expected snapshot items to round-trip, got %+v", found.Items)
	}
	if found.IsFinalized {
		t.Fatal("new checkout must not be finalized")
	}
}

func TestRepositoryRecordPayment(t *testing.T) {
	repo := NewRepository(newCheckoutDB(t))
	created := seedCheckout(t, repo, "owner-2")

	updates := map[string]any{
		"payment_status":    enums.PaymentStatusPaid,
		"payment_intent_id": "pi_123",
		"payment_method_id": "pm_456",
	}
	if err := repo.RecordPayment(context.Background(), created.ID, updates); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	found, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %q", found.PaymentStatus)
	}
	if found.PaymentIntentID == nil || *found.PaymentIntentID != "pi_123" {
		t.Fatalf("expected payment intent pi_123, got %v", found.PaymentIntentID)
	}

	err = repo.RecordPayment(context.Background(), uuid.New(), updates)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for unknown checkout, got %v", err)
	}
}

func TestRepositoryMarkFinalizedAtMostOnce(t *testing.T) {
	repo := NewRepository(newCheckoutDB(t))
	created := seedCheckout(t, repo, "owner-3")

	firstOrder := uuid.New()
	if err := repo.MarkFinalized(context.Background(), created.ID, firstOrder); err != nil {
		t.Fatalf("first MarkFinalized failed: %v", err)
	}

	err := repo.MarkFinalized(context.Background(), created.ID, uuid.New())
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized on replay, got %v", err)
	}

	found, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !found.IsFinalized {
		t.Fatal("expected checkout to be finalized")
	}
	if found.OrderID == nil || *found.OrderID != firstOrder {
		t.Fatalf("expected the first order id to stick, got %v", found.OrderID)
	}
}
