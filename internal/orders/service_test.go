package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/pagination"
	"github.com/boxport/boxport-backend/pkg/types"
)

type fakeOrderStore struct {
	rows map[uuid.UUID]*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{rows: map[uuid.UUID]*models.Order{}}
}

func (f *fakeOrderStore) WithTx(_ *gorm.DB) Store { return f }

func (f *fakeOrderStore) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	f.rows[order.ID] = order
	return order, nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) List(_ context.Context, _ pagination.Params, filters ListFilters) ([]models.Order, *string, error) {
	var out []models.Order
	for _, o := range f.rows {
		if filters.OwnerID != "" && o.OwnerID != filters.OwnerID {
			continue
		}
		if filters.Status != nil && o.Status != *filters.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) error {
	order, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (f *fakeOrderStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, id)
	return nil
}

func seedOrder(store *fakeOrderStore, ownerID string, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:         uuid.New(),
		CheckoutID: uuid.New(),
		OwnerID:    ownerID,
		Status:     status,
		TotalPrice: decimal.RequireFromString("92.49"),
		Currency:   enums.CurrencyUSD,
	}
	store.rows[order.ID] = order
	return order
}

func TestGetForOwnerHidesOtherOwners(t *testing.T) {
	store := newFakeOrderStore()
	order := seedOrder(store, "user-a", enums.OrderStatusProcessing)
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.GetForOwner(context.Background(), "user-a", order.ID); err != nil {
		t.Fatalf("GetForOwner owner: %v", err)
	}

	_, err = svc.GetForOwner(context.Background(), "user-b", order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := NewService(store)
	ctx := context.Background()

	t.Run("processingToShipped", func(t *testing.T) {
		order := seedOrder(store, "user-a", enums.OrderStatusProcessing)
		dto, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "shipped"})
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if dto.Status != enums.OrderStatusShipped {
			t.Errorf("status = %q, want shipped", dto.Status)
		}
	})

	t.Run("deliveredIsTerminal", func(t *testing.T) {
		order := seedOrder(store, "user-a", enums.OrderStatusDelivered)
		_, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "cancelled"})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict, got %v", err)
		}
	})

	t.Run("sameStatusIsNoop", func(t *testing.T) {
		order := seedOrder(store, "user-a", enums.OrderStatusShipped)
		dto, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "shipped"})
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if dto.Status != enums.OrderStatusShipped {
			t.Errorf("status = %q, want shipped", dto.Status)
		}
	})

	t.Run("unknownStatus", func(t *testing.T) {
		order := seedOrder(store, "user-a", enums.OrderStatusProcessing)
		_, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "teleported"})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestBuildFromCheckoutCopiesSnapshot(t *testing.T) {
	productID := uuid.New()
	chargeID := "ch_789"
	checkout := &models.Checkout{
		ID:      uuid.New(),
		OwnerID: "user-a",
		Items: types.LineItems{
			{ProductID: productID, Name: "Large Box", Quantity: 2, UnitPrice: decimal.RequireFromString("25.00")},
		},
		ShippingAddress: types.Address{FullName: "Pat Mover", Line1: "1 Dock Rd", City: "Halifax", PostalCode: "B3H 1A1", Country: "canada", Email: "pat@example.com"},
		Destination:     enums.CountryCanada,
		ShippingMethod:  enums.ShippingMethodExpress,
		TotalPrice:      decimal.RequireFromString("92.49"),
		Currency:        enums.CurrencyUSD,
		ChargeID:        &chargeID,
	}

	order := BuildFromCheckout(checkout)

	if order.CheckoutID != checkout.ID {
		t.Errorf("checkout id not carried over")
	}
	if order.Status != enums.OrderStatusProcessing {
		t.Errorf("status = %q, want processing", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != productID || order.Items[0].Quantity != 2 {
		t.Fatalf("items not copied: %+v", order.Items)
	}
	if !order.TotalPrice.Equal(checkout.TotalPrice) {
		t.Errorf("total mismatch")
	}
	if order.ChargeID == nil || *order.ChargeID != chargeID {
		t.Errorf("charge id not carried over")
	}
}
