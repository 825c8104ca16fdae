package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
	"github.com/boxport/boxport-backend/pkg/pagination"
)

// Service exposes order reads for customers and lifecycle writes for the
// back office. Orders are only ever created by checkout finalization.
type Service struct {
	store Store
}

// NewService builds an order service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	return &Service{store: store}, nil
}

// ListForOwner returns the owner's orders, newest first.
func (s *Service) ListForOwner(ctx context.Context, ownerID string, params pagination.Params) (*OrderList, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner required")
	}
	return s.list(ctx, params, ListFilters{OwnerID: ownerID})
}

// GetForOwner loads one order and enforces ownership.
func (s *Service) GetForOwner(ctx context.Context, ownerID string, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

// ListAll returns one admin page of orders with optional filters.
func (s *Service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return s.list(ctx, params, filters)
}

// Get loads one order for the back office.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return FromModel(order), nil
}

// UpdateStatus advances the order's lifecycle. Illegal moves, like shipping
// a cancelled order, are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.Status == next {
		return FromModel(order), nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.store.UpdateStatus(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = next
	return FromModel(order), nil
}

// Delete removes an order record entirely. Back-office only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *Service) list(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	orders, next, err := s.store.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *FromModel(&orders[i]))
	}
	return &OrderList{Orders: out, NextCursor: next}, nil
}
