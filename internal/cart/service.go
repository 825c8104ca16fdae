package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/boxport/boxport-backend/pkg/db/models"
	"github.com/boxport/boxport-backend/pkg/enums"
	pkgerrors "github.com/boxport/boxport-backend/pkg/errors"
)

// Store is the persistence surface the cart service depends on.
type Store interface {
	WithTx(tx *gorm.DB) Store
	FindByOwner(ctx context.Context, ownerID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	UpsertItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	UpdateTotal(ctx context.Context, cartID uuid.UUID, total decimal.Decimal) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productReader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type priceResolver interface {
	PriceFor(ctx context.Context, productID uuid.UUID, country enums.Country) (decimal.Decimal, error)
}

// Service mutates owner carts. Every write recomputes the cached total from
// the surviving lines inside one transaction.
type Service struct {
	store    Store
	tx       txRunner
	products productReader
	prices   priceResolver
}

// NewService builds a cart service with the required dependencies.
func NewService(store Store, tx txRunner, products productReader, prices priceResolver) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &Service{store: store, tx: tx, products: products, prices: prices}, nil
}

// Fetch returns the owner's cart. An owner without a persisted cart gets the
// empty cart, not an error.
func (s *Service) Fetch(ctx context.Context, ownerID string) (*CartDTO, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	cart, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return EmptyCart(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return FromModel(cart), nil
}

// FetchModel returns the raw persisted cart for checkout snapshotting.
func (s *Service) FetchModel(ctx context.Context, ownerID string) (*models.Cart, error) {
	cart, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

// AddItem puts a product line in the owner's cart, pricing it for the given
// destination at add time. Adding an existing product overwrites the line.
func (s *Service) AddItem(ctx context.Context, ownerID string, input AddItemInput) (*CartDTO, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	country, err := enums.ParseCountry(input.Country)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	unitPrice, err := s.prices.PriceFor(ctx, product.ID, country)
	if err != nil {
		return nil, err
	}

	var result *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		cart, err := store.FindByOwner(ctx, ownerID)
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			cart, err = store.Create(ctx, &models.Cart{OwnerID: ownerID, TotalPrice: decimal.Zero})
			if err != nil {
				return err
			}
		}

		if err := store.UpsertItem(ctx, &models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  input.Quantity,
			UnitPrice: unitPrice,
		}); err != nil {
			return err
		}

		result, err = s.refreshTotal(ctx, store, ownerID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return FromModel(result), nil
}

// UpdateItem sets the absolute quantity of an existing line. Quantity zero
// removes the line.
func (s *Service) UpdateItem(ctx context.Context, ownerID string, productID uuid.UUID, input UpdateItemInput) (*CartDTO, error) {
	if ownerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		cart, err := store.FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		line := findLine(cart, productID)
		if line == nil {
			return gorm.ErrRecordNotFound
		}

		if input.Quantity == 0 {
			if err := store.DeleteItem(ctx, cart.ID, productID); err != nil {
				return err
			}
		} else {
			line.Quantity = input.Quantity
			if err := store.UpsertItem(ctx, line); err != nil {
				return err
			}
		}

		result, err = s.refreshTotal(ctx, store, ownerID)
		return err
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return FromModel(result), nil
}

// RemoveItem deletes one line from the owner's cart.
func (s *Service) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (*CartDTO, error) {
	return s.UpdateItem(ctx, ownerID, productID, UpdateItemInput{Quantity: 0})
}

// Clear drops the owner's cart entirely.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if err := s.store.DeleteByOwner(ctx, ownerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *Service) refreshTotal(ctx context.Context, store Store, ownerID string) (*models.Cart, error) {
	cart, err := store.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if err := store.UpdateTotal(ctx, cart.ID, total); err != nil {
		return nil, err
	}
	cart.TotalPrice = total
	return cart, nil
}

func findLine(cart *models.Cart, productID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}
