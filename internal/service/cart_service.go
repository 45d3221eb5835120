package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/port"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

type CartService struct {
	store    port.Store
	currency currency.Unit
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewCartService(store port.Store, unit currency.Unit, logger *zap.Logger, m *metrics.Metrics) *CartService {
	return &CartService{
		store:    store,
		currency: unit,
		logger:   logger.With(zap.String("component", "cart_service")),
		metrics:  m,
	}
}

// Provision creates the owner's cart if it does not exist yet.
func (s *CartService) Provision(ctx context.Context, ownerID string) (_ domain.Cart, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "cart.provision", attribute.String("owner_id", ownerID))
	defer func() { uc.end(err) }()

	cart, err := s.store.Carts().CreateCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.CreateCart: %w", err)
	}

	return cart, nil
}

// AddItem adds quantity units of a product, merging with an existing line.
// Concurrent adds to the same cart serialize on the cart row lock.
func (s *CartService) AddItem(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (_ domain.CartItem, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "cart.add_item",
		attribute.String("owner_id", ownerID),
		attribute.String("product_id", productID.String()),
		attribute.Int("quantity", quantity),
	)
	defer func() { uc.end(err) }()

	var item domain.CartItem

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		cart, err := tx.Carts().LockCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.LockCart: %w", err)
		}

		product, err := tx.Products().GetProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("products.GetProduct: %w", err)
		}

		var existing int
		current, err := tx.Carts().GetItem(ctx, cart.ID, productID)
		switch {
		case err == nil:
			existing = current.Quantity
		case errors.Is(err, domain.ErrNotFound):
		default:
			return fmt.Errorf("carts.GetItem: %w", err)
		}

		merged, err := domain.MergeQuantity(existing, quantity, product.Stock)
		if err != nil {
			return err
		}

		item, err = tx.Carts().UpsertItem(ctx, cart.ID, productID, merged)
		if err != nil {
			return fmt.Errorf("carts.UpsertItem: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	return item, nil
}

// SetItemQuantity overwrites the quantity of an existing line, validated
// against the current stock.
func (s *CartService) SetItemQuantity(ctx context.Context, ownerID string, productID uuid.UUID, quantity int) (_ domain.CartItem, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "cart.set_item_quantity",
		attribute.String("owner_id", ownerID),
		attribute.String("product_id", productID.String()),
		attribute.Int("quantity", quantity),
	)
	defer func() { uc.end(err) }()

	var item domain.CartItem

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx port.Repositories) error {
		cart, err := tx.Carts().LockCart(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("carts.LockCart: %w", err)
		}

		if _, err := tx.Carts().GetItem(ctx, cart.ID, productID); err != nil {
			return fmt.Errorf("carts.GetItem: %w", err)
		}

		product, err := tx.Products().GetProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("products.GetProduct: %w", err)
		}

		if err := domain.ValidateQuantity(quantity, product.Stock); err != nil {
			return err
		}

		item, err = tx.Carts().UpsertItem(ctx, cart.ID, productID, quantity)
		if err != nil {
			return fmt.Errorf("carts.UpsertItem: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID) (err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "cart.remove_item",
		attribute.String("owner_id", ownerID),
		attribute.String("product_id", productID.String()),
	)
	defer func() { uc.end(err) }()

	cart, err := s.store.Carts().GetCart(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("carts.GetCart: %w", err)
	}

	deleted, err := s.store.Carts().DeleteItem(ctx, cart.ID, productID)
	if err != nil {
		return fmt.Errorf("carts.DeleteItem: %w", err)
	}
	if !deleted {
		return fmt.Errorf("cart item[%s]: %w", productID, domain.ErrNotFound)
	}

	return nil
}

// ListItems prices the cart against live product prices. An empty cart
// lists with a zero total, a missing cart is domain.ErrNotFound.
func (s *CartService) ListItems(ctx context.Context, ownerID string) (_ domain.CartListing, err error) {
	ctx, uc := startUsecase(ctx, s.logger, s.metrics, "cart.list_items", attribute.String("owner_id", ownerID))
	defer func() { uc.end(err) }()

	cart, err := s.store.Carts().GetCart(ctx, ownerID)
	if err != nil {
		return domain.CartListing{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	lines, err := s.store.Carts().ListLines(ctx, cart.ID)
	if err != nil {
		return domain.CartListing{}, fmt.Errorf("carts.ListLines: %w", err)
	}

	listing, err := domain.NewCartListing(ownerID, lines, s.currency)
	if err != nil {
		return domain.CartListing{}, fmt.Errorf("domain.NewCartListing: %w", err)
	}

	return listing, nil
}
