package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/db"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/port"
	"golang.org/x/text/currency"
)

type productRepository struct {
	q *db.Queries
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{q: db.New(pool)}
}

func (r *productRepository) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Name == "" {
		return domain.Product{}, fmt.Errorf("name is empty")
	}
	if product.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("price is negative")
	}
	if product.Stock < 0 {
		return domain.Product{}, fmt.Errorf("stock is negative")
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	var categoryID uuid.NullUUID
	if product.CategoryID != nil {
		categoryID = uuid.NullUUID{UUID: *product.CategoryID, Valid: true}
	}

	dbProduct, err := r.q.CreateProduct(ctx, db.CreateProductParams{
		ID:            product.ID,
		Name:          product.Name,
		PriceAmount:   product.Price.Amount,
		PriceCurrency: product.Price.Currency.String(),
		Stock:         int32(product.Stock),
		CategoryID:    categoryID,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("q.CreateProduct: %w", err)
	}

	return mapProductToDomain(dbProduct)
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	dbProduct, err := r.q.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, notFound(err, "q.GetProduct[%s]", productID)
	}

	return mapProductToDomain(dbProduct)
}

func (r *productRepository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (int, error) {
	if quantity < 1 {
		return 0, fmt.Errorf("quantity is not positive")
	}

	stock, err := r.q.DecrementStock(ctx, db.DecrementStockParams{
		ID:       productID,
		Quantity: int32(quantity),
	})
	if err == nil {
		return int(stock), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("q.DecrementStock: %w", err)
	}

	exists, err := r.q.ProductExists(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("q.ProductExists: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("product[%s]: %w", productID, domain.ErrNotFound)
	}

	return 0, fmt.Errorf("product[%s]: %w", productID, domain.ErrInsufficientStock)
}

func mapProductToDomain(p db.Product) (domain.Product, error) {
	parsedCurrency, err := currency.ParseISO(p.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", p.PriceCurrency, err)
	}

	var categoryID *uuid.UUID
	if p.CategoryID.Valid {
		categoryID = &p.CategoryID.UUID
	}

	return domain.Product{
		ID:         p.ID,
		Name:       p.Name,
		Price:      domain.Money{Amount: p.PriceAmount, Currency: parsedCurrency},
		Stock:      int(p.Stock),
		CategoryID: categoryID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}, nil
}
