package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

type Cart struct {
	ID      uuid.UUID
	OwnerID string
	Items   []CartItem

	CreatedAt time.Time
}

type CartItem struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is a cart item joined with the live product it points to.
type CartLine struct {
	Item        CartItem
	ProductName string
	UnitPrice   Money
	FinalPrice  Money
}

type CartListing struct {
	OwnerID string
	Lines   []CartLine
	Total   Money
}

// MergeQuantity returns the quantity a cart item holds after adding requested
// units on top of existing ones. The merged total may not exceed stock.
func MergeQuantity(existing, requested, stock int) (int, error) {
	if requested < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuantity, requested)
	}

	// compared before adding so a huge request cannot wrap around
	if requested > stock-existing {
		return 0, fmt.Errorf("%w: requested %d on top of %d, available %d", ErrInsufficientStock, requested, existing, stock)
	}

	return existing + requested, nil
}

// ValidateQuantity checks an absolute quantity against the current stock.
func ValidateQuantity(quantity, stock int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	if quantity > stock {
		return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, stock)
	}

	return nil
}

// NewCartListing prices every line and sums the total. An empty cart lists
// with a zero total in the given currency.
func NewCartListing(ownerID string, lines []CartLine, unit currency.Unit) (CartListing, error) {
	total := ZeroMoney(unit)
	priced := make([]CartLine, 0, len(lines))

	for i, line := range lines {
		if i == 0 {
			total = ZeroMoney(line.UnitPrice.Currency)
		}

		line.FinalPrice = line.UnitPrice.Times(line.Item.Quantity)

		var err error
		total, err = total.Add(line.FinalPrice)
		if err != nil {
			return CartListing{}, fmt.Errorf("product[%s]: %w", line.Item.ProductID, err)
		}

		priced = append(priced, line)
	}

	return CartListing{
		OwnerID: ownerID,
		Lines:   priced,
		Total:   total,
	}, nil
}
