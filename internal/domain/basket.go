package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a single basket or order line may carry,
// the range of the quantity and stock columns.
const MaxQuantity = math.MaxInt32

type Basket struct {
	OwnerID uuid.UUID
	Items   []BasketItem
}

type BasketItem struct {
	Product  Product
	Quantity int
	// Price is the unit price resolved at the time the basket was read.
	Price decimal.Decimal

	AddedAt   time.Time
	UpdatedAt time.Time
}

func (b Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// BasketLine is the stored part of a basket item.
type BasketLine struct {
	ProductID int64
	Quantity  int
	AddedAt   time.Time
	UpdatedAt time.Time
}

func ValidateBasketChange(productID int64, count int) error {
	if productID <= 0 || count <= 0 || count > MaxQuantity {
		return NewValidationError("Invalid product ID or count")
	}
	return nil
}
