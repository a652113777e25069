package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              int64
	CategoryID      *int64
	Title           string
	Description     string
	FullDescription string
	Price           decimal.Decimal
	Count           int
	FreeDelivery    bool
	DateAdded       time.Time

	Sale   *Sale
	Images []Image
	Tags   []Tag

	ReviewsCount int
	Rating       float64
}

type Image struct {
	Src string
	Alt string
}

// PriceAt resolves the price the product sells for on the given day:
// the sale price while a sale is active, the list price otherwise.
func (p Product) PriceAt(today time.Time) decimal.Decimal {
	if p.Sale != nil && p.Sale.ActiveAt(today) {
		return p.Sale.SalePrice
	}
	return p.Price
}

// ActiveSalePrice returns the sale price only when a sale is active on the given day.
func (p Product) ActiveSalePrice(today time.Time) *decimal.Decimal {
	if p.Sale != nil && p.Sale.ActiveAt(today) {
		price := p.Sale.SalePrice
		return &price
	}
	return nil
}

func (p Product) Validate() error {
	vErr := &ValidationError{}

	if strings.TrimSpace(p.Title) == "" {
		vErr.Add("title", "Title is required.")
	}
	if p.Price.IsNegative() {
		vErr.Add("price", "Price cannot be less than zero.")
	}
	if p.Count < 0 {
		vErr.Add("count", "Count cannot be less than zero.")
	}
	if p.Count > MaxQuantity {
		vErr.Add("count", "Count is too large.")
	}

	return vErr.OrNil()
}
