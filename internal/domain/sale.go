package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const maxSaleHorizonDays = 365

type Sale struct {
	ProductID int64
	SalePrice decimal.Decimal
	DateFrom  time.Time
	DateTo    time.Time
}

// ActiveAt reports whether today falls in [DateFrom, DateTo], both ends inclusive.
func (s Sale) ActiveAt(today time.Time) bool {
	day := DateOf(today)
	return !day.Before(DateOf(s.DateFrom)) && !day.After(DateOf(s.DateTo))
}

// Validate checks the sale against the rules that apply when it is created on the given day.
func (s Sale) Validate(today time.Time) error {
	day := DateOf(today)
	from := DateOf(s.DateFrom)
	to := DateOf(s.DateTo)

	if !s.SalePrice.IsPositive() {
		return NewFieldError("sale_price", "Sale price must be greater than zero.")
	}
	if from.Before(day) {
		return NewFieldError("date_from", "Start date cannot be in the past.")
	}
	if to.Before(day) {
		return NewFieldError("date_to", "End date cannot be in the past.")
	}
	if to.After(day.AddDate(0, 0, maxSaleHorizonDays)) {
		return NewFieldError("date_to", "End date cannot be more than one year from today.")
	}
	if to.Before(from) {
		return NewFieldError("date_to", "End date cannot be earlier than start date.")
	}

	return nil
}

// SaleOffer is an active sale joined with its product, as listed on the sales page.
type SaleOffer struct {
	Sale
	Title  string
	Price  decimal.Decimal
	Images []Image
}
