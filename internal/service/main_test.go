package service_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/shopspring/decimal"
)

var moscow = time.FixedZone("MSK", 3*60*60)

// 2024-06-15 in Moscow while it is still 2024-06-14 in UTC.
var testNow = time.Date(2024, 6, 14, 22, 30, 0, 0, time.UTC)

func testClock() service.Clock {
	return service.Clock{
		Now:      func() time.Time { return testNow },
		Location: moscow,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newUser(name string) domain.User {
	return domain.User{ID: uuid.New(), Username: name, FirstName: name}
}

func product(id int64, price string, count int) domain.Product {
	return domain.Product{
		ID:    id,
		Title: "product",
		Price: decimal.RequireFromString(price),
		Count: count,
	}
}

func withSale(p domain.Product, salePrice string, from, to time.Time) domain.Product {
	p.Sale = &domain.Sale{
		ProductID: p.ID,
		SalePrice: decimal.RequireFromString(salePrice),
		DateFrom:  from,
		DateTo:    to,
	}
	return p
}
