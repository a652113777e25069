package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	CreatedAt    time.Time
}

type Profile struct {
	UserID     uuid.UUID
	FullName   string
	Email      *string
	Phone      *string
	AvatarPath *string
	UpdatedAt  time.Time
}

type Category struct {
	ID       int64
	Name     string
	ParentID *int64
	ImageSrc *string
}

// ProductRow is a product joined with its sale and review aggregates.
type ProductRow struct {
	ID              int64
	CategoryID      *int64
	Title           string
	Description     string
	FullDescription string
	Price           decimal.Decimal
	Count           int32
	FreeDelivery    bool
	DateAdded       time.Time
	SalePrice       decimal.NullDecimal
	SaleDateFrom    *time.Time
	SaleDateTo      *time.Time
	ReviewsCount    int32
	Rating          float64
}

type ProductImage struct {
	ID        int64
	ProductID int64
	Src       string
	AltText   string
}

type ProductTag struct {
	ProductID int64
	TagID     int64
	Name      string
}

type Tag struct {
	ID   int64
	Name string
}

type Review struct {
	ID        int64
	ProductID int64
	Author    string
	Email     string
	Text      string
	Rate      int16
	CreatedAt time.Time
}

type Sale struct {
	ProductID int64
	SalePrice decimal.Decimal
	DateFrom  time.Time
	DateTo    time.Time
}

type SaleOfferRow struct {
	ProductID int64
	SalePrice decimal.Decimal
	DateFrom  time.Time
	DateTo    time.Time
	Title     string
	Price     decimal.Decimal
}

type Banner struct {
	ID          int64
	ProductID   int64
	Title       string
	Description string
	ImageSrc    string
	DateAdded   time.Time
}

type BasketItem struct {
	UserID    uuid.UUID
	ProductID int64
	Quantity  int32
	AddedAt   time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID           int64
	UserID       uuid.UUID
	FullName     string
	Email        string
	Phone        *string
	DeliveryType string
	PaymentType  string
	City         string
	Address      string
	TotalCost    decimal.Decimal
	Currency     string
	Status       string
	PaymentID    *string
	PaymentError *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrderItem struct {
	OrderID   int64
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}
