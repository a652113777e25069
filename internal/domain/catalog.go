package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID            int64
	Name          string
	ParentID      *int64
	ImageSrc      *string
	Subcategories []Category
}

type Tag struct {
	ID   int64
	Name string
}

type Review struct {
	ProductID int64
	Author    string `validate:"required,max=100"`
	Email     string `validate:"required,email"`
	Text      string `validate:"required"`
	Rate      int    `validate:"required,min=1,max=5"`
	Date      time.Time
}

type Banner struct {
	ID          int64
	Product     Product
	Title       string
	Description string
	ImageSrc    string
	DateAdded   time.Time
}

type CatalogSort string

const (
	CatalogSortDate    CatalogSort = "date"
	CatalogSortPrice   CatalogSort = "price"
	CatalogSortRating  CatalogSort = "rating"
	CatalogSortReviews CatalogSort = "reviews"
)

const (
	DefaultCatalogLimit = 20
	MaxCatalogLimit     = 100
	SalesPageSize       = 10
	PopularLimit        = 10
	LimitedThreshold    = 10
	// MaxPage keeps (page-1)*MaxCatalogLimit within the SQL offset range.
	MaxPage = 1_000_000
)

// ValidatePage rejects pages whose offset cannot be queried.
func ValidatePage(page int) error {
	if page > MaxPage {
		return NewValidationError("Invalid currentPage")
	}
	return nil
}

// CatalogFilter has AND semantics across fields, OR semantics within TagIDs.
type CatalogFilter struct {
	Name         string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	FreeDelivery *bool
	Available    bool
	CategoryID   *int64
	TagIDs       []int64

	Sort CatalogSort
	Desc bool

	Page  int
	Limit int
}

// Normalize fills defaults for paging and sorting, unknown sort keys fall back to date.
func (f CatalogFilter) Normalize() CatalogFilter {
	switch f.Sort {
	case CatalogSortDate, CatalogSortPrice, CatalogSortRating, CatalogSortReviews:
	default:
		f.Sort = CatalogSortDate
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultCatalogLimit
	}
	if f.Limit > MaxCatalogLimit {
		f.Limit = MaxCatalogLimit
	}
	return f
}

func (f CatalogFilter) Validate() error {
	if err := ValidatePage(f.Page); err != nil {
		return err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MaxPrice.LessThan(*f.MinPrice) {
		return NewValidationError("maxPrice is less than minPrice")
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return NewValidationError("minPrice is negative")
	}
	return nil
}

func (f CatalogFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Page[T any] struct {
	Items       []T
	CurrentPage int
	LastPage    int
}

// LastPage is the number of pages needed for total items, never less than 1.
func LastPage(total, pageSize int) int {
	if pageSize <= 0 {
		panic(fmt.Sprintf("invalid page size %d", pageSize))
	}
	if total == 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
