package port

import (
	"context"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
)

type CatalogRepository interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	GetProducts(ctx context.Context, productIDs []int64) ([]domain.Product, error)

	SearchProducts(ctx context.Context, filter domain.CatalogFilter) (domain.Page[domain.Product], error)
	PopularProducts(ctx context.Context, limit int) ([]domain.Product, error)
	LimitedProducts(ctx context.Context, threshold int) ([]domain.Product, error)
	ActiveSales(ctx context.Context, today time.Time, page, pageSize int) (domain.Page[domain.SaleOffer], error)

	Categories(ctx context.Context) ([]domain.Category, error)
	Tags(ctx context.Context, categoryID *int64) ([]domain.Tag, error)
	Banners(ctx context.Context) ([]domain.Banner, error)

	Reviews(ctx context.Context, productID int64) ([]domain.Review, error)
	InsertReview(ctx context.Context, review domain.Review) error

	InsertProduct(ctx context.Context, product domain.Product) (int64, error)
	UpsertSale(ctx context.Context, sale domain.Sale) error
	InsertCategory(ctx context.Context, category domain.Category) (int64, error)
	InsertBanner(ctx context.Context, banner domain.Banner) (int64, error)

	DecrementStock(ctx context.Context, productID int64, quantity int) error
}
