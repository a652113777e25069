package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	log "github.com/sirupsen/logrus"
)

type CatalogService struct {
	catalog  port.CatalogRepository
	clock    Clock
	validate *validator.Validate
}

func NewCatalog(catalog port.CatalogRepository, clock Clock) (*CatalogService, error) {
	if catalog == nil {
		return nil, errors.New("catalog repository is nil")
	}

	return &CatalogService{
		catalog:  catalog,
		clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Today is the day listings resolve sale prices against.
func (s *CatalogService) Today() time.Time {
	return s.clock.Today()
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog.Categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) Catalog(ctx context.Context, filter domain.CatalogFilter) (domain.Page[domain.Product], error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return domain.Page[domain.Product]{}, err
	}

	page, err := s.catalog.SearchProducts(ctx, filter)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("catalog.SearchProducts: %w", err)
	}
	return page, nil
}

func (s *CatalogService) Popular(ctx context.Context) ([]domain.Product, error) {
	products, err := s.catalog.PopularProducts(ctx, domain.PopularLimit)
	if err != nil {
		return nil, fmt.Errorf("catalog.PopularProducts: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Limited(ctx context.Context) ([]domain.Product, error) {
	products, err := s.catalog.LimitedProducts(ctx, domain.LimitedThreshold)
	if err != nil {
		return nil, fmt.Errorf("catalog.LimitedProducts: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Sales(ctx context.Context, page int) (domain.Page[domain.SaleOffer], error) {
	if page < 1 {
		page = 1
	}
	if err := domain.ValidatePage(page); err != nil {
		return domain.Page[domain.SaleOffer]{}, err
	}

	sales, err := s.catalog.ActiveSales(ctx, s.clock.Today(), page, domain.SalesPageSize)
	if err != nil {
		return domain.Page[domain.SaleOffer]{}, fmt.Errorf("catalog.ActiveSales: %w", err)
	}
	return sales, nil
}

func (s *CatalogService) Banners(ctx context.Context) ([]domain.Banner, error) {
	banners, err := s.catalog.Banners(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog.Banners: %w", err)
	}
	return banners, nil
}

func (s *CatalogService) Tags(ctx context.Context, categoryID *int64) ([]domain.Tag, error) {
	tags, err := s.catalog.Tags(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("catalog.Tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) Product(ctx context.Context, productID int64) (domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}
	return product, nil
}

func (s *CatalogService) Reviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	reviews, err := s.catalog.Reviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("catalog.Reviews: %w", err)
	}
	return reviews, nil
}

// AddReview stores the review and returns all reviews of the product, oldest first.
func (s *CatalogService) AddReview(ctx context.Context, review domain.Review) ([]domain.Review, error) {
	review.Author = strings.TrimSpace(review.Author)
	review.Email = strings.TrimSpace(review.Email)
	review.Text = strings.TrimSpace(review.Text)

	if err := s.validate.Struct(review); err != nil {
		return nil, fieldErrors(err, "All fields are required")
	}

	if err := s.catalog.InsertReview(ctx, review); err != nil {
		return nil, fmt.Errorf("catalog.InsertReview: %w", err)
	}

	log.WithFields(log.Fields{"product_id": review.ProductID, "rate": review.Rate}).Info("review added")

	return s.Reviews(ctx, review.ProductID)
}

func (s *CatalogService) SaveProduct(ctx context.Context, product domain.Product) (int64, error) {
	id, err := s.catalog.InsertProduct(ctx, product)
	if err != nil {
		return 0, fmt.Errorf("catalog.InsertProduct: %w", err)
	}
	return id, nil
}

// PutSale creates or replaces the sale of a product after checking its window against today.
func (s *CatalogService) PutSale(ctx context.Context, sale domain.Sale) error {
	if err := sale.Validate(s.clock.Today()); err != nil {
		return err
	}

	if err := s.catalog.UpsertSale(ctx, sale); err != nil {
		return fmt.Errorf("catalog.UpsertSale: %w", err)
	}
	return nil
}

func (s *CatalogService) AddCategory(ctx context.Context, category domain.Category) (int64, error) {
	if strings.TrimSpace(category.Name) == "" {
		return 0, domain.NewFieldError("title", "Title is required.")
	}

	id, err := s.catalog.InsertCategory(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("catalog.InsertCategory: %w", err)
	}
	return id, nil
}

func (s *CatalogService) AddBanner(ctx context.Context, banner domain.Banner) (int64, error) {
	if banner.Product.ID <= 0 {
		return 0, domain.NewFieldError("product", "Product is required.")
	}
	id, err := s.catalog.InsertBanner(ctx, banner)
	if err != nil {
		return 0, fmt.Errorf("catalog.InsertBanner: %w", err)
	}
	return id, nil
}
