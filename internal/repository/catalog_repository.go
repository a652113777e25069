package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type catalogRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewCatalog(pool *pgxpool.Pool) port.CatalogRepository {
	return &catalogRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewCatalogWithTx(tx pgx.Tx) port.CatalogRepository {
	return &catalogRepository{
		q:    db.New(tx),
		dbtx: tx,
	}
}

func (r *catalogRepository) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var p domain.Product

	row, err := r.q.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("q.GetProduct: %w", domain.ErrProductNotFound)
		}
		return p, fmt.Errorf("q.GetProduct: %w", err)
	}

	products, err := r.assembleProducts(ctx, []db.ProductRow{row})
	if err != nil {
		return p, fmt.Errorf("r.assembleProducts: %w", err)
	}

	return products[0], nil
}

// GetProducts returns the found products ordered by ID, missing IDs are skipped.
func (r *catalogRepository) GetProducts(ctx context.Context, productIDs []int64) ([]domain.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	rows, err := r.q.ListProductsByIDs(ctx, lo.Uniq(productIDs))
	if err != nil {
		return nil, fmt.Errorf("q.ListProductsByIDs: %w", err)
	}

	products, err := r.assembleProducts(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("r.assembleProducts: %w", err)
	}

	return products, nil
}

func mapCatalogFilterToDB(filter domain.CatalogFilter) db.ProductFilterParams {
	params := db.ProductFilterParams{
		FreeDelivery: filter.FreeDelivery,
		Available:    filter.Available,
		CategoryID:   filter.CategoryID,
		TagIDs:       nilSliceIfEmpty(filter.TagIDs),
	}

	if name := strings.TrimSpace(filter.Name); name != "" {
		params.Name = &name
	}
	if filter.MinPrice != nil {
		params.MinPrice = decimal.NewNullDecimal(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		params.MaxPrice = decimal.NewNullDecimal(*filter.MaxPrice)
	}

	return params
}

func (r *catalogRepository) SearchProducts(ctx context.Context, filter domain.CatalogFilter) (domain.Page[domain.Product], error) {
	var page domain.Page[domain.Product]

	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return page, fmt.Errorf("filter.Validate: %w", err)
	}

	dbFilter := mapCatalogFilterToDB(filter)

	total, err := r.q.CountProducts(ctx, dbFilter)
	if err != nil {
		return page, fmt.Errorf("q.CountProducts: %w", err)
	}

	rows, err := r.q.SearchProducts(ctx, db.SearchProductsParams{
		ProductFilterParams: dbFilter,
		Sort:                string(filter.Sort),
		Desc:                filter.Desc,
		Limit:               int32(filter.Limit),
		Offset:              int32(filter.Offset()),
	})
	if err != nil {
		return page, fmt.Errorf("q.SearchProducts: %w", err)
	}

	products, err := r.assembleProducts(ctx, rows)
	if err != nil {
		return page, fmt.Errorf("r.assembleProducts: %w", err)
	}

	return domain.Page[domain.Product]{
		Items:       products,
		CurrentPage: filter.Page,
		LastPage:    domain.LastPage(int(total), filter.Limit),
	}, nil
}

func (r *catalogRepository) PopularProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	rows, err := r.q.ListPopularProducts(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("q.ListPopularProducts: %w", err)
	}

	products, err := r.assembleProducts(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("r.assembleProducts: %w", err)
	}

	return products, nil
}

func (r *catalogRepository) LimitedProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	rows, err := r.q.ListLimitedProducts(ctx, int32(threshold))
	if err != nil {
		return nil, fmt.Errorf("q.ListLimitedProducts: %w", err)
	}

	products, err := r.assembleProducts(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("r.assembleProducts: %w", err)
	}

	return products, nil
}

func (r *catalogRepository) ActiveSales(ctx context.Context, today time.Time, page, pageSize int) (domain.Page[domain.SaleOffer], error) {
	var result domain.Page[domain.SaleOffer]

	if page < 1 {
		page = 1
	}
	if err := domain.ValidatePage(page); err != nil {
		return result, err
	}
	if pageSize < 1 || pageSize > domain.MaxCatalogLimit {
		return result, fmt.Errorf("pageSize is out of range: %d", pageSize)
	}

	day := domain.DateOf(today)

	total, err := r.q.CountActiveSales(ctx, day)
	if err != nil {
		return result, fmt.Errorf("q.CountActiveSales: %w", err)
	}

	rows, err := r.q.ListActiveSales(ctx, day, int32(pageSize), int32((page-1)*pageSize))
	if err != nil {
		return result, fmt.Errorf("q.ListActiveSales: %w", err)
	}

	productIDs := lo.Map(rows, func(row db.SaleOfferRow, _ int) int64 { return row.ProductID })

	images, err := r.imagesByProduct(ctx, productIDs)
	if err != nil {
		return result, fmt.Errorf("r.imagesByProduct: %w", err)
	}

	offers := lo.Map(rows, func(row db.SaleOfferRow, _ int) domain.SaleOffer {
		return domain.SaleOffer{
			Sale: domain.Sale{
				ProductID: row.ProductID,
				SalePrice: row.SalePrice,
				DateFrom:  row.DateFrom,
				DateTo:    row.DateTo,
			},
			Title:  row.Title,
			Price:  row.Price,
			Images: images[row.ProductID],
		}
	})

	return domain.Page[domain.SaleOffer]{
		Items:       nilSliceIfEmpty(offers),
		CurrentPage: page,
		LastPage:    domain.LastPage(int(total), pageSize),
	}, nil
}

// Categories returns root categories with their direct subcategories nested.
func (r *catalogRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.q.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListCategories: %w", err)
	}

	children := make(map[int64][]domain.Category)
	var roots []domain.Category

	for _, row := range rows {
		c := domain.Category{
			ID:       row.ID,
			Name:     row.Name,
			ParentID: row.ParentID,
			ImageSrc: row.ImageSrc,
		}
		if row.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*row.ParentID] = append(children[*row.ParentID], c)
	}

	for i := range roots {
		roots[i].Subcategories = children[roots[i].ID]
	}

	return roots, nil
}

func (r *catalogRepository) Tags(ctx context.Context, categoryID *int64) ([]domain.Tag, error) {
	rows, err := r.q.ListTags(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("q.ListTags: %w", err)
	}

	return nilSliceIfEmpty(lo.Map(rows, func(t db.Tag, _ int) domain.Tag {
		return domain.Tag{ID: t.ID, Name: t.Name}
	})), nil
}

func (r *catalogRepository) Banners(ctx context.Context) ([]domain.Banner, error) {
	rows, err := r.q.ListBanners(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListBanners: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	productIDs := lo.Map(rows, func(b db.Banner, _ int) int64 { return b.ProductID })

	products, err := r.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("r.GetProducts: %w", err)
	}

	byID := lo.KeyBy(products, func(p domain.Product) int64 { return p.ID })

	banners := make([]domain.Banner, 0, len(rows))
	for _, row := range rows {
		banners = append(banners, domain.Banner{
			ID:          row.ID,
			Product:     byID[row.ProductID],
			Title:       row.Title,
			Description: row.Description,
			ImageSrc:    row.ImageSrc,
			DateAdded:   row.DateAdded,
		})
	}

	return banners, nil
}

func (r *catalogRepository) Reviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	rows, err := r.q.ListReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("q.ListReviews: %w", err)
	}

	return nilSliceIfEmpty(lo.Map(rows, func(row db.Review, _ int) domain.Review {
		return domain.Review{
			ProductID: row.ProductID,
			Author:    row.Author,
			Email:     row.Email,
			Text:      row.Text,
			Rate:      int(row.Rate),
			Date:      row.CreatedAt,
		}
	})), nil
}

func (r *catalogRepository) InsertReview(ctx context.Context, review domain.Review) error {
	err := r.q.InsertReview(ctx, db.InsertReviewParams{
		ProductID: review.ProductID,
		Author:    review.Author,
		Email:     review.Email,
		Text:      review.Text,
		Rate:      int16(review.Rate),
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("q.InsertReview: %w", domain.ErrProductNotFound)
		}
		return fmt.Errorf("q.InsertReview: %w", err)
	}

	return nil
}

func (r *catalogRepository) InsertProduct(ctx context.Context, product domain.Product) (int64, error) {
	if err := product.Validate(); err != nil {
		return 0, fmt.Errorf("product.Validate: %w", err)
	}

	return withTx(ctx, r.dbtx, func(q *db.Queries) (int64, error) {
		productID, err := q.InsertProduct(ctx, db.InsertProductParams{
			CategoryID:      product.CategoryID,
			Title:           product.Title,
			Description:     product.Description,
			FullDescription: product.FullDescription,
			Price:           product.Price,
			Count:           int32(product.Count),
			FreeDelivery:    product.FreeDelivery,
		})
		if err != nil {
			return 0, fmt.Errorf("q.InsertProduct: %w", err)
		}

		for _, image := range product.Images {
			if err := q.InsertProductImage(ctx, productID, image.Src, image.Alt); err != nil {
				return 0, fmt.Errorf("q.InsertProductImage: %w", err)
			}
		}

		for _, tag := range product.Tags {
			tagID, err := q.UpsertTag(ctx, tag.Name)
			if err != nil {
				return 0, fmt.Errorf("q.UpsertTag[%s]: %w", tag.Name, err)
			}
			if err := q.AddProductTag(ctx, productID, tagID); err != nil {
				return 0, fmt.Errorf("q.AddProductTag: %w", err)
			}
		}

		return productID, nil
	})
}

func (r *catalogRepository) UpsertSale(ctx context.Context, sale domain.Sale) error {
	err := r.q.UpsertSale(ctx, db.Sale{
		ProductID: sale.ProductID,
		SalePrice: sale.SalePrice,
		DateFrom:  domain.DateOf(sale.DateFrom),
		DateTo:    domain.DateOf(sale.DateTo),
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("q.UpsertSale: %w", domain.ErrProductNotFound)
		}
		return fmt.Errorf("q.UpsertSale: %w", err)
	}

	return nil
}

func (r *catalogRepository) InsertCategory(ctx context.Context, category domain.Category) (int64, error) {
	if strings.TrimSpace(category.Name) == "" {
		return 0, errors.New("category name is empty")
	}

	id, err := r.q.InsertCategory(ctx, category.Name, category.ParentID, category.ImageSrc)
	if err != nil {
		return 0, fmt.Errorf("q.InsertCategory: %w", err)
	}

	return id, nil
}

func (r *catalogRepository) InsertBanner(ctx context.Context, banner domain.Banner) (int64, error) {
	id, err := r.q.InsertBanner(ctx, db.InsertBannerParams{
		ProductID:   banner.Product.ID,
		Title:       banner.Title,
		Description: banner.Description,
		ImageSrc:    banner.ImageSrc,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("q.InsertBanner: %w", domain.ErrProductNotFound)
		}
		return 0, fmt.Errorf("q.InsertBanner: %w", err)
	}

	return id, nil
}

// DecrementStock only succeeds when enough units are left, so concurrent
// orders can never drive the count below zero.
func (r *catalogRepository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	qty, err := toQuantity(quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := r.q.DecrementProductStock(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("q.DecrementProductStock: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.DecrementProductStock[%d]: %w", productID, domain.ErrInsufficientStock)
	}

	return nil
}

func (r *catalogRepository) assembleProducts(ctx context.Context, rows []db.ProductRow) ([]domain.Product, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	productIDs := lo.Map(rows, func(row db.ProductRow, _ int) int64 { return row.ID })

	images, err := r.imagesByProduct(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("r.imagesByProduct: %w", err)
	}

	tagRows, err := r.q.ListProductTags(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("q.ListProductTags: %w", err)
	}

	tags := make(map[int64][]domain.Tag, len(rows))
	for _, t := range tagRows {
		tags[t.ProductID] = append(tags[t.ProductID], domain.Tag{ID: t.TagID, Name: t.Name})
	}

	return lo.Map(rows, func(row db.ProductRow, _ int) domain.Product {
		p := mapDBProductToDomain(row)
		p.Images = images[row.ID]
		p.Tags = tags[row.ID]
		return p
	}), nil
}

func (r *catalogRepository) imagesByProduct(ctx context.Context, productIDs []int64) (map[int64][]domain.Image, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	rows, err := r.q.ListProductImages(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("q.ListProductImages: %w", err)
	}

	images := make(map[int64][]domain.Image, len(productIDs))
	for _, row := range rows {
		images[row.ProductID] = append(images[row.ProductID], domain.Image{Src: row.Src, Alt: row.AltText})
	}

	return images, nil
}

func mapDBProductToDomain(row db.ProductRow) domain.Product {
	p := domain.Product{
		ID:              row.ID,
		CategoryID:      row.CategoryID,
		Title:           row.Title,
		Description:     row.Description,
		FullDescription: row.FullDescription,
		Price:           row.Price,
		Count:           int(row.Count),
		FreeDelivery:    row.FreeDelivery,
		DateAdded:       row.DateAdded,
		ReviewsCount:    int(row.ReviewsCount),
		Rating:          row.Rating,
	}

	if row.SalePrice.Valid && row.SaleDateFrom != nil && row.SaleDateTo != nil {
		p.Sale = &domain.Sale{
			ProductID: row.ID,
			SalePrice: row.SalePrice.Decimal,
			DateFrom:  *row.SaleDateFrom,
			DateTo:    *row.SaleDateTo,
		}
	}

	return p
}
