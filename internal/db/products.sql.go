package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const productSelect = `SELECT p.id, p.category_id, p.title, p.description, p.full_description, p.price, p.count,
       p.free_delivery, p.date_added,
       s.sale_price, s.date_from, s.date_to,
       COALESCE(r.reviews_count, 0)::int AS reviews_count,
       COALESCE(r.rating, 0)::float8     AS rating
FROM products p
         LEFT JOIN sales s ON s.product_id = p.id
         LEFT JOIN (SELECT product_id, COUNT(*) AS reviews_count, AVG(rate) AS rating
                    FROM reviews
                    GROUP BY product_id) r ON r.product_id = p.id
`

func scanProductRows(rows pgx.Rows) ([]ProductRow, error) {
	defer rows.Close()
	var items []ProductRow
	for rows.Next() {
		var i ProductRow
		if err := rows.Scan(
			&i.ID,
			&i.CategoryID,
			&i.Title,
			&i.Description,
			&i.FullDescription,
			&i.Price,
			&i.Count,
			&i.FreeDelivery,
			&i.DateAdded,
			&i.SalePrice,
			&i.SaleDateFrom,
			&i.SaleDateTo,
			&i.ReviewsCount,
			&i.Rating,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getProduct = `-- name: GetProduct :one
` + productSelect + `WHERE p.id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id int64) (ProductRow, error) {
	rows, err := q.db.Query(ctx, getProduct, id)
	if err != nil {
		return ProductRow{}, err
	}
	items, err := scanProductRows(rows)
	if err != nil {
		return ProductRow{}, err
	}
	if len(items) == 0 {
		return ProductRow{}, pgx.ErrNoRows
	}
	return items[0], nil
}

const listProductsByIDs = `-- name: ListProductsByIDs :many
` + productSelect + `WHERE p.id = ANY ($1::bigint[])
ORDER BY p.id
`

func (q *Queries) ListProductsByIDs(ctx context.Context, ids []int64) ([]ProductRow, error) {
	rows, err := q.db.Query(ctx, listProductsByIDs, ids)
	if err != nil {
		return nil, err
	}
	return scanProductRows(rows)
}

const productFilter = `WHERE ($1::text IS NULL OR p.title ILIKE '%' || $1::text || '%')
  AND ($2::numeric IS NULL OR p.price >= $2::numeric)
  AND ($3::numeric IS NULL OR p.price <= $3::numeric)
  AND ($4::boolean IS NULL OR p.free_delivery = $4::boolean)
  AND (NOT $5::boolean OR p.count > 0)
  AND ($6::bigint IS NULL OR p.category_id = $6::bigint)
  AND ($7::bigint[] IS NULL OR EXISTS (SELECT 1
                                       FROM product_tags pt
                                       WHERE pt.product_id = p.id
                                         AND pt.tag_id = ANY ($7::bigint[])))
`

const searchProducts = `-- name: SearchProducts :many
` + productSelect + productFilter + `ORDER BY CASE WHEN $8::text = 'price' AND $9::boolean THEN p.price END DESC,
         CASE WHEN $8::text = 'price' AND NOT $9::boolean THEN p.price END,
         CASE WHEN $8::text = 'rating' AND $9::boolean THEN COALESCE(r.rating, 0) END DESC,
         CASE WHEN $8::text = 'rating' AND NOT $9::boolean THEN COALESCE(r.rating, 0) END,
         CASE WHEN $8::text = 'reviews' AND $9::boolean THEN COALESCE(r.reviews_count, 0) END DESC,
         CASE WHEN $8::text = 'reviews' AND NOT $9::boolean THEN COALESCE(r.reviews_count, 0) END,
         CASE WHEN $9::boolean THEN p.date_added END DESC,
         CASE WHEN NOT $9::boolean THEN p.date_added END,
         p.id
LIMIT $10 OFFSET $11
`

type ProductFilterParams struct {
	Name         *string
	MinPrice     decimal.NullDecimal
	MaxPrice     decimal.NullDecimal
	FreeDelivery *bool
	Available    bool
	CategoryID   *int64
	TagIDs       []int64
}

func (p ProductFilterParams) args() []interface{} {
	return []interface{}{
		p.Name,
		p.MinPrice,
		p.MaxPrice,
		p.FreeDelivery,
		p.Available,
		p.CategoryID,
		p.TagIDs,
	}
}

type SearchProductsParams struct {
	ProductFilterParams
	Sort   string
	Desc   bool
	Limit  int32
	Offset int32
}

func (q *Queries) SearchProducts(ctx context.Context, arg SearchProductsParams) ([]ProductRow, error) {
	args := append(arg.args(), arg.Sort, arg.Desc, arg.Limit, arg.Offset)
	rows, err := q.db.Query(ctx, searchProducts, args...)
	if err != nil {
		return nil, err
	}
	return scanProductRows(rows)
}

const countProducts = `-- name: CountProducts :one
SELECT COUNT(*)
FROM products p
` + productFilter

func (q *Queries) CountProducts(ctx context.Context, arg ProductFilterParams) (int64, error) {
	row := q.db.QueryRow(ctx, countProducts, arg.args()...)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listPopularProducts = `-- name: ListPopularProducts :many
` + productSelect + `ORDER BY COALESCE(r.reviews_count, 0) DESC, p.id
LIMIT $1
`

func (q *Queries) ListPopularProducts(ctx context.Context, limit int32) ([]ProductRow, error) {
	rows, err := q.db.Query(ctx, listPopularProducts, limit)
	if err != nil {
		return nil, err
	}
	return scanProductRows(rows)
}

const listLimitedProducts = `-- name: ListLimitedProducts :many
` + productSelect + `WHERE p.count <= $1
ORDER BY p.count, p.id
`

func (q *Queries) ListLimitedProducts(ctx context.Context, threshold int32) ([]ProductRow, error) {
	rows, err := q.db.Query(ctx, listLimitedProducts, threshold)
	if err != nil {
		return nil, err
	}
	return scanProductRows(rows)
}

const listProductImages = `-- name: ListProductImages :many
SELECT id, product_id, src, alt_text
FROM product_images
WHERE product_id = ANY ($1::bigint[])
ORDER BY product_id, id
`

func (q *Queries) ListProductImages(ctx context.Context, productIDs []int64) ([]ProductImage, error) {
	rows, err := q.db.Query(ctx, listProductImages, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductImage
	for rows.Next() {
		var i ProductImage
		if err := rows.Scan(&i.ID, &i.ProductID, &i.Src, &i.AltText); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProductTags = `-- name: ListProductTags :many
SELECT pt.product_id, t.id, t.name
FROM product_tags pt
         JOIN tags t ON t.id = pt.tag_id
WHERE pt.product_id = ANY ($1::bigint[])
ORDER BY pt.product_id, t.id
`

func (q *Queries) ListProductTags(ctx context.Context, productIDs []int64) ([]ProductTag, error) {
	rows, err := q.db.Query(ctx, listProductTags, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductTag
	for rows.Next() {
		var i ProductTag
		if err := rows.Scan(&i.ProductID, &i.TagID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertProduct = `-- name: InsertProduct :one
INSERT INTO products (category_id, title, description, full_description, price, count, free_delivery)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`

type InsertProductParams struct {
	CategoryID      *int64
	Title           string
	Description     string
	FullDescription string
	Price           decimal.Decimal
	Count           int32
	FreeDelivery    bool
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertProduct,
		arg.CategoryID,
		arg.Title,
		arg.Description,
		arg.FullDescription,
		arg.Price,
		arg.Count,
		arg.FreeDelivery,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertProductImage = `-- name: InsertProductImage :exec
INSERT INTO product_images (product_id, src, alt_text)
VALUES ($1, $2, $3)
`

func (q *Queries) InsertProductImage(ctx context.Context, productID int64, src, altText string) error {
	_, err := q.db.Exec(ctx, insertProductImage, productID, src, altText)
	return err
}

const upsertTag = `-- name: UpsertTag :one
INSERT INTO tags (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`

func (q *Queries) UpsertTag(ctx context.Context, name string) (int64, error) {
	row := q.db.QueryRow(ctx, upsertTag, name)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const addProductTag = `-- name: AddProductTag :exec
INSERT INTO product_tags (product_id, tag_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`

func (q *Queries) AddProductTag(ctx context.Context, productID, tagID int64) error {
	_, err := q.db.Exec(ctx, addProductTag, productID, tagID)
	return err
}

const decrementProductStock = `-- name: DecrementProductStock :execrows
UPDATE products
SET count = count - $2
WHERE id = $1
  AND count >= $2
`

// DecrementProductStock affects no rows when the stock is lower than the requested quantity.
func (q *Queries) DecrementProductStock(ctx context.Context, id int64, quantity int32) (int64, error) {
	result, err := q.db.Exec(ctx, decrementProductStock, id, quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const upsertSale = `-- name: UpsertSale :exec
INSERT INTO sales (product_id, sale_price, date_from, date_to)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id) DO UPDATE SET sale_price = EXCLUDED.sale_price,
                                       date_from  = EXCLUDED.date_from,
                                       date_to    = EXCLUDED.date_to
`

func (q *Queries) UpsertSale(ctx context.Context, arg Sale) error {
	_, err := q.db.Exec(ctx, upsertSale, arg.ProductID, arg.SalePrice, arg.DateFrom, arg.DateTo)
	return err
}

const listActiveSales = `-- name: ListActiveSales :many
SELECT s.product_id, s.sale_price, s.date_from, s.date_to, p.title, p.price
FROM sales s
         JOIN products p ON p.id = s.product_id
WHERE s.date_from <= $1::date
  AND s.date_to >= $1::date
ORDER BY s.date_to, s.product_id
LIMIT $2 OFFSET $3
`

func (q *Queries) ListActiveSales(ctx context.Context, today time.Time, limit, offset int32) ([]SaleOfferRow, error) {
	rows, err := q.db.Query(ctx, listActiveSales, today, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SaleOfferRow
	for rows.Next() {
		var i SaleOfferRow
		if err := rows.Scan(
			&i.ProductID,
			&i.SalePrice,
			&i.DateFrom,
			&i.DateTo,
			&i.Title,
			&i.Price,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countActiveSales = `-- name: CountActiveSales :one
SELECT COUNT(*)
FROM sales
WHERE date_from <= $1::date
  AND date_to >= $1::date
`

func (q *Queries) CountActiveSales(ctx context.Context, today time.Time) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveSales, today)
	var count int64
	err := row.Scan(&count)
	return count, err
}
