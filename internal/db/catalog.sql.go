package db

import (
	"context"
)

const listCategories = `-- name: ListCategories :many
SELECT id, name, parent_id, image_src
FROM categories
ORDER BY id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.ParentID, &i.ImageSrc); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCategory = `-- name: InsertCategory :one
INSERT INTO categories (name, parent_id, image_src)
VALUES ($1, $2, $3)
RETURNING id
`

func (q *Queries) InsertCategory(ctx context.Context, name string, parentID *int64, imageSrc *string) (int64, error) {
	row := q.db.QueryRow(ctx, insertCategory, name, parentID, imageSrc)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listTags = `-- name: ListTags :many
SELECT DISTINCT t.id, t.name
FROM tags t
         LEFT JOIN product_tags pt ON pt.tag_id = t.id
         LEFT JOIN products p ON p.id = pt.product_id
WHERE $1::bigint IS NULL
   OR p.category_id = $1::bigint
ORDER BY t.id
`

func (q *Queries) ListTags(ctx context.Context, categoryID *int64) ([]Tag, error) {
	rows, err := q.db.Query(ctx, listTags, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tag
	for rows.Next() {
		var i Tag
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBanners = `-- name: ListBanners :many
SELECT id, product_id, title, description, image_src, date_added
FROM banners
ORDER BY date_added DESC, id DESC
`

func (q *Queries) ListBanners(ctx context.Context) ([]Banner, error) {
	rows, err := q.db.Query(ctx, listBanners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Banner
	for rows.Next() {
		var i Banner
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.Title,
			&i.Description,
			&i.ImageSrc,
			&i.DateAdded,
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

const insertBanner = `-- name: InsertBanner :one
INSERT INTO banners (product_id, title, description, image_src)
VALUES ($1, $2, $3, $4)
RETURNING id
`

type InsertBannerParams struct {
	ProductID   int64
	Title       string
	Description string
	ImageSrc    string
}

func (q *Queries) InsertBanner(ctx context.Context, arg InsertBannerParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertBanner, arg.ProductID, arg.Title, arg.Description, arg.ImageSrc)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listReviews = `-- name: ListReviews :many
SELECT id, product_id, author, email, text, rate, created_at
FROM reviews
WHERE product_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListReviews(ctx context.Context, productID int64) ([]Review, error) {
	rows, err := q.db.Query(ctx, listReviews, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Review
	for rows.Next() {
		var i Review
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.Author,
			&i.Email,
			&i.Text,
			&i.Rate,
			&i.CreatedAt,
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

const insertReview = `-- name: InsertReview :exec
INSERT INTO reviews (product_id, author, email, text, rate)
VALUES ($1, $2, $3, $4, $5)
`

type InsertReviewParams struct {
	ProductID int64
	Author    string
	Email     string
	Text      string
	Rate      int16
}

func (q *Queries) InsertReview(ctx context.Context, arg InsertReviewParams) error {
	_, err := q.db.Exec(ctx, insertReview, arg.ProductID, arg.Author, arg.Email, arg.Text, arg.Rate)
	return err
}
